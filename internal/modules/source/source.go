package source

import (
	"context"
	"errors"
	"log"

	"github.com/brillante-joyas/catalog-api/internal/modules/catalog"
)

// FallbackSource serves from the primary source and falls back to the
// snapshot store when the primary is unavailable. Successful listings
// refresh the snapshot best-effort.
type FallbackSource struct {
	Primary  catalog.Source
	Snapshot *SnapshotStore
}

func NewFallbackSource(primary catalog.Source, snapshot *SnapshotStore) *FallbackSource {
	return &FallbackSource{Primary: primary, Snapshot: snapshot}
}

func (f *FallbackSource) ListAll(ctx context.Context) ([]catalog.RawRecord, error) {
	records, err := f.Primary.ListAll(ctx)
	if err == nil {
		if f.Snapshot != nil {
			if serr := f.Snapshot.Save(ctx, records); serr != nil {
				log.Printf("source: snapshot refresh failed: %v", serr)
			}
		}
		return records, nil
	}
	if f.Snapshot == nil {
		return nil, err
	}
	log.Printf("source: primary unavailable, serving snapshot: %v", err)
	return f.Snapshot.ListAll(ctx)
}

func (f *FallbackSource) GetBySlug(ctx context.Context, slug string) (*catalog.RawRecord, error) {
	record, err := f.Primary.GetBySlug(ctx, slug)
	if err == nil || errors.Is(err, catalog.ErrNotFound) || f.Snapshot == nil {
		return record, err
	}
	log.Printf("source: primary unavailable, serving snapshot: %v", err)
	return f.Snapshot.GetBySlug(ctx, slug)
}
