package source

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/brillante-joyas/catalog-api/internal/modules/catalog"
	"github.com/brillante-joyas/catalog-api/internal/modules/textnorm"
)

// LocalSource serves the static local catalog: a JSON file of records in the
// local shape, loaded once at construction.
type LocalSource struct {
	records []catalog.RawRecord
}

func NewLocalSource(path string) (*LocalSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read local catalog: %w", err)
	}
	var records []catalog.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("could not parse local catalog: %w", err)
	}
	return &LocalSource{records: records}, nil
}

func (s *LocalSource) ListAll(ctx context.Context) ([]catalog.RawRecord, error) {
	out := make([]catalog.RawRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

// GetBySlug matches the slug field first, falling back to id and sku so
// legacy storefront links keep resolving.
func (s *LocalSource) GetBySlug(ctx context.Context, slug string) (*catalog.RawRecord, error) {
	want := textnorm.Normalize(slug)
	for i := range s.records {
		r := &s.records[i]
		if textnorm.Normalize(r.Slug) == want ||
			strings.EqualFold(string(r.ID), slug) ||
			strings.EqualFold(r.SKU, slug) {
			record := *r
			return &record, nil
		}
	}
	return nil, catalog.ErrNotFound
}
