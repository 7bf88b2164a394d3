package catalog

import (
	"context"
	"errors"
)

// ErrNotFound is the one failure the catalog core surfaces to its callers:
// no record exists for the requested slug.
var ErrNotFound = errors.New("product not found")

// Source materializes raw catalog records. Pagination, retries and transport
// failures are resolved before records cross this boundary; implementations
// live in the source module.
type Source interface {
	ListAll(ctx context.Context) ([]RawRecord, error)
	GetBySlug(ctx context.Context, slug string) (*RawRecord, error)
}
