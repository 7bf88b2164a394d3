package catalog

import (
	"context"
	"time"

	"github.com/brillante-joyas/catalog-api/internal/metrics"
)

// Service defines catalog business logic: the filtered listing and the
// single-product lookup behind the storefront.
type Service interface {
	ListProducts(ctx context.Context, req FilterRequest) ([]Product, error)
	GetProduct(ctx context.Context, slug string) (*Product, error)
	ClearCache()
}

type service struct {
	source     Source
	cache      *ResultCache
	normalizer *Normalizer
	pipeline   *Pipeline
	metrics    *metrics.Registry
}

func NewService(src Source, cache *ResultCache, reg *metrics.Registry) Service {
	return &service{
		source:     src,
		cache:      cache,
		normalizer: NewNormalizer(),
		pipeline:   NewPipeline(),
		metrics:    reg,
	}
}

// ListProducts resolves a filter request against the catalog: cached result
// sets are served as-is, misses fetch the raw records, normalize each one
// and run the filter pipeline before caching the outcome.
func (s *service) ListProducts(ctx context.Context, req FilterRequest) ([]Product, error) {
	key := req.CacheKey()
	if cached, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return cached, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	records, err := s.source.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	products := make([]Product, 0, len(records))
	for _, raw := range records {
		products = append(products, s.normalizer.Normalize(raw))
	}
	result := s.pipeline.Apply(products, req)
	if s.metrics != nil {
		s.metrics.FilterLatencySec.Observe(time.Since(start).Seconds())
		s.metrics.ProductsReturned.Observe(float64(len(result)))
	}

	s.cache.Put(key, result)
	return result, nil
}

func (s *service) GetProduct(ctx context.Context, slug string) (*Product, error) {
	raw, err := s.source.GetBySlug(ctx, slug)
	if err != nil {
		if err == ErrNotFound && s.metrics != nil {
			s.metrics.LookupNotFound.Inc()
		}
		return nil, err
	}
	p := s.normalizer.Normalize(*raw)
	return &p, nil
}

func (s *service) ClearCache() {
	s.cache.Clear()
}
