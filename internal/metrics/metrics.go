package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
	ProductsReturned prometheus.Histogram
	FilterLatencySec prometheus.Histogram
	LookupNotFound   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_cache_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_cache_misses_total"})
	returned := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_products_returned",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_filter_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	notFound := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_lookup_not_found_total"})

	r.MustRegister(hits, misses, returned, latency, notFound)
	return &Registry{
		reg:              r,
		CacheHits:        hits,
		CacheMisses:      misses,
		ProductsReturned: returned,
		FilterLatencySec: latency,
		LookupNotFound:   notFound,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
