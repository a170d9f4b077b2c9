package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CatalogMetrics contains Prometheus metrics for the pokemon record cache and its upstream client.
type CatalogMetrics struct {
	CacheSize       prometheus.Gauge
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
	UpstreamFetches *prometheus.CounterVec
	FetchDuration   prometheus.Histogram
	registry        *prometheus.Registry
}

// NewCatalogMetrics creates and registers catalog metrics.
func NewCatalogMetrics(registry *prometheus.Registry) (*CatalogMetrics, error) {
	m := &CatalogMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register catalog metrics: %w", err)
	}
	return m, nil
}

func (m *CatalogMetrics) initMetrics() {
	m.CacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_cache_records",
		Help: "Number of pokemon records held in the cache.",
	})

	m.CacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of record cache hits.",
	})

	m.CacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of record cache misses.",
	})

	m.UpstreamFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_upstream_fetches_total",
		Help: "Total number of upstream catalog requests by result.",
	}, []string{"result"})

	m.FetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_upstream_fetch_duration_seconds",
		Help:    "Duration of upstream catalog requests in seconds.",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount10),
	})
}

// SetCacheSize updates the number of cached records.
func (m *CatalogMetrics) SetCacheSize(n int) {
	if m == nil {
		return
	}
	m.CacheSize.Set(float64(n))
}

// IncrementCacheHits increases the cache hit counter by one.
func (m *CatalogMetrics) IncrementCacheHits() {
	if m == nil {
		return
	}
	m.CacheHits.Inc()
}

// IncrementCacheMisses increases the cache miss counter by one.
func (m *CatalogMetrics) IncrementCacheMisses() {
	if m == nil {
		return
	}
	m.CacheMisses.Inc()
}

// RecordFetch records one upstream request and its duration in seconds.
func (m *CatalogMetrics) RecordFetch(durationSeconds float64, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.UpstreamFetches.WithLabelValues(result).Inc()
	m.FetchDuration.Observe(durationSeconds)
}

// Collect implements the prometheus.Collector interface.
func (m *CatalogMetrics) Collect(ch chan<- prometheus.Metric) {
	ch <- m.CacheSize
	ch <- m.CacheHits
	ch <- m.CacheMisses
	m.UpstreamFetches.Collect(ch)
	ch <- m.FetchDuration
}

// Describe implements the prometheus.Collector interface.
func (m *CatalogMetrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.CacheSize.Desc()
	ch <- m.CacheHits.Desc()
	ch <- m.CacheMisses.Desc()
	m.UpstreamFetches.Describe(ch)
	ch <- m.FetchDuration.Desc()
}
