package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ImageProviderMetrics contains all Prometheus metrics related to artwork download and derivation.
type ImageProviderMetrics struct {
	AssetHits        *prometheus.CounterVec
	DerivedAssets    *prometheus.CounterVec
	ImageDownloads   prometheus.Counter
	DownloadErrors   prometheus.Counter
	DownloadDuration prometheus.Histogram
	registry         *prometheus.Registry
}

// NewImageProviderMetrics creates a new instance of ImageProviderMetrics.
// It returns an error if metric registration fails.
func NewImageProviderMetrics(registry *prometheus.Registry) (*ImageProviderMetrics, error) {
	m := &ImageProviderMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register ImageProvider metrics: %w", err)
	}
	return m, nil
}

func (m *ImageProviderMetrics) initMetrics() {
	m.AssetHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_provider_asset_hits_total",
		Help: "Total number of requests served by an already derived asset.",
	}, []string{"kind"})

	m.DerivedAssets = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "image_provider_derived_assets_total",
		Help: "Total number of assets written to disk.",
	}, []string{"kind"})

	m.ImageDownloads = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_provider_downloads_total",
		Help: "Total number of artwork downloads.",
	})

	m.DownloadErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "image_provider_download_errors_total",
		Help: "Total number of artwork download errors.",
	})

	m.DownloadDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "image_provider_download_duration_seconds",
		Help:    "Duration of artwork downloads in seconds.",
		Buckets: prometheus.ExponentialBuckets(BucketStart10ms, BucketFactor2, BucketCount10),
	})
}

// IncrementAssetHits counts a request answered from disk for the given kind.
func (m *ImageProviderMetrics) IncrementAssetHits(kind string) {
	if m == nil {
		return
	}
	m.AssetHits.WithLabelValues(kind).Inc()
}

// IncrementDerivedAssets counts a newly written asset of the given kind.
func (m *ImageProviderMetrics) IncrementDerivedAssets(kind string) {
	if m == nil {
		return
	}
	m.DerivedAssets.WithLabelValues(kind).Inc()
}

// IncrementImageDownloads increases the image download counter by one.
func (m *ImageProviderMetrics) IncrementImageDownloads() {
	if m == nil {
		return
	}
	m.ImageDownloads.Inc()
}

// IncrementDownloadErrors increases the download error counter by one.
func (m *ImageProviderMetrics) IncrementDownloadErrors() {
	if m == nil {
		return
	}
	m.DownloadErrors.Inc()
}

// ObserveDownloadDuration records the duration of an image download in seconds.
func (m *ImageProviderMetrics) ObserveDownloadDuration(durationSeconds float64) {
	if m == nil {
		return
	}
	m.DownloadDuration.Observe(durationSeconds)
}

// Collect implements the prometheus.Collector interface.
func (m *ImageProviderMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AssetHits.Collect(ch)
	m.DerivedAssets.Collect(ch)
	ch <- m.ImageDownloads
	ch <- m.DownloadErrors
	ch <- m.DownloadDuration
}

// Describe implements the prometheus.Collector interface.
func (m *ImageProviderMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AssetHits.Describe(ch)
	m.DerivedAssets.Describe(ch)
	ch <- m.ImageDownloads.Desc()
	ch <- m.DownloadErrors.Desc()
	ch <- m.DownloadDuration.Desc()
}
