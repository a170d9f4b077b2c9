// Package metrics provides custom Prometheus metrics for the pokeguess components.
package metrics

// Histogram bucket parameters
const (
	BucketStart1ms  = 0.001
	BucketStart10ms = 0.01
	BucketFactor2   = 2
	BucketCount12   = 12
	BucketCount10   = 10
)

// Label values shared by several collectors
const (
	ResultSuccess = "success"
	ResultError   = "error"
)
