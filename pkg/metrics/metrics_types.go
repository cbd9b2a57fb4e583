package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Scan Metrics
	ScanRunsTotal          *prometheus.CounterVec
	ScanDuration           prometheus.Histogram
	ComponentsScannedTotal *prometheus.CounterVec
	ContributionsTotal     prometheus.Counter
	LengthAttributedTotal  prometheus.Counter
	ExclusionsTotal        *prometheus.CounterVec

	// Identity Metrics
	IdentifiersAllocatedTotal prometheus.Counter
	IdentifierGapsReusedTotal prometheus.Counter
	IdentifiersExhaustedTotal prometheus.Counter
	IdentityStateSizeBytes    prometheus.Gauge

	// Grouping Metrics
	GroupsTotal             prometheus.Gauge
	GroupTraversalVisited   prometheus.Histogram
	GroupTraversalCapsTotal prometheus.Counter

	// System Metrics
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initScanMetrics()
	r.initIdentityMetrics()
	r.initGroupingMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
