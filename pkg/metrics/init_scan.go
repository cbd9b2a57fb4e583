package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initScanMetrics() {
	r.ScanRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_scan_runs_total",
			Help: "Total number of takeoff runs",
		},
		[]string{"status"},
	)

	r.ScanDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "takeoff_scan_duration_seconds",
			Help:    "Takeoff run duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.ComponentsScannedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_components_scanned_total",
			Help: "Total number of components processed, by class",
		},
		[]string{"class"},
	)

	r.ContributionsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "takeoff_contributions_total",
			Help: "Total number of length contributions produced",
		},
	)

	r.LengthAttributedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "takeoff_length_attributed_total",
			Help: "Total length attributed to lines, in model units",
		},
	)

	r.ExclusionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "takeoff_exclusions_total",
			Help: "Total number of components excluded from aggregation, by reason",
		},
		[]string{"reason"},
	)
}
