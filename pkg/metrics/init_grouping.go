package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initGroupingMetrics() {
	r.GroupsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "takeoff_groups_total",
			Help: "Number of connectivity groups found by the last run",
		},
	)

	r.GroupTraversalVisited = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "takeoff_group_traversal_visited",
			Help:    "Components visited during connectivity expansion",
			Buckets: []float64{10, 100, 1000, 10000, 100000, 250000},
		},
	)

	r.GroupTraversalCapsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "takeoff_group_traversal_caps_total",
			Help: "Total number of traversals aborted at the visit cap",
		},
	)
}
