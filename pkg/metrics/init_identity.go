package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initIdentityMetrics() {
	r.IdentifiersAllocatedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "takeoff_identifiers_allocated_total",
			Help: "Total number of billable identifiers allocated",
		},
	)

	r.IdentifierGapsReusedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "takeoff_identifier_gaps_reused_total",
			Help: "Total number of allocations that filled a freed gap",
		},
	)

	r.IdentifiersExhaustedTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "takeoff_identifiers_exhausted_total",
			Help: "Total number of allocation attempts that found no free identifier",
		},
	)

	r.IdentityStateSizeBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "takeoff_identity_state_size_bytes",
			Help: "Size of the persisted identifier state blob in bytes",
		},
	)
}
