package metrics

import (
	"runtime"
	"time"
)

// RecordScan records a completed takeoff run with its duration
func (r *Registry) RecordScan(status string, duration time.Duration) {
	r.ScanRunsTotal.WithLabelValues(status).Inc()
	r.ScanDuration.Observe(duration.Seconds())
}

// RecordComponent records a processed component by class
func (r *Registry) RecordComponent(class string) {
	r.ComponentsScannedTotal.WithLabelValues(class).Inc()
}

// RecordContribution records a single length contribution
func (r *Registry) RecordContribution(length float64) {
	r.ContributionsTotal.Inc()
	if length > 0 {
		r.LengthAttributedTotal.Add(length)
	}
}

// RecordExclusion records a component dropped from aggregation
func (r *Registry) RecordExclusion(reason string) {
	r.ExclusionsTotal.WithLabelValues(reason).Inc()
}

// RecordAllocation records an identifier allocation
func (r *Registry) RecordAllocation(gapReused bool) {
	r.IdentifiersAllocatedTotal.Inc()
	if gapReused {
		r.IdentifierGapsReusedTotal.Inc()
	}
}

// RecordTraversal records a connectivity expansion
func (r *Registry) RecordTraversal(visited int, capped bool) {
	r.GroupTraversalVisited.Observe(float64(visited))
	if capped {
		r.GroupTraversalCapsTotal.Inc()
	}
}

// UpdateSystemMetrics refreshes runtime gauges
func (r *Registry) UpdateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
