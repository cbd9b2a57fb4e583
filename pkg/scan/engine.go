// Package scan orchestrates a full takeoff run: enumerate the components,
// group them into connectivity islands, measure every component, allocate
// billable identifiers, and fold the results into the report pivots.
package scan

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/dd0wney/cluso-takeoff/pkg/audit"
	"github.com/dd0wney/cluso-takeoff/pkg/grouping"
	"github.com/dd0wney/cluso-takeoff/pkg/identity"
	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/metrics"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/pivot"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
	"github.com/dd0wney/cluso-takeoff/pkg/resolve"
	"github.com/dd0wney/cluso-takeoff/pkg/takeoff"
)

// Engine runs takeoffs over a provider snapshot. The identifier store is
// the only state that survives across runs; everything else is rebuilt from
// the provider on every Run.
type Engine struct {
	provider     provider.Provider
	store        *identity.Store
	logger       logging.Logger
	metrics      *metrics.Registry
	audit        *audit.AuditLogger
	traversalCap int
}

// NewEngine creates an engine. The store may be nil, in which case
// identifiers start fresh every run and are not persisted.
func NewEngine(p provider.Provider, store *identity.Store, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{provider: p, store: store, logger: logger}
}

// SetMetrics attaches a metrics registry.
func (e *Engine) SetMetrics(r *metrics.Registry) {
	e.metrics = r
}

// SetAudit attaches an audit trail.
func (e *Engine) SetAudit(a *audit.AuditLogger) {
	e.audit = a
}

// SetTraversalCap overrides the grouping traversal bound.
func (e *Engine) SetTraversalCap(n int) {
	e.traversalCap = n
}

// cell is one routed pivot increment, held back until billable identifiers
// are allocated.
type cell struct {
	label    string
	column   string
	category pivot.Category
	unit     string
	value    float64
}

// Run executes a full takeoff over the requested components (all components
// when the set is empty). On allocator overflow the remaining batch is
// abandoned: the partial report is returned together with the error.
func (e *Engine) Run(requested []model.ComponentID) (*Report, error) {
	runID := uuid.New().String()
	start := time.Now()
	log := e.logger.With(logging.RunID(runID))

	if len(requested) == 0 {
		requested = e.provider.ComponentIDs()
	}
	log.Info("takeoff run starting", logging.Count(len(requested)))

	state := identity.EmptyState()
	if e.store != nil {
		loaded, err := e.store.Load()
		if err != nil {
			e.finishRun(runID, "failure", start)
			return nil, NewError("Run").State(e.store.Path()).Cause(err)
		}
		state = loaded
	}
	prevMax := state.MaxID
	allocator := identity.NewAllocator(state)

	resolver := resolve.New(e.provider)
	calc := takeoff.NewCalculator(resolver, log)

	grouper := grouping.NewGrouper(e.provider, log)
	if e.traversalCap > 0 {
		grouper.SetTraversalCap(e.traversalCap)
	}
	groups, err := grouper.Group(requested)
	if e.metrics != nil {
		e.metrics.RecordTraversal(grouper.LastVisited(), err != nil)
	}
	if err != nil {
		e.finishRun(runID, "failure", start)
		return nil, NewError("Run").Group().Cause(err)
	}

	pipes := buildPipeIndex(e.provider)
	agg := pivot.NewAggregator()

	stats := Stats{
		ByClass:     make(map[model.Class]int),
		LengthByTag: make(map[string]float64),
	}

	// First pass: measure and route. Cells are held back so identifiers can
	// be allocated against the full label count.
	var (
		details    []Detail
		cells      []cell
		labelOrder []string
	)
	labelSeen := make(map[string]bool)

	for _, id := range requested {
		comp, ok := e.provider.Component(id)
		if !ok {
			continue
		}
		stats.Components++
		stats.ByClass[comp.Class]++
		if e.metrics != nil {
			e.metrics.RecordComponent(string(comp.Class))
		}

		res := calc.Compute(comp)
		details = append(details, Detail{
			Component:     comp.ID,
			Class:         comp.Class,
			Contributions: res.Contributions,
			PortDiameters: res.PortDiameters,
		})

		counted := false
		for _, ctb := range res.Contributions {
			stats.Contributions++
			stats.TotalLength += ctb.Length
			if ctb.TargetLineTag != "" {
				stats.LengthByTag[ctb.TargetLineTag] += ctb.Length
			}
			if e.metrics != nil {
				e.metrics.RecordContribution(ctb.Length)
			}

			label, routed := e.route(log, runID, comp, ctb, pipes, agg)
			if !routed {
				continue
			}
			if !labelSeen[label] {
				labelSeen[label] = true
				labelOrder = append(labelOrder, label)
			}

			category := pivot.CategoryForClass(comp.Class)
			cells = append(cells, cell{label, ctb.TargetLineTag, category, UnitLength, ctb.Length})

			// Discrete parts ride their first routed contribution.
			if comp.Class != model.ClassPipe && !counted {
				counted = true
				cells = append(cells, cell{label, ctb.TargetLineTag, category, UnitCount, 1})
			}
		}
	}

	// Second pass: allocate billable identifiers in routing order. Overflow
	// stops the batch; identifiers handed out so far keep their assignments.
	total := len(labelOrder)
	ids := make(map[string]string, total)
	var allocErr error
	for _, label := range labelOrder {
		_, existed := allocator.Lookup(label)
		id, err := allocator.GetOrCreate(label, total)
		if err != nil {
			allocErr = NewError("Run").Identifier(label).Cause(err)
			log.Error("identifier allocation overflow", logging.Error(err), logging.String("key", label))
			if e.audit != nil {
				ev := audit.NewEvent(runID, audit.ActionAllocate, audit.ResourceIdentifier, label, audit.StatusFailure)
				ev.ErrorMessage = err.Error()
				e.audit.Log(ev)
			}
			if e.metrics != nil {
				e.metrics.IdentifiersExhaustedTotal.Inc()
			}
			break
		}
		if !existed && e.metrics != nil {
			e.metrics.RecordAllocation(id <= prevMax)
		}
		ids[label] = identity.Format(id, total)
	}

	// Third pass: fold routed cells whose labels received identifiers.
	for _, c := range cells {
		bid, ok := ids[c.label]
		if !ok {
			continue
		}
		key := pivot.Key{BillableID: bid, Label: c.label, Category: c.category, Unit: c.unit}
		if c.unit == UnitCount {
			agg.AddPartCount(key, c.column, c.value)
		} else {
			agg.AddContribution(key, c.column, c.value)
		}
	}

	if e.store != nil {
		if err := e.store.Save(allocator.State()); err != nil {
			e.finishRun(runID, "failure", start)
			return nil, NewError("Run").State(e.store.Path()).WithContext("save").Cause(err)
		}
		if e.metrics != nil {
			if info, err := os.Stat(e.store.Path()); err == nil {
				e.metrics.IdentityStateSizeBytes.Set(float64(info.Size()))
			}
		}
	}

	distinct := make(map[string]bool, len(groups))
	for _, label := range groups {
		distinct[label] = true
	}
	stats.Groups = len(distinct)
	stats.Duration = time.Since(start)
	if e.metrics != nil {
		e.metrics.GroupsTotal.Set(float64(stats.Groups))
	}

	report := &Report{
		RunID:      runID,
		Lengths:    agg.Lengths,
		Counts:     agg.Counts,
		Details:    details,
		Groups:     groups,
		Exclusions: agg.Exclusions(),
		Stats:      stats,
	}

	status := "success"
	if allocErr != nil {
		status = "failure"
	}
	e.finishRun(runID, status, start)
	log.Info("takeoff run complete",
		logging.Count(stats.Components),
		logging.Int("contributions", stats.Contributions),
		logging.Int("groups", stats.Groups),
		logging.Int("exclusions", len(report.Exclusions)),
		logging.Length(stats.TotalLength))
	return report, allocErr
}

// route resolves the pivot row label for one contribution. The target
// pipe's material, install type and diameter form the billing key; when
// that fails, the component's own attributes form a synthetic fallback key,
// and either way the failure is recorded as an exclusion.
func (e *Engine) route(log logging.Logger, runID string, comp *model.Component, ctb model.Contribution, pipes map[string]PipeTarget, agg *pivot.Aggregator) (string, bool) {
	tag := ctb.TargetLineTag
	if tag == "" {
		return e.fallbackRoute(log, runID, comp, ctb, agg,
			pivot.ReasonMissingLineTag, "contribution has no target line tag")
	}

	target, ok := pipes[tag]
	if !ok {
		return e.fallbackRoute(log, runID, comp, ctb, agg,
			pivot.ReasonNoTargetPipe, fmt.Sprintf("no pipe carries line tag %q", tag))
	}
	if target.InstallType == "" {
		return e.fallbackRoute(log, runID, comp, ctb, agg,
			pivot.ReasonMissingInstallType, fmt.Sprintf("target pipe %s has no install type", target.Component))
	}
	if !target.DiameterKnown {
		return e.fallbackRoute(log, runID, comp, ctb, agg,
			pivot.ReasonMissingND, fmt.Sprintf("target pipe %s has no readable nominal size", target.Component))
	}

	label, ok := pivot.FallbackKey(target.Material, target.InstallType, target.Diameter, true)
	if !ok {
		return e.fallbackRoute(log, runID, comp, ctb, agg,
			pivot.ReasonNoTargetPipe, fmt.Sprintf("target pipe %s has no material code", target.Component))
	}
	return label, true
}

// fallbackRoute records the exclusion, then tries to bill under the
// component's own material, diameter and install type.
func (e *Engine) fallbackRoute(log logging.Logger, runID string, comp *model.Component, ctb model.Contribution, agg *pivot.Aggregator, reason pivot.ReasonCode, detail string) (string, bool) {
	agg.Exclude(pivot.Exclusion{Component: comp.ID, Reason: reason, Detail: detail})
	if e.metrics != nil {
		e.metrics.RecordExclusion(string(reason))
	}
	if e.audit != nil {
		e.audit.Log(audit.NewExclusionEvent(runID, string(comp.ID), string(reason), detail))
	}
	log.Debug("contribution not routable to a billable line",
		logging.ComponentID(string(comp.ID)), logging.Reason(string(reason)))

	nd, known := ctb.Diameter, ctb.DiameterKnown
	if !known {
		nd, known = resolve.NominalDiameter(comp)
	}
	return pivot.FallbackKey(comp.MaterialCode(), comp.InstallType(), nd, known)
}

// ClearIdentifiers resets the persisted identifier state to empty.
func (e *Engine) ClearIdentifiers() error {
	if e.store == nil {
		return nil
	}
	state, err := e.store.Load()
	if err != nil {
		return NewError("ClearIdentifiers").State(e.store.Path()).Cause(err)
	}
	allocator := identity.NewAllocator(state)
	allocator.ClearAll()
	if err := e.store.Save(allocator.State()); err != nil {
		return NewError("ClearIdentifiers").State(e.store.Path()).WithContext("save").Cause(err)
	}
	if e.audit != nil {
		e.audit.Log(audit.NewEvent("", audit.ActionClear, audit.ResourceState, e.store.Path(), audit.StatusSuccess))
	}
	e.logger.Info("identifier state cleared", logging.Path(e.store.Path()))
	return nil
}

func (e *Engine) finishRun(runID, status string, start time.Time) {
	if e.metrics != nil {
		e.metrics.RecordScan(status, time.Since(start))
	}
	if e.audit != nil {
		s := audit.StatusSuccess
		if status != "success" {
			s = audit.StatusFailure
		}
		e.audit.Log(audit.NewEvent(runID, audit.ActionScan, audit.ResourceReport, "", s))
	}
}
