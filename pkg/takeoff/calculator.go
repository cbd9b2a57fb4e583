// Package takeoff computes installed-length contributions for piping
// components: how much billable length a component adds, and to which
// pipeline line tag it belongs.
package takeoff

import (
	"github.com/dd0wney/cluso-takeoff/pkg/geom"
	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/resolve"
)

// minLength is the threshold below which a measured span is treated as
// degenerate and produces no contribution.
const minLength = 1e-3

// PortRole classifies a port of a branching fitting.
type PortRole string

const (
	RoleRun    PortRole = "run"
	RoleBranch PortRole = "branch"
)

// PortDiameter is one entry of the per-port diameter listing a branching
// fitting produces alongside its contributions.
type PortDiameter struct {
	PortIndex int
	Role      PortRole
	Diameter  float64
	Known     bool
}

// Result is the output of one component measurement.
type Result struct {
	Contributions []model.Contribution
	PortDiameters []PortDiameter
}

// Calculator measures components. It never returns an error: omission from
// a takeoff is preferred over a corrupt row, so any unresolvable geometry
// yields an empty result.
type Calculator struct {
	resolver *resolve.Resolver
	logger   logging.Logger
}

// NewCalculator creates a calculator using the given resolver.
func NewCalculator(r *resolve.Resolver, logger logging.Logger) *Calculator {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Calculator{resolver: r, logger: logger}
}

// Compute produces the installed-length contributions for one component.
// Fail-soft: malformed input yields an empty result.
func (c *Calculator) Compute(comp *model.Component) (result Result) {
	if comp == nil {
		return Result{}
	}
	defer func() {
		// A takeoff scan must survive any single malformed component.
		if r := recover(); r != nil {
			c.logger.Warn("measurement panicked, component skipped",
				logging.ComponentID(string(comp.ID)), logging.Any("panic", r))
			result = Result{}
		}
	}()

	switch {
	case comp.Class == model.ClassPipe:
		return c.computeStraight(comp)
	case comp.Class == model.ClassReducer:
		return c.computeReducer(comp)
	case comp.Class.IsBranching():
		return c.computeBranching(comp)
	case comp.Class.IsConnector():
		return c.computeConnector(comp)
	case comp.Class.IsTwoPortFitting():
		return c.computeTwoPort(comp)
	default:
		return Result{}
	}
}

// computeStraight measures a pipe segment between its two end ports.
func (c *Calculator) computeStraight(comp *model.Component) Result {
	if len(comp.Ports) < 2 {
		return Result{}
	}
	length := comp.Ports[0].Position.DistanceTo(comp.Ports[1].Position)
	if length < minLength {
		return Result{}
	}

	contrib := model.Contribution{
		TargetLineTag: comp.LineTag(),
		Length:        length,
		Source:        comp.ID,
	}
	if nd, ok := resolve.NominalDiameter(comp); ok {
		contrib.Diameter = nd
		contrib.DiameterKnown = true
	}
	return Result{Contributions: []model.Contribution{contrib}}
}

// computeTwoPort measures a valve/flange/coupling/instrument/orifice/olet/
// elbow as the span between its two ports. Elbows measure through their
// vertex when one is available so arc-adjacent geometry is not
// under-reported.
func (c *Calculator) computeTwoPort(comp *model.Component) Result {
	if len(comp.Ports) < 2 {
		return Result{}
	}
	a, b := comp.Ports[0], comp.Ports[1]

	length := a.Position.DistanceTo(b.Position)
	if comp.Class == model.ClassElbow {
		if vertex, ok := elbowVertex(comp); ok {
			length = geom.PolylineLength(a.Position, vertex, b.Position)
		}
	}
	if length < minLength {
		return Result{}
	}

	endA := c.endpoint(comp, a)
	endB := c.endpoint(comp, b)
	return Result{Contributions: c.attributeSpan(comp, length, endA, endB, firstKnownDiameter)}
}

// computeConnector measures a gasket/fastener thickness between its named
// endpoint ports (first two ports when unnamed) and attributes it like a
// two-port fitting.
func (c *Calculator) computeConnector(comp *model.Component) Result {
	a, okA := comp.PortByName("First")
	b, okB := comp.PortByName("Second")
	if !okA || !okB {
		if len(comp.Ports) < 2 {
			return Result{}
		}
		a, b = comp.Ports[0], comp.Ports[1]
	}

	length := a.Position.DistanceTo(b.Position)
	if length < minLength {
		return Result{}
	}

	endA := c.endpoint(comp, a)
	endB := c.endpoint(comp, b)
	return Result{Contributions: c.attributeSpan(comp, length, endA, endB, firstKnownDiameter)}
}

// computeReducer attributes the full measured length to the larger-diameter
// side, ties broken by the first port. Reducers never split.
func (c *Calculator) computeReducer(comp *model.Component) Result {
	if len(comp.Ports) < 2 {
		return Result{}
	}
	a, b := comp.Ports[0], comp.Ports[1]

	length := a.Position.DistanceTo(b.Position)
	if length < minLength {
		return Result{}
	}

	endA := c.endpoint(comp, a)
	endB := c.endpoint(comp, b)

	// Larger resolved diameter wins; unknown loses to known; the first
	// port wins ties.
	winner, loser := endA, endB
	if endB.neighbor.DiameterKnown &&
		(!endA.neighbor.DiameterKnown || endB.neighbor.Diameter > endA.neighbor.Diameter) {
		winner, loser = endB, endA
	}

	contrib := model.Contribution{
		TargetLineTag: winner.neighbor.LineTag,
		Length:        length,
		Source:        comp.ID,
	}
	if contrib.TargetLineTag == "" {
		contrib.TargetLineTag = comp.LineTag()
	}
	if contrib.TargetLineTag == "" {
		// Last resort: route to whichever side resolved at all.
		contrib.TargetLineTag = loser.neighbor.LineTag
	}
	if winner.neighbor.DiameterKnown {
		contrib.Diameter = winner.neighbor.Diameter
		contrib.DiameterKnown = true
	} else if nd, ok := resolve.NominalDiameter(comp); ok {
		contrib.Diameter = nd
		contrib.DiameterKnown = true
	}
	return Result{Contributions: []model.Contribution{contrib}}
}

// endpoint bundles a port with its resolved neighbor, if any.
type endpoint struct {
	port     model.Port
	neighbor resolve.Neighbor
	resolved bool
}

func (c *Calculator) endpoint(comp *model.Component, port model.Port) endpoint {
	n, ok := c.resolver.Neighbor(comp, port)
	return endpoint{port: port, neighbor: n, resolved: ok}
}

// diameterRule picks the target diameter when a whole span goes to a
// single tag and both endpoints resolved.
type diameterRule func(a, b resolve.Neighbor) (float64, bool)

// firstKnownDiameter picks the first resolvable neighbor diameter.
func firstKnownDiameter(a, b resolve.Neighbor) (float64, bool) {
	if a.DiameterKnown {
		return a.Diameter, true
	}
	if b.DiameterKnown {
		return b.Diameter, true
	}
	return 0, false
}

// maxKnownDiameter picks the larger of the resolved diameters; run spans of
// branching fittings use it.
func maxKnownDiameter(a, b resolve.Neighbor) (float64, bool) {
	switch {
	case a.DiameterKnown && b.DiameterKnown:
		if a.Diameter >= b.Diameter {
			return a.Diameter, true
		}
		return b.Diameter, true
	case a.DiameterKnown:
		return a.Diameter, true
	case b.DiameterKnown:
		return b.Diameter, true
	default:
		return 0, false
	}
}

// attributeSpan applies the self-tag/split-by-neighbor rule to a measured
// span between two endpoints:
//
//   - the component's own line tag, when present, takes the whole length;
//   - otherwise two distinct resolved neighbor tags split it 50/50;
//   - one resolved tag takes all of it;
//   - no resolved tag yields an empty-tag contribution, which stays counted
//     but is flagged as unroutable downstream.
func (c *Calculator) attributeSpan(comp *model.Component, length float64, endA, endB endpoint, rule diameterRule) []model.Contribution {
	if selfTag := comp.LineTag(); selfTag != "" {
		contrib := model.Contribution{
			TargetLineTag: selfTag,
			Length:        length,
			Source:        comp.ID,
		}
		if d, ok := rule(endA.neighbor, endB.neighbor); ok {
			contrib.Diameter = d
			contrib.DiameterKnown = true
		} else if nd, ok := resolve.NominalDiameter(comp); ok {
			contrib.Diameter = nd
			contrib.DiameterKnown = true
		}
		return []model.Contribution{contrib}
	}

	tagA := endA.neighbor.LineTag
	tagB := endB.neighbor.LineTag

	switch {
	case tagA != "" && tagB != "" && tagA != tagB:
		half := length / 2
		return []model.Contribution{
			{TargetLineTag: tagA, Length: half, Diameter: endA.neighbor.Diameter, DiameterKnown: endA.neighbor.DiameterKnown, Source: comp.ID},
			{TargetLineTag: tagB, Length: half, Diameter: endB.neighbor.Diameter, DiameterKnown: endB.neighbor.DiameterKnown, Source: comp.ID},
		}
	case tagA != "" && tagB != "":
		// Same tag on both sides.
		contrib := model.Contribution{TargetLineTag: tagA, Length: length, Source: comp.ID}
		if d, ok := rule(endA.neighbor, endB.neighbor); ok {
			contrib.Diameter = d
			contrib.DiameterKnown = true
		}
		return []model.Contribution{contrib}
	case tagA != "":
		return []model.Contribution{{TargetLineTag: tagA, Length: length, Diameter: endA.neighbor.Diameter, DiameterKnown: endA.neighbor.DiameterKnown, Source: comp.ID}}
	case tagB != "":
		return []model.Contribution{{TargetLineTag: tagB, Length: length, Diameter: endB.neighbor.Diameter, DiameterKnown: endB.neighbor.DiameterKnown, Source: comp.ID}}
	default:
		contrib := model.Contribution{TargetLineTag: "", Length: length, Source: comp.ID}
		if nd, ok := resolve.NominalDiameter(comp); ok {
			contrib.Diameter = nd
			contrib.DiameterKnown = true
		}
		return []model.Contribution{contrib}
	}
}

// elbowVertex finds an elbow's arc vertex: a port named Vertex or Mid, or a
// third port beyond the two ends.
func elbowVertex(comp *model.Component) (geom.Point3D, bool) {
	if p, ok := comp.PortByName("Vertex"); ok {
		return p.Position, true
	}
	if p, ok := comp.PortByName("Mid"); ok {
		return p.Position, true
	}
	if len(comp.Ports) >= 3 {
		return comp.Ports[2].Position, true
	}
	return geom.Point3D{}, false
}
