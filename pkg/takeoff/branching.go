package takeoff

import (
	"strings"

	"github.com/dd0wney/cluso-takeoff/pkg/geom"
	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/resolve"
)

// computeBranching decomposes a tee or cross into run and branch geometry.
//
// Run selection is shape-based: the pair of ports whose unit vectors from
// the centroid are most nearly opposite is the straight-through run. Port
// ordering and naming are unreliable across data sources, so geometry
// decides. When the geometric method is inapplicable the fallbacks apply
// in a fixed order: neighbor diameters (two largest form the run), then
// positional (ports 0 and 1 are the run).
func (c *Calculator) computeBranching(comp *model.Component) Result {
	considered := 3
	if comp.Class == model.ClassCross {
		considered = 4
	}
	if len(comp.Ports) < considered {
		// Not enough ports to decompose; measure as a plain two-port span
		// when possible.
		if len(comp.Ports) >= 2 {
			return c.computeTwoPort(comp)
		}
		return Result{}
	}
	ports := comp.Ports[:considered]

	ends := make([]endpoint, considered)
	for i, p := range ports {
		ends[i] = c.endpoint(comp, p)
	}

	runA, runB, ok := selectRunPair(ports)
	if !ok {
		runA, runB, ok = selectRunByDiameter(ends)
	}
	if !ok {
		runA, runB = 0, 1
	}

	var branches []int
	for i := range ports {
		if i != runA && i != runB {
			branches = append(branches, i)
		}
	}

	// Size-string fallback diameters for slots whose neighbor did not
	// resolve.
	fallbackRun, fallbackBranch, haveFallback := resolve.RunBranchFromTokens(resolve.SizeTokens(comp))

	result := Result{}

	// Run span.
	runStart := ports[runA].Position
	runEnd := ports[runB].Position
	runLength := runStart.DistanceTo(runEnd)
	if runLength >= minLength {
		contribs := c.attributeSpan(comp, runLength, ends[runA], ends[runB], maxKnownDiameter)
		for i := range contribs {
			if !contribs[i].DiameterKnown && haveFallback {
				contribs[i].Diameter = fallbackRun
				contribs[i].DiameterKnown = true
			}
		}
		result.Contributions = append(result.Contributions, contribs...)
	}

	zeroBranches := hasAccessOpening(comp)
	if zeroBranches {
		c.logger.Debug("access opening on branching fitting, branch lengths zeroed",
			logging.ComponentID(string(comp.ID)))
	}

	// Branch spans: distance from each branch port to its clamped
	// projection onto the run segment.
	for _, bi := range branches {
		length := geom.DistanceToSegment(ports[bi].Position, runStart, runEnd)
		if zeroBranches {
			length = 0
		}
		if length >= minLength {
			contrib := model.Contribution{Length: length, Source: comp.ID}
			if ends[bi].resolved && ends[bi].neighbor.LineTag != "" {
				contrib.TargetLineTag = ends[bi].neighbor.LineTag
			} else {
				contrib.TargetLineTag = comp.LineTag()
			}
			if ends[bi].neighbor.DiameterKnown {
				contrib.Diameter = ends[bi].neighbor.Diameter
				contrib.DiameterKnown = true
			} else if haveFallback {
				contrib.Diameter = fallbackBranch
				contrib.DiameterKnown = true
			}
			result.Contributions = append(result.Contributions, contrib)
		}
	}

	// Per-port diameter listing for detail export. Access-opening branches
	// still appear here even though their length is forced to zero.
	for i := range ports {
		role := RoleBranch
		fallback := fallbackBranch
		if i == runA || i == runB {
			role = RoleRun
			fallback = fallbackRun
		}
		pd := PortDiameter{PortIndex: i, Role: role}
		if ends[i].neighbor.DiameterKnown {
			pd.Diameter = ends[i].neighbor.Diameter
			pd.Known = true
		} else if haveFallback {
			pd.Diameter = fallback
			pd.Known = true
		}
		result.PortDiameters = append(result.PortDiameters, pd)
	}

	return result
}

// selectRunPair picks the two ports whose centroid unit vectors have the
// most negative dot product. ok=false when the geometry is degenerate
// (coincident ports, ports on the centroid).
func selectRunPair(ports []model.Port) (int, int, bool) {
	points := make([]geom.Point3D, len(ports))
	for i, p := range ports {
		points[i] = p.Position
	}
	centroid, ok := geom.Centroid(points)
	if !ok {
		return 0, 0, false
	}

	units := make([]geom.Vector3D, len(points))
	for i, p := range points {
		u, ok := p.Sub(centroid).Unit()
		if !ok {
			return 0, 0, false
		}
		units[i] = u
	}

	bestA, bestB := -1, -1
	bestDot := 1.0
	for i := 0; i < len(units); i++ {
		for j := i + 1; j < len(units); j++ {
			if d := units[i].Dot(units[j]); d < bestDot {
				bestDot = d
				bestA, bestB = i, j
			}
		}
	}
	// A genuine run pair points in nearly opposite directions. A best pair
	// that is not even obtuse means the shape carries no run axis.
	if bestA < 0 || bestDot >= 0 {
		return 0, 0, false
	}
	return bestA, bestB, true
}

// selectRunByDiameter picks the two largest-diameter ports as the run.
// ok=false unless at least two neighbor diameters resolved.
func selectRunByDiameter(ends []endpoint) (int, int, bool) {
	first, second := -1, -1
	for i, e := range ends {
		if !e.neighbor.DiameterKnown {
			continue
		}
		switch {
		case first < 0 || e.neighbor.Diameter > ends[first].neighbor.Diameter:
			second = first
			first = i
		case second < 0 || e.neighbor.Diameter > ends[second].neighbor.Diameter:
			second = i
		}
	}
	if second < 0 {
		return 0, 0, false
	}
	if first > second {
		first, second = second, first
	}
	return first, second, true
}

// hasAccessOpening reports the manhole/access carve-out: a flagged fitting
// contributes zero length for its branch slots.
func hasAccessOpening(comp *model.Component) bool {
	v := comp.StringProperty(model.PropAccessOpening)
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}
