package scan

import (
	"strconv"
	"strings"

	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
	"github.com/dd0wney/cluso-takeoff/pkg/resolve"
)

// PipeTarget is the billing-relevant view of the pipe chosen to represent a
// line tag: the attributes its contributions are billed under.
type PipeTarget struct {
	Component     model.ComponentID
	LineTag       string
	Material      string
	InstallType   string
	Diameter      float64
	DiameterKnown bool

	numericID    float64
	hasNumericID bool
}

// buildPipeIndex selects one target pipe per line tag. When several pipes
// carry the same tag the winner is decided by ascending material code, then
// ascending numeric ID, then ascending component identifier, so the result
// does not depend on enumeration order.
func buildPipeIndex(p provider.Provider) map[string]PipeTarget {
	index := make(map[string]PipeTarget)
	for _, id := range p.ComponentIDs() {
		comp, ok := p.Component(id)
		if !ok || comp.Class != model.ClassPipe {
			continue
		}
		tag := comp.LineTag()
		if tag == "" {
			continue
		}

		candidate := pipeTargetOf(comp)
		current, exists := index[tag]
		if !exists || pipeTargetLess(candidate, current) {
			index[tag] = candidate
		}
	}
	return index
}

func pipeTargetOf(comp *model.Component) PipeTarget {
	t := PipeTarget{
		Component:   comp.ID,
		LineTag:     comp.LineTag(),
		Material:    comp.MaterialCode(),
		InstallType: comp.InstallType(),
	}
	if nd, known := resolve.NominalDiameter(comp); known {
		t.Diameter = nd
		t.DiameterKnown = true
	}
	if v, ok := comp.Property(model.PropNumericID); ok {
		if f, err := v.AsFloat(); err == nil {
			t.numericID = f
			t.hasNumericID = true
		} else if s, serr := v.AsString(); serr == nil {
			if parsed, perr := strconv.ParseFloat(strings.TrimSpace(s), 64); perr == nil {
				t.numericID = parsed
				t.hasNumericID = true
			}
		}
	}
	return t
}

// pipeTargetLess orders candidates sharing a line tag. Pipes without a
// numeric ID sort after those with one.
func pipeTargetLess(a, b PipeTarget) bool {
	if a.Material != b.Material {
		return a.Material < b.Material
	}
	if a.hasNumericID != b.hasNumericID {
		return a.hasNumericID
	}
	if a.hasNumericID && a.numericID != b.numericID {
		return a.numericID < b.numericID
	}
	return model.NaturalLess(string(a.Component), string(b.Component))
}
