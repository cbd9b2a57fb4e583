// Package resolve answers "what is on the other side of this port": the
// neighboring component's line tag and nominal diameter. Absence of an
// answer is an expected outcome, not a failure.
package resolve

import (
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
)

// Neighbor is the resolved far side of a connection.
type Neighbor struct {
	Component     model.ComponentID
	LineTag       string
	Diameter      float64
	DiameterKnown bool
}

// Resolver looks up connection records through the provider and reads the
// neighbor's routing attributes.
type Resolver struct {
	provider provider.Provider
}

// New creates a resolver over the given provider snapshot.
func New(p provider.Provider) *Resolver {
	return &Resolver{provider: p}
}

// Neighbor resolves the component/port across the connection at the given
// port. ok=false when no connection record exists or the neighbor's
// identity cannot be resolved.
func (r *Resolver) Neighbor(c *model.Component, port model.Port) (Neighbor, bool) {
	neighborID, _, ok := r.provider.ConnectedNeighbor(c.ID, port)
	if !ok {
		return Neighbor{}, false
	}
	neighbor, ok := r.provider.Component(neighborID)
	if !ok {
		return Neighbor{}, false
	}

	out := Neighbor{
		Component: neighborID,
		LineTag:   neighbor.LineTag(),
	}
	if nd, known := NominalDiameter(neighbor); known {
		out.Diameter = nd
		out.DiameterKnown = true
	}
	return out, true
}

// LineTagAt returns the resolved neighbor line tag at the port, "" when
// unresolvable.
func (r *Resolver) LineTagAt(c *model.Component, port model.Port) string {
	n, ok := r.Neighbor(c, port)
	if !ok {
		return ""
	}
	return n.LineTag
}
