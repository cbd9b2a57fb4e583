package provider

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dd0wney/cluso-takeoff/pkg/geom"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

// DefaultPositionEpsilon is the distance below which two port positions are
// considered the same physical point when matching connection endpoints.
const DefaultPositionEpsilon = 0.5

// ConnectionEnd identifies one side of a connection record: a component
// plus the port it connects through, by name or position.
type ConnectionEnd struct {
	Component model.ComponentID
	PortName  string
	Position  geom.Point3D
}

// Connection is one physical joint between two components.
type Connection struct {
	A ConnectionEnd
	B ConnectionEnd
}

// MemoryModel is an in-memory Provider. It is the engine's own snapshot
// store, filled either programmatically or from a model document, and is
// what the tests and the CLI run against.
type MemoryModel struct {
	mu          sync.RWMutex
	order       []model.ComponentID
	components  map[model.ComponentID]*model.Component
	connections map[model.ComponentID][]Connection
	bundles     map[model.ComponentID][]model.ComponentID
	epsilon     float64
}

// NewMemoryModel creates an empty model with the default position epsilon.
func NewMemoryModel() *MemoryModel {
	return &MemoryModel{
		components:  make(map[model.ComponentID]*model.Component),
		connections: make(map[model.ComponentID][]Connection),
		bundles:     make(map[model.ComponentID][]model.ComponentID),
		epsilon:     DefaultPositionEpsilon,
	}
}

// SetPositionEpsilon overrides the endpoint-matching epsilon.
func (m *MemoryModel) SetPositionEpsilon(eps float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if eps > 0 {
		m.epsilon = eps
	}
}

// AddComponent registers a component. IDs must be unique.
func (m *MemoryModel) AddComponent(c *model.Component) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.components[c.ID]; exists {
		return fmt.Errorf("add component %s: %w", c.ID, ErrDuplicateID)
	}
	m.components[c.ID] = c
	m.order = append(m.order, c.ID)
	return nil
}

// Connect records a connection between a port of a and a port of b. The
// ends may name ports or just carry positions; matching back to component
// ports happens at lookup time.
func (m *MemoryModel) Connect(a, b ConnectionEnd) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conn := Connection{A: a, B: b}
	m.connections[a.Component] = append(m.connections[a.Component], conn)
	m.connections[b.Component] = append(m.connections[b.Component], conn)
}

// AddBundle records that the given components share one physical-drawing
// bundle. Every member sees every other member in its bundle lookup.
func (m *MemoryModel) AddBundle(members []model.ComponentID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range members {
		for _, other := range members {
			if other != id {
				m.bundles[id] = append(m.bundles[id], other)
			}
		}
	}
}

// ComponentIDs enumerates components in insertion order.
func (m *MemoryModel) ComponentIDs() []model.ComponentID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.ComponentID, len(m.order))
	copy(out, m.order)
	return out
}

// Component returns the component view for the given id.
func (m *MemoryModel) Component(id model.ComponentID) (*model.Component, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.components[id]
	return c, ok
}

// Properties returns the component's property bag. Missing components get
// an empty bag.
func (m *MemoryModel) Properties(id model.ComponentID) map[string]model.Value {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.components[id]
	if !ok {
		return map[string]model.Value{}
	}
	return c.Properties()
}

// Ports returns the component's ports in model order.
func (m *MemoryModel) Ports(id model.ComponentID) []model.Port {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.components[id]
	if !ok {
		return nil
	}
	return c.Ports
}

// ConnectedNeighbor finds the far side of the connection at the given port.
func (m *MemoryModel) ConnectedNeighbor(id model.ComponentID, port model.Port) (model.ComponentID, model.Port, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, conn := range m.connections[id] {
		var far ConnectionEnd
		switch {
		case conn.A.Component == id && m.endMatchesPort(conn.A, port):
			far = conn.B
		case conn.B.Component == id && m.endMatchesPort(conn.B, port):
			far = conn.A
		default:
			continue
		}

		neighbor, ok := m.components[far.Component]
		if !ok {
			// Connection points at a component outside the snapshot.
			continue
		}
		if p, ok := m.matchEndToPort(neighbor, far); ok {
			return far.Component, p, true
		}
	}
	return "", model.Port{}, false
}

// ConnectivityBundle returns the component's bundle co-members.
func (m *MemoryModel) ConnectivityBundle(id model.ComponentID) []model.ComponentID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	members := m.bundles[id]
	out := make([]model.ComponentID, len(members))
	copy(out, members)
	return out
}

// endMatchesPort decides whether a connection end refers to the given port.
// Name match wins when both sides are named; otherwise positions must agree
// within epsilon.
func (m *MemoryModel) endMatchesPort(end ConnectionEnd, port model.Port) bool {
	if end.PortName != "" && port.Name != "" {
		return strings.EqualFold(end.PortName, port.Name)
	}
	return end.Position.DistanceTo(port.Position) <= m.epsilon
}

// matchEndToPort resolves a connection end back to one of the component's
// own ports.
func (m *MemoryModel) matchEndToPort(c *model.Component, end ConnectionEnd) (model.Port, bool) {
	if end.PortName != "" {
		if p, ok := c.PortByName(end.PortName); ok {
			return p, true
		}
	}

	best := -1
	bestDist := m.epsilon
	for i, p := range c.Ports {
		if d := p.Position.DistanceTo(end.Position); d <= bestDist {
			best = i
			bestDist = d
		}
	}
	if best < 0 {
		return model.Port{}, false
	}
	return c.Ports[best], true
}
