// Package provider defines the boundary between the takeoff engine and the
// host model. The engine consumes components, ports, connection records and
// fastener bundles through the Provider interface and never reaches past it.
package provider

import (
	"errors"

	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

// Common sentinel errors
var (
	ErrComponentNotFound = errors.New("component not found")
	ErrDuplicateID       = errors.New("duplicate component id")
)

// Provider is a read-only snapshot of the host model for the duration of a
// run. All lookups are expected to be cheap; the engine calls them per
// component and per port.
type Provider interface {
	// ComponentIDs enumerates every component in the snapshot, in model
	// order. The scan restricts itself to this universe.
	ComponentIDs() []model.ComponentID

	// Component returns the full component view: class, ports, properties.
	Component(id model.ComponentID) (*model.Component, bool)

	// Properties returns the component's property bag with case-insensitive
	// keys. Missing components return an empty bag, never nil.
	Properties(id model.ComponentID) map[string]model.Value

	// Ports returns the component's ports in model order.
	Ports(id model.ComponentID) []model.Port

	// ConnectedNeighbor finds the other endpoint of the physical connection
	// at the given port. Port matching is by exact case-insensitive name
	// when both sides carry names, else by nearest position under the
	// provider's epsilon. Absence of a connection is an expected outcome.
	ConnectedNeighbor(id model.ComponentID, port model.Port) (model.ComponentID, model.Port, bool)

	// ConnectivityBundle returns the components sharing the given
	// component's physical-drawing bundle (fastener sets and the parts they
	// join). A component with no bundle returns an empty slice.
	ConnectivityBundle(id model.ComponentID) []model.ComponentID
}
