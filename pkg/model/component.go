package model

import (
	"strings"

	"github.com/dd0wney/cluso-takeoff/pkg/geom"
)

// ComponentID is the opaque identifier of a component in the host model.
// The engine never interprets it beyond equality and ordering.
type ComponentID string

// Class is the product class of a component. It decides which measurement
// algorithm applies.
type Class string

const (
	ClassPipe       Class = "Pipe"
	ClassElbow      Class = "Elbow"
	ClassTee        Class = "Tee"
	ClassCross      Class = "Cross"
	ClassReducer    Class = "Reducer"
	ClassValve      Class = "Valve"
	ClassFlange     Class = "Flange"
	ClassCoupling   Class = "Coupling"
	ClassInstrument Class = "Instrument"
	ClassOrifice    Class = "OrificePlate"
	ClassOlet       Class = "Olet"
	ClassGasket     Class = "Gasket"
	ClassFastener   Class = "Fastener"
	ClassOther      Class = "Other"
)

// IsTwoPortFitting reports whether the class is measured as a straight
// span between its two ports.
func (c Class) IsTwoPortFitting() bool {
	switch c {
	case ClassValve, ClassFlange, ClassCoupling, ClassInstrument, ClassOrifice, ClassOlet, ClassElbow:
		return true
	}
	return false
}

// IsBranching reports whether the class decomposes into run and branch
// geometry.
func (c Class) IsBranching() bool {
	return c == ClassTee || c == ClassCross
}

// IsConnector reports whether the class is a gasket/fastener measured as a
// thickness between its designated endpoint ports.
func (c Class) IsConnector() bool {
	return c == ClassGasket || c == ClassFastener
}

// Port is a connection point on a component. Name is optional; fastener
// thickness endpoints carry names, most ports do not.
type Port struct {
	Name     string
	Position geom.Point3D
}

// Component is a read-only view of one model entity: identity, class, ports
// in model order, and a case-insensitive property bag. The engine never
// mutates components.
type Component struct {
	ID    ComponentID
	Class Class
	Ports []Port

	props map[string]Value
}

// NewComponent builds a component with the given properties. Property keys
// are folded to lower case once at construction.
func NewComponent(id ComponentID, class Class, ports []Port, props map[string]Value) *Component {
	bag := make(map[string]Value, len(props))
	for k, v := range props {
		bag[strings.ToLower(k)] = v
	}
	return &Component{ID: id, Class: class, Ports: ports, props: bag}
}

// Property returns the named property. Lookup is case-insensitive; a
// missing key returns ok=false, never a panic.
func (c *Component) Property(key string) (Value, bool) {
	v, ok := c.props[strings.ToLower(key)]
	return v, ok
}

// StringProperty returns the named property rendered as text, or "" when
// absent.
func (c *Component) StringProperty(key string) string {
	v, ok := c.Property(key)
	if !ok {
		return ""
	}
	return v.Text()
}

// Properties returns a copy of the property bag with lower-cased keys.
func (c *Component) Properties() map[string]Value {
	out := make(map[string]Value, len(c.props))
	for k, v := range c.props {
		out[k] = v
	}
	return out
}

// PortByName returns the port with the given name, matched
// case-insensitively.
func (c *Component) PortByName(name string) (Port, bool) {
	for _, p := range c.Ports {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Port{}, false
}

// Well-known property keys. Lookup is case-insensitive so these are
// canonical spellings, not requirements on the source data.
const (
	PropLineTag       = "LineTag"
	PropMaterialCode  = "MaterialCode"
	PropNominalSize   = "NominalSize"
	PropInstallType   = "InstallType"
	PropNumericID     = "NumericId"
	PropAccessOpening = "AccessOpening"
)

// LineTag returns the component's own pipeline line tag, "" when untagged.
func (c *Component) LineTag() string {
	return c.StringProperty(PropLineTag)
}

// MaterialCode returns the component's material code, "" when absent.
func (c *Component) MaterialCode() string {
	return c.StringProperty(PropMaterialCode)
}

// InstallType returns the installation-method attribute, "" when absent.
func (c *Component) InstallType() string {
	return c.StringProperty(PropInstallType)
}
