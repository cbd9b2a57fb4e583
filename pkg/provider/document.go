package provider

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-takeoff/pkg/geom"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

// Document is the YAML representation of a network model, used by the CLI
// and by test fixtures. It is input plumbing for MemoryModel, not a CAD
// exchange format.
type Document struct {
	Components  []ComponentDoc  `yaml:"components"`
	Connections []ConnectionDoc `yaml:"connections"`
	Bundles     [][]string      `yaml:"bundles"`
}

// ComponentDoc describes one component in a model document.
type ComponentDoc struct {
	ID         string         `yaml:"id"`
	Class      string         `yaml:"class"`
	Ports      []PortDoc      `yaml:"ports"`
	Properties map[string]any `yaml:"properties"`
}

// PortDoc describes one port. Name is optional.
type PortDoc struct {
	Name string  `yaml:"name"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
	Z    float64 `yaml:"z"`
}

// ConnectionDoc joins two component ports. Each end names its port or
// falls back to the indexed port's position.
type ConnectionDoc struct {
	From EndDoc `yaml:"from"`
	To   EndDoc `yaml:"to"`
}

// EndDoc is one side of a connection.
type EndDoc struct {
	Component string `yaml:"component"`
	Port      string `yaml:"port"`
	PortIndex *int   `yaml:"port_index"`
}

// LoadDocument reads a model document from disk.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model document: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse model document: %w", err)
	}
	return &doc, nil
}

// Build converts the document into a populated MemoryModel.
func (d *Document) Build() (*MemoryModel, error) {
	m := NewMemoryModel()

	for _, cd := range d.Components {
		if cd.ID == "" {
			return nil, fmt.Errorf("component without id")
		}
		ports := make([]model.Port, len(cd.Ports))
		for i, pd := range cd.Ports {
			ports[i] = model.Port{
				Name:     pd.Name,
				Position: geom.Point3D{X: pd.X, Y: pd.Y, Z: pd.Z},
			}
		}
		props := make(map[string]model.Value, len(cd.Properties))
		for k, raw := range cd.Properties {
			v, err := valueFromAny(raw)
			if err != nil {
				return nil, fmt.Errorf("component %s property %s: %w", cd.ID, k, err)
			}
			props[k] = v
		}
		class := model.Class(cd.Class)
		if class == "" {
			class = model.ClassOther
		}
		c := model.NewComponent(model.ComponentID(cd.ID), class, ports, props)
		if err := m.AddComponent(c); err != nil {
			return nil, err
		}
	}

	for i, conn := range d.Connections {
		from, err := d.resolveEnd(m, conn.From)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		to, err := d.resolveEnd(m, conn.To)
		if err != nil {
			return nil, fmt.Errorf("connection %d: %w", i, err)
		}
		m.Connect(from, to)
	}

	for _, bundle := range d.Bundles {
		members := make([]model.ComponentID, len(bundle))
		for i, id := range bundle {
			members[i] = model.ComponentID(id)
		}
		m.AddBundle(members)
	}

	return m, nil
}

func (d *Document) resolveEnd(m *MemoryModel, end EndDoc) (ConnectionEnd, error) {
	id := model.ComponentID(end.Component)
	c, ok := m.Component(id)
	if !ok {
		return ConnectionEnd{}, fmt.Errorf("end references %s: %w", end.Component, ErrComponentNotFound)
	}

	out := ConnectionEnd{Component: id, PortName: end.Port}
	switch {
	case end.Port != "":
		p, ok := c.PortByName(end.Port)
		if !ok {
			return ConnectionEnd{}, fmt.Errorf("component %s has no port named %q", end.Component, end.Port)
		}
		out.Position = p.Position
	case end.PortIndex != nil:
		idx := *end.PortIndex
		if idx < 0 || idx >= len(c.Ports) {
			return ConnectionEnd{}, fmt.Errorf("component %s has no port index %d", end.Component, idx)
		}
		out.PortName = c.Ports[idx].Name
		out.Position = c.Ports[idx].Position
	default:
		return ConnectionEnd{}, fmt.Errorf("end for %s names neither port nor port_index", end.Component)
	}
	return out, nil
}

func valueFromAny(raw any) (model.Value, error) {
	switch v := raw.(type) {
	case string:
		return model.StringValue(v), nil
	case int:
		return model.FloatValue(float64(v)), nil
	case int64:
		return model.FloatValue(float64(v)), nil
	case float64:
		return model.FloatValue(v), nil
	case bool:
		// Flags like AccessOpening arrive as booleans in documents.
		if v {
			return model.StringValue("true"), nil
		}
		return model.StringValue("false"), nil
	default:
		return model.Value{}, fmt.Errorf("unsupported property type %T", raw)
	}
}
