package provider

import (
	"testing"

	"github.com/dd0wney/cluso-takeoff/pkg/geom"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
)

func pipe(id string, a, b geom.Point3D, props map[string]model.Value) *model.Component {
	return model.NewComponent(model.ComponentID(id), model.ClassPipe, []model.Port{
		{Position: a},
		{Position: b},
	}, props)
}

// TestAddComponent_Duplicate tests duplicate id rejection
func TestAddComponent_Duplicate(t *testing.T) {
	m := NewMemoryModel()

	if err := m.AddComponent(pipe("P1", geom.Point3D{}, geom.Point3D{X: 1}, nil)); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := m.AddComponent(pipe("P1", geom.Point3D{}, geom.Point3D{X: 2}, nil)); err == nil {
		t.Fatal("duplicate add should fail")
	}
}

// TestConnectedNeighbor_PositionMatch tests epsilon-based endpoint matching
func TestConnectedNeighbor_PositionMatch(t *testing.T) {
	m := NewMemoryModel()
	joint := geom.Point3D{X: 10}
	m.AddComponent(pipe("P1", geom.Point3D{}, joint, nil))
	m.AddComponent(pipe("P2", geom.Point3D{X: 10.01}, geom.Point3D{X: 20}, nil))

	m.Connect(
		ConnectionEnd{Component: "P1", Position: joint},
		ConnectionEnd{Component: "P2", Position: geom.Point3D{X: 10.01}},
	)

	neighbor, port, ok := m.ConnectedNeighbor("P1", model.Port{Position: joint})
	if !ok {
		t.Fatal("expected neighbor across the joint")
	}
	if neighbor != "P2" {
		t.Errorf("neighbor = %s, want P2", neighbor)
	}
	if port.Position.X != 10.01 {
		t.Errorf("matched wrong neighbor port: %+v", port)
	}
}

// TestConnectedNeighbor_NameMatch tests case-insensitive port name matching
func TestConnectedNeighbor_NameMatch(t *testing.T) {
	m := NewMemoryModel()
	g := model.NewComponent("G1", model.ClassGasket, []model.Port{
		{Name: "First", Position: geom.Point3D{X: 5}},
		{Name: "Second", Position: geom.Point3D{X: 5.003}},
	}, nil)
	m.AddComponent(g)
	m.AddComponent(pipe("P1", geom.Point3D{}, geom.Point3D{X: 5}, nil))

	m.Connect(
		ConnectionEnd{Component: "G1", PortName: "FIRST", Position: geom.Point3D{X: 5}},
		ConnectionEnd{Component: "P1", Position: geom.Point3D{X: 5}},
	)

	first, _ := g.PortByName("First")
	neighbor, _, ok := m.ConnectedNeighbor("G1", first)
	if !ok || neighbor != "P1" {
		t.Fatalf("name-matched lookup failed: %v %v", neighbor, ok)
	}
}

// TestConnectedNeighbor_NoConnection tests the expected-absence case
func TestConnectedNeighbor_NoConnection(t *testing.T) {
	m := NewMemoryModel()
	m.AddComponent(pipe("P1", geom.Point3D{}, geom.Point3D{X: 1}, nil))

	if _, _, ok := m.ConnectedNeighbor("P1", model.Port{Position: geom.Point3D{X: 1}}); ok {
		t.Error("unconnected port should resolve no neighbor")
	}
}

// TestConnectedNeighbor_DanglingReference tests a connection to a component
// outside the snapshot
func TestConnectedNeighbor_DanglingReference(t *testing.T) {
	m := NewMemoryModel()
	m.AddComponent(pipe("P1", geom.Point3D{}, geom.Point3D{X: 1}, nil))
	m.Connect(
		ConnectionEnd{Component: "P1", Position: geom.Point3D{X: 1}},
		ConnectionEnd{Component: "GHOST", Position: geom.Point3D{X: 1}},
	)

	if _, _, ok := m.ConnectedNeighbor("P1", model.Port{Position: geom.Point3D{X: 1}}); ok {
		t.Error("connection to a missing component should not resolve")
	}
}

// TestConnectivityBundle tests fastener bundle co-membership
func TestConnectivityBundle(t *testing.T) {
	m := NewMemoryModel()
	for _, id := range []string{"F1", "G1", "FL1"} {
		m.AddComponent(pipe(id, geom.Point3D{}, geom.Point3D{X: 1}, nil))
	}
	m.AddBundle([]model.ComponentID{"F1", "G1", "FL1"})

	got := m.ConnectivityBundle("G1")
	if len(got) != 2 {
		t.Fatalf("bundle of G1 = %v, want two co-members", got)
	}
	if m.ConnectivityBundle("F1")[0] == "F1" {
		t.Error("bundle lookup should exclude the component itself")
	}
}

// TestProperties_MissingComponent tests the never-nil contract
func TestProperties_MissingComponent(t *testing.T) {
	m := NewMemoryModel()

	props := m.Properties("NOPE")
	if props == nil {
		t.Fatal("missing component must yield an empty bag, not nil")
	}
	if len(props) != 0 {
		t.Errorf("expected empty bag, got %v", props)
	}
}

// TestComponentIDs_Order tests stable enumeration order
func TestComponentIDs_Order(t *testing.T) {
	m := NewMemoryModel()
	for _, id := range []string{"C", "A", "B"} {
		m.AddComponent(pipe(id, geom.Point3D{}, geom.Point3D{X: 1}, nil))
	}

	ids := m.ComponentIDs()
	want := []model.ComponentID{"C", "A", "B"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("enumeration order = %v, want %v", ids, want)
		}
	}
}
