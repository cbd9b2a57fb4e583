package grouping

import (
	"errors"
	"testing"

	"github.com/dd0wney/cluso-takeoff/pkg/geom"
	"github.com/dd0wney/cluso-takeoff/pkg/logging"
	"github.com/dd0wney/cluso-takeoff/pkg/model"
	"github.com/dd0wney/cluso-takeoff/pkg/provider"
)

func addSpan(t *testing.T, m *provider.MemoryModel, id string, a, b geom.Point3D) {
	t.Helper()
	c := model.NewComponent(model.ComponentID(id), model.ClassPipe, []model.Port{
		{Position: a}, {Position: b},
	}, nil)
	if err := m.AddComponent(c); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func link(m *provider.MemoryModel, a, b string, at geom.Point3D) {
	m.Connect(
		provider.ConnectionEnd{Component: model.ComponentID(a), Position: at},
		provider.ConnectionEnd{Component: model.ComponentID(b), Position: at},
	)
}

// TestGroup_TransitiveChain tests that A-B-C land in one group without a
// direct A-C link
func TestGroup_TransitiveChain(t *testing.T) {
	m := provider.NewMemoryModel()
	addSpan(t, m, "A", geom.Point3D{}, geom.Point3D{X: 10})
	addSpan(t, m, "B", geom.Point3D{X: 10}, geom.Point3D{X: 20})
	addSpan(t, m, "C", geom.Point3D{X: 20}, geom.Point3D{X: 30})
	link(m, "A", "B", geom.Point3D{X: 10})
	link(m, "B", "C", geom.Point3D{X: 20})

	g := NewGrouper(m, logging.NewNopLogger())
	labels, err := g.Group([]model.ComponentID{"A", "B", "C"})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if labels["A"] != labels["B"] || labels["B"] != labels["C"] {
		t.Errorf("chain not in one group: %v", labels)
	}
}

// TestGroup_BundleLinksFasteners tests bundle co-membership edges
func TestGroup_BundleLinksFasteners(t *testing.T) {
	m := provider.NewMemoryModel()
	addSpan(t, m, "FL1", geom.Point3D{}, geom.Point3D{X: 1})
	addSpan(t, m, "BOLT1", geom.Point3D{X: 500}, geom.Point3D{X: 501})
	m.AddBundle([]model.ComponentID{"FL1", "BOLT1"})

	g := NewGrouper(m, logging.NewNopLogger())
	labels, err := g.Group([]model.ComponentID{"FL1", "BOLT1"})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if labels["FL1"] != labels["BOLT1"] {
		t.Errorf("bundle members split across groups: %v", labels)
	}
}

// TestGroup_BridgeThroughUnrequested tests that an intermediate component
// outside the requested set still merges its neighbors
func TestGroup_BridgeThroughUnrequested(t *testing.T) {
	m := provider.NewMemoryModel()
	addSpan(t, m, "A", geom.Point3D{}, geom.Point3D{X: 10})
	addSpan(t, m, "MID", geom.Point3D{X: 10}, geom.Point3D{X: 20})
	addSpan(t, m, "C", geom.Point3D{X: 20}, geom.Point3D{X: 30})
	link(m, "A", "MID", geom.Point3D{X: 10})
	link(m, "MID", "C", geom.Point3D{X: 20})

	g := NewGrouper(m, logging.NewNopLogger())
	labels, err := g.Group([]model.ComponentID{"A", "C"})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if labels["A"] != labels["C"] {
		t.Errorf("bridge through unrequested component lost: %v", labels)
	}
	if _, ok := labels["MID"]; ok {
		t.Error("unrequested component must not receive a label")
	}
}

// TestGroup_LabelOrdering tests ordinal assignment by smallest member
func TestGroup_LabelOrdering(t *testing.T) {
	m := provider.NewMemoryModel()
	// Two islands: {C10, C11} and {C9}. Natural ordering puts C9 first.
	addSpan(t, m, "C10", geom.Point3D{}, geom.Point3D{X: 10})
	addSpan(t, m, "C11", geom.Point3D{X: 10}, geom.Point3D{X: 20})
	addSpan(t, m, "C9", geom.Point3D{X: 100}, geom.Point3D{X: 110})
	link(m, "C10", "C11", geom.Point3D{X: 10})

	g := NewGrouper(m, logging.NewNopLogger())
	labels, err := g.Group([]model.ComponentID{"C10", "C11", "C9"})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if labels["C9"] != "01" {
		t.Errorf("C9 label = %q, want 01", labels["C9"])
	}
	if labels["C10"] != "02" || labels["C11"] != "02" {
		t.Errorf("island labels = %v, want 02 for C10/C11", labels)
	}
}

// TestGroup_TraversalCap tests the runaway-expansion guard
func TestGroup_TraversalCap(t *testing.T) {
	m := provider.NewMemoryModel()
	ids := make([]model.ComponentID, 0, 20)
	for i := 0; i < 20; i++ {
		id := model.ComponentID(rune('A' + i))
		addSpan(t, m, string(id), geom.Point3D{X: float64(i * 10)}, geom.Point3D{X: float64(i*10 + 10)})
		ids = append(ids, id)
	}
	for i := 0; i < 19; i++ {
		link(m, string(ids[i]), string(ids[i+1]), geom.Point3D{X: float64(i*10 + 10)})
	}

	g := NewGrouper(m, logging.NewNopLogger())
	g.SetTraversalCap(5)

	if _, err := g.Group(ids); !errors.Is(err, ErrTraversalCap) {
		t.Errorf("expected ErrTraversalCap, got %v", err)
	}
}

// TestGroup_Empty tests grouping of nothing
func TestGroup_Empty(t *testing.T) {
	m := provider.NewMemoryModel()
	g := NewGrouper(m, logging.NewNopLogger())

	labels, err := g.Group(nil)
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if len(labels) != 0 {
		t.Errorf("expected no labels, got %v", labels)
	}
}

// TestGroup_ZeroPadding tests label width for a single group
func TestGroup_ZeroPadding(t *testing.T) {
	m := provider.NewMemoryModel()
	addSpan(t, m, "ONLY", geom.Point3D{}, geom.Point3D{X: 1})

	g := NewGrouper(m, logging.NewNopLogger())
	labels, err := g.Group([]model.ComponentID{"ONLY"})
	if err != nil {
		t.Fatalf("Group failed: %v", err)
	}
	if labels["ONLY"] != "01" {
		t.Errorf("label = %q, want zero-padded 01", labels["ONLY"])
	}
}
