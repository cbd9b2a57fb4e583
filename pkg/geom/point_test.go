package geom

import (
	"math"
	"testing"
)

// TestDistanceTo_PythagoreanTriple tests the classic 3-4-5 triangle
func TestDistanceTo_PythagoreanTriple(t *testing.T) {
	a := Point3D{0, 0, 0}
	b := Point3D{3, 4, 0}

	if d := a.DistanceTo(b); d != 5.0 {
		t.Errorf("expected distance 5.0, got %v", d)
	}
}

// TestDistanceTo_Symmetric tests that distance is direction-independent
func TestDistanceTo_Symmetric(t *testing.T) {
	a := Point3D{1, 2, 3}
	b := Point3D{-4, 0, 7}

	if a.DistanceTo(b) != b.DistanceTo(a) {
		t.Error("distance should be symmetric")
	}
}

// TestUnit_DegenerateVector tests normalization of a near-zero vector
func TestUnit_DegenerateVector(t *testing.T) {
	v := Vector3D{X: 1e-6}

	if _, ok := v.Unit(); ok {
		t.Error("near-zero vector should not normalize")
	}
}

// TestUnit_Length tests that unit vectors have length one
func TestUnit_Length(t *testing.T) {
	v := Vector3D{X: 3, Y: -4, Z: 12}

	u, ok := v.Unit()
	if !ok {
		t.Fatal("expected vector to normalize")
	}
	if math.Abs(u.Length()-1.0) > 1e-12 {
		t.Errorf("unit vector length = %v, want 1", u.Length())
	}
}

// TestCentroid_Empty tests centroid of no points
func TestCentroid_Empty(t *testing.T) {
	if _, ok := Centroid(nil); ok {
		t.Error("empty point set should have no centroid")
	}
}

// TestCentroid_Triangle tests centroid of three points
func TestCentroid_Triangle(t *testing.T) {
	c, ok := Centroid([]Point3D{{0, 0, 0}, {3, 0, 0}, {0, 3, 0}})
	if !ok {
		t.Fatal("expected centroid")
	}
	want := Point3D{1, 1, 0}
	if c != want {
		t.Errorf("centroid = %v, want %v", c, want)
	}
}

// TestPolylineLength_ThroughVertex tests an elbow-style two-segment path
func TestPolylineLength_ThroughVertex(t *testing.T) {
	total := PolylineLength(Point3D{0, 0, 0}, Point3D{3, 0, 0}, Point3D{3, 4, 0})

	if total != 7.0 {
		t.Errorf("polyline length = %v, want 7.0", total)
	}
}

// TestProjectOntoSegment_Interior tests projection inside the segment
func TestProjectOntoSegment_Interior(t *testing.T) {
	p := Point3D{5, 3, 0}
	a := Point3D{0, 0, 0}
	b := Point3D{10, 0, 0}

	proj, param := ProjectOntoSegment(p, a, b)
	if proj != (Point3D{5, 0, 0}) {
		t.Errorf("projection = %v, want (5,0,0)", proj)
	}
	if param != 0.5 {
		t.Errorf("parameter = %v, want 0.5", param)
	}
}

// TestProjectOntoSegment_ClampedPastEnd tests clamping past the far endpoint
func TestProjectOntoSegment_ClampedPastEnd(t *testing.T) {
	p := Point3D{15, 3, 0}
	a := Point3D{0, 0, 0}
	b := Point3D{10, 0, 0}

	proj, param := ProjectOntoSegment(p, a, b)
	if proj != b {
		t.Errorf("projection = %v, want clamped to %v", proj, b)
	}
	if param != 1.0 {
		t.Errorf("parameter = %v, want 1.0", param)
	}
}

// TestProjectOntoSegment_DegenerateSegment tests a zero-length segment
func TestProjectOntoSegment_DegenerateSegment(t *testing.T) {
	a := Point3D{2, 2, 2}

	proj, param := ProjectOntoSegment(Point3D{9, 9, 9}, a, a)
	if proj != a || param != 0 {
		t.Errorf("degenerate segment should project onto its start, got %v/%v", proj, param)
	}
}

// TestDistanceToSegment_Perpendicular tests the perpendicular branch distance
func TestDistanceToSegment_Perpendicular(t *testing.T) {
	d := DistanceToSegment(Point3D{5, 7, 0}, Point3D{0, 0, 0}, Point3D{10, 0, 0})

	if d != 7.0 {
		t.Errorf("distance = %v, want 7.0", d)
	}
}
