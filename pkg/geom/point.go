package geom

import "math"

// Point3D is a position in model space
type Point3D struct {
	X float64
	Y float64
	Z float64
}

// Sub returns the vector from q to p
func (p Point3D) Sub(q Point3D) Vector3D {
	return Vector3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Add returns p translated by v
func (p Point3D) Add(v Vector3D) Point3D {
	return Point3D{X: p.X + v.X, Y: p.Y + v.Y, Z: p.Z + v.Z}
}

// DistanceTo returns the Euclidean distance between p and q
func (p Point3D) DistanceTo(q Point3D) float64 {
	return p.Sub(q).Length()
}

// Vector3D is a displacement in model space
type Vector3D struct {
	X float64
	Y float64
	Z float64
}

// Length returns the Euclidean norm of v
func (v Vector3D) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Dot returns the dot product of v and w
func (v Vector3D) Dot(w Vector3D) float64 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

// Scale returns v multiplied by s
func (v Vector3D) Scale(s float64) Vector3D {
	return Vector3D{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Unit returns the unit vector in the direction of v.
// Returns ok=false when v is too short to normalize reliably.
func (v Vector3D) Unit() (Vector3D, bool) {
	l := v.Length()
	if l < degenerateLength {
		return Vector3D{}, false
	}
	return v.Scale(1 / l), true
}

// degenerateLength is the threshold below which a vector is treated as
// zero-length. Model units are millimeters in practice, so anything under
// a thousandth of a unit is noise.
const degenerateLength = 1e-3

// Centroid returns the arithmetic mean of the given points.
// Returns ok=false for an empty slice.
func Centroid(points []Point3D) (Point3D, bool) {
	if len(points) == 0 {
		return Point3D{}, false
	}
	var c Point3D
	for _, p := range points {
		c.X += p.X
		c.Y += p.Y
		c.Z += p.Z
	}
	n := float64(len(points))
	return Point3D{X: c.X / n, Y: c.Y / n, Z: c.Z / n}, true
}

// PolylineLength returns the summed segment lengths through the given
// points in order. Fewer than two points yields zero.
func PolylineLength(points ...Point3D) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceTo(points[i])
	}
	return total
}

// ProjectOntoSegment projects point p onto the segment from a to b and
// returns the closest point on the segment together with the clamped
// projection parameter in [0,1]. A degenerate segment projects onto a.
func ProjectOntoSegment(p, a, b Point3D) (Point3D, float64) {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < degenerateLength*degenerateLength {
		return a, 0
	}
	t := p.Sub(a).Dot(ab) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return a.Add(ab.Scale(t)), t
}

// DistanceToSegment returns the distance from p to its clamped projection
// onto the segment from a to b.
func DistanceToSegment(p, a, b Point3D) float64 {
	proj, _ := ProjectOntoSegment(p, a, b)
	return p.DistanceTo(proj)
}
