package geometry

import "math"

// Point represents a 2D coordinate in tile units. Also used as a direction vector.
type Point struct {
	X, Y float64
}

// Add returns p translated by d
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns the vector from q to p
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale multiplies both components by s
func (p Point) Scale(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Length returns the euclidean length of p as a vector
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsZero reports whether both components are exactly zero.
func (p Point) IsZero() bool {
	return p.X == 0 && p.Y == 0
}

// Normalized returns p scaled to unit length. The zero vector has no direction,
// so ok is false and callers must treat it as "already arrived".
func (p Point) Normalized() (unit Point, ok bool) {
	length := p.Length()
	if length == 0 {
		return Point{}, false
	}
	return Point{X: p.X / length, Y: p.Y / length}, true
}

// Distance returns the straight-line distance between two points
func Distance(a, b Point) float64 {
	return b.Sub(a).Length()
}

// Segment is a wall boundary between A and B.
type Segment struct {
	A, B Point
}

// IsAxisAligned reports whether the segment is horizontal or vertical.
func (s Segment) IsAxisAligned() bool {
	return s.A.X == s.B.X || s.A.Y == s.B.Y
}
