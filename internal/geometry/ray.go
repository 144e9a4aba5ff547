package geometry

import "math"

// minRayParam excludes hits at the ray origin itself. A corner lying on a
// boundary line must not be reported as blocked by that line.
const minRayParam = 1e-9

// CastToward casts a ray from origin along delta and returns the closest point
// where it crosses one of the walls. The ray is unbounded (t >= 0). A wall only
// counts when crossed strictly between its endpoints, and walls parallel to the
// ray, including collinear ones, never report a hit. A ray running along a grid
// line therefore passes wall corners unseen; callers probe the adjacent cell.
func CastToward(origin, delta Point, walls []Segment) (Point, bool) {
	if delta.IsZero() {
		return Point{}, false
	}

	bestT := math.Inf(1)
	for _, wall := range walls {
		t, ok := intersectRaySegment(origin, delta, wall)
		if ok && t < bestT {
			bestT = t
		}
	}
	if math.IsInf(bestT, 1) {
		return Point{}, false
	}
	return origin.Add(delta.Scale(bestT)), true
}

// intersectRaySegment solves origin + t*delta = wall.A + u*(wall.B-wall.A).
func intersectRaySegment(origin, delta Point, wall Segment) (float64, bool) {
	edge := wall.B.Sub(wall.A)
	denom := cross(delta, edge)
	if denom == 0 {
		return 0, false
	}

	toWall := wall.A.Sub(origin)
	t := cross(toWall, edge) / denom
	u := cross(toWall, delta) / denom
	if t <= minRayParam || u <= 0 || u >= 1 {
		return 0, false
	}
	return t, true
}

func cross(a, b Point) float64 {
	return a.X*b.Y - a.Y*b.X
}
