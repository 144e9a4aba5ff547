package navigation

import (
	"math"

	"gridchase/internal/geometry"
	"gridchase/internal/grid"
)

// DefaultProbeEpsilon is how far past a grid line the boundary probe looks.
const DefaultProbeEpsilon = 1e-5

// Obstructed reports whether a wall lies between any of the four corner pairs.
// Corner i of from is tested against corner i of to, so a clear result means
// the whole rectangle can travel without clipping a wall.
//
// Each pair is blocked when the nearest wall hit along the ray from the from
// corner is closer than the to corner, or when the from corner lies on a grid
// line and the cell just past that line, in the ray's direction, is a wall.
func Obstructed(from, to [4]geometry.Point, m *grid.Map, probeEpsilon float64) bool {
	walls := m.Boundaries()
	for i := range from {
		delta := to[i].Sub(from[i])
		distance := delta.Length()
		if distance == 0 {
			continue
		}

		if hit, ok := geometry.CastToward(from[i], delta, walls); ok {
			if geometry.Distance(from[i], hit) < distance {
				return true
			}
		}

		if probeBlocked(from[i], delta, m, probeEpsilon) {
			return true
		}
	}
	return false
}

// probeBlocked handles a corner sitting exactly on a grid line. A ray cast
// from there runs along or starts on wall edges and may report nothing, so
// the cell immediately past the line in the ray's direction is looked up
// directly.
func probeBlocked(corner, delta geometry.Point, m *grid.Map, epsilon float64) bool {
	onColumnLine := corner.X == math.Floor(corner.X)
	onRowLine := corner.Y == math.Floor(corner.Y)
	if !onColumnLine && !onRowLine {
		return false
	}

	probe := corner
	if onColumnLine {
		probe.X += nudge(delta.X, epsilon)
	}
	if onRowLine {
		probe.Y += nudge(delta.Y, epsilon)
	}
	cell := m.CellAt(probe)
	return m.At(cell) == grid.Wall
}

func nudge(direction, epsilon float64) float64 {
	switch {
	case direction > 0:
		return epsilon
	case direction < 0:
		return -epsilon
	default:
		return 0
	}
}
