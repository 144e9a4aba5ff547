package grid

import "gridchase/internal/geometry"

// wallInBounds treats space outside the map as open so only real wall cells
// contribute edges.
func (m *Map) wallInBounds(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.cells[y][x] == Wall
}

// buildBoundaries collects every unit edge separating a wall cell from
// non-wall space and merges collinear neighbours into maximal runs. Merging
// leaves no interior endpoints for a ray to slip through.
func (m *Map) buildBoundaries() []geometry.Segment {
	var segments []geometry.Segment

	// Horizontal lines y = 0..height, edge (x,y)-(x+1,y) lies between rows y-1 and y.
	for y := 0; y <= m.height; y++ {
		runStart := -1
		for x := 0; x <= m.width; x++ {
			edge := x < m.width && m.wallInBounds(x, y-1) != m.wallInBounds(x, y)
			if edge && runStart < 0 {
				runStart = x
			}
			if !edge && runStart >= 0 {
				segments = append(segments, geometry.Segment{
					A: geometry.Point{X: float64(runStart), Y: float64(y)},
					B: geometry.Point{X: float64(x), Y: float64(y)},
				})
				runStart = -1
			}
		}
	}

	// Vertical lines x = 0..width, edge (x,y)-(x,y+1) lies between columns x-1 and x.
	for x := 0; x <= m.width; x++ {
		runStart := -1
		for y := 0; y <= m.height; y++ {
			edge := y < m.height && m.wallInBounds(x-1, y) != m.wallInBounds(x, y)
			if edge && runStart < 0 {
				runStart = y
			}
			if !edge && runStart >= 0 {
				segments = append(segments, geometry.Segment{
					A: geometry.Point{X: float64(x), Y: float64(runStart)},
					B: geometry.Point{X: float64(x), Y: float64(y)},
				})
				runStart = -1
			}
		}
	}

	return segments
}
