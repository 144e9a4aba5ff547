// Package grid holds the tile occupancy map the navigation core reads. A Map is
// immutable once built so it can be shared across agents without locking.
package grid

import (
	"errors"
	"fmt"

	"gridchase/internal/geometry"
	"gridchase/internal/mathutil"
)

// Cell is the state of one grid square.
type Cell uint8

const (
	Open Cell = iota
	Wall
)

func (c Cell) String() string {
	switch c {
	case Open:
		return "open"
	case Wall:
		return "wall"
	default:
		return fmt.Sprintf("cell(%d)", uint8(c))
	}
}

// Coord is an integer cell position: X is the column, Y the row.
type Coord struct {
	X int
	Y int
}

// Point returns the top-left corner of the cell in continuous coordinates.
func (c Coord) Point() geometry.Point {
	return geometry.Point{X: float64(c.X), Y: float64(c.Y)}
}

var (
	ErrEmptyMap       = errors.New("map has no cells")
	ErrNotRectangular = errors.New("map rows have different widths")
)

// Map is a rectangular occupancy array indexed cells[row][col].
type Map struct {
	cells      [][]Cell
	width      int
	height     int
	boundaries []geometry.Segment
}

// New builds a map from rows of cells. The rows are copied.
func New(rows [][]Cell) (*Map, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyMap
	}
	width := len(rows[0])
	cells := make([][]Cell, len(rows))
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has width %d, expected %d: %w", y, len(row), width, ErrNotRectangular)
		}
		cells[y] = append([]Cell(nil), row...)
	}

	m := &Map{cells: cells, width: width, height: len(rows)}
	m.boundaries = m.buildBoundaries()
	return m, nil
}

// FromInts builds a map from a 0/1 array where 1 marks a wall. Any non-zero
// value is treated as a wall.
func FromInts(rows [][]int) (*Map, error) {
	converted := make([][]Cell, len(rows))
	for y, row := range rows {
		converted[y] = make([]Cell, len(row))
		for x, v := range row {
			if v != 0 {
				converted[y][x] = Wall
			}
		}
	}
	return New(converted)
}

// MustFromInts is FromInts that panics on malformed input. Intended for
// fixtures and built-in maps.
func MustFromInts(rows [][]int) *Map {
	m, err := FromInts(rows)
	if err != nil {
		panic("grid: " + err.Error())
	}
	return m
}

// Width returns the number of columns
func (m *Map) Width() int {
	return m.width
}

// Height returns the number of rows
func (m *Map) Height() int {
	return m.height
}

// InBounds reports whether c addresses a cell of the map.
func (m *Map) InBounds(c Coord) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < m.width && c.Y < m.height
}

// At returns the cell at c. Anything outside the map reads as a wall.
func (m *Map) At(c Coord) Cell {
	if !m.InBounds(c) {
		return Wall
	}
	return m.cells[c.Y][c.X]
}

// IsWall reports whether column x, row y is impassable.
func (m *Map) IsWall(x, y int) bool {
	return m.At(Coord{X: x, Y: y}) == Wall
}

// IsTileBlocking implements collision.TileChecker.
func (m *Map) IsTileBlocking(tileX, tileY int) bool {
	return m.IsWall(tileX, tileY)
}

// GetWorldBounds implements collision.TileChecker.
func (m *Map) GetWorldBounds() (width, height int) {
	return m.width, m.height
}

// Boundaries returns the wall boundary segments. The slice is shared and must
// not be modified.
func (m *Map) Boundaries() []geometry.Segment {
	return m.boundaries
}

// CellAt returns the cell containing p (floor convention). This is the
// "current cell" of a body whose top-left corner is at p.
func (m *Map) CellAt(p geometry.Point) Coord {
	return Coord{X: mathutil.FloorInt(p.X), Y: mathutil.FloorInt(p.Y)}
}

// NearestCell returns the cell whose top-left corner is closest to p (round
// convention).
func (m *Map) NearestCell(p geometry.Point) Coord {
	return Coord{X: mathutil.RoundInt(p.X), Y: mathutil.RoundInt(p.Y)}
}

// Clamp pulls c into the map bounds.
func (m *Map) Clamp(c Coord) Coord {
	return Coord{
		X: mathutil.IntClamp(c.X, 0, m.width-1),
		Y: mathutil.IntClamp(c.Y, 0, m.height-1),
	}
}

// WallCount returns the number of wall cells.
func (m *Map) WallCount() int {
	count := 0
	for _, row := range m.cells {
		for _, c := range row {
			if c == Wall {
				count++
			}
		}
	}
	return count
}

// OpenCells lists every open cell in row-major order.
func (m *Map) OpenCells() []Coord {
	var open []Coord
	for y, row := range m.cells {
		for x, c := range row {
			if c == Open {
				open = append(open, Coord{X: x, Y: y})
			}
		}
	}
	return open
}
