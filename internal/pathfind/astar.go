// Package pathfind finds shortest routes between cells of a tile grid.
//
// The search is A* over 4-connected open cells with unit step cost and the
// Manhattan distance as heuristic. Manhattan distance never overestimates a
// 4-connected unit-cost route, so returned paths are shortest paths.
package pathfind

import (
	"math"

	"gridchase/internal/grid"
	"gridchase/internal/mathutil"
)

// Grid is the read-only view of a tile map the solver needs.
type Grid interface {
	Width() int
	Height() int
	IsWall(x, y int) bool
}

var neighbourOffsets = [4]grid.Coord{{X: 1, Y: 0}, {X: -1, Y: 0}, {X: 0, Y: 1}, {X: 0, Y: -1}}

type pathScratch struct {
	gScore   []int
	cameFrom []int
	closed   []bool
	width    int
	height   int
	heap     nodeHeap
}

func (ps *pathScratch) prepare(width, height int) {
	size := width * height
	if cap(ps.gScore) < size {
		ps.gScore = make([]int, size)
		ps.cameFrom = make([]int, size)
		ps.closed = make([]bool, size)
	} else {
		ps.gScore = ps.gScore[:size]
		ps.cameFrom = ps.cameFrom[:size]
		ps.closed = ps.closed[:size]
	}
	for i := 0; i < size; i++ {
		ps.gScore[i] = math.MaxInt
		ps.cameFrom[i] = -1
		ps.closed[i] = false
	}
	ps.width = width
	ps.height = height
	ps.heap.reset()
}

func (ps *pathScratch) index(c grid.Coord) int {
	if c.X < 0 || c.Y < 0 || c.X >= ps.width || c.Y >= ps.height {
		return -1
	}
	return c.Y*ps.width + c.X
}

func (ps *pathScratch) coord(idx int) grid.Coord {
	return grid.Coord{X: idx % ps.width, Y: idx / ps.width}
}

// Solver runs A* queries. It keeps its scratch buffers between calls to avoid
// reallocating per query but carries no other state, so one Solver can serve
// any number of sequential queries. A Solver is not safe for concurrent use;
// give each agent its own.
type Solver struct {
	scratch  pathScratch
	searches int
	expanded int
}

// NewSolver creates a new solver
func NewSolver() *Solver {
	return &Solver{}
}

// Stats reports how many searches ran and how many nodes they expanded in total.
func (s *Solver) Stats() (searches, expanded int) {
	return s.searches, s.expanded
}

// Solve returns a shortest sequence of 4-adjacent open cells from start to
// goal, both inclusive. The start cell itself is never checked for walls.
//
// When start equals goal, or the goal cannot be reached, the result is the
// single cell [start]. Use Normalize before reading path[1].
func (s *Solver) Solve(g Grid, start, goal grid.Coord) []grid.Coord {
	s.searches++

	width, height := g.Width(), g.Height()
	if width <= 0 || height <= 0 {
		return []grid.Coord{start}
	}

	ps := &s.scratch
	ps.prepare(width, height)

	startIdx := ps.index(start)
	goalIdx := ps.index(goal)
	if startIdx < 0 || goalIdx < 0 || startIdx == goalIdx || g.IsWall(goal.X, goal.Y) {
		return []grid.Coord{start}
	}

	ps.gScore[startIdx] = 0
	ps.heap.push(gridNode{idx: startIdx, g: 0, f: manhattan(start, goal)})

	for ps.heap.len() > 0 {
		current, _ := ps.heap.pop()
		if ps.closed[current.idx] || current.g > ps.gScore[current.idx] {
			continue
		}
		if current.idx == goalIdx {
			return reconstructPath(ps, goalIdx)
		}
		ps.closed[current.idx] = true
		s.expanded++

		coord := ps.coord(current.idx)
		for _, off := range neighbourOffsets {
			neighbour := grid.Coord{X: coord.X + off.X, Y: coord.Y + off.Y}
			nidx := ps.index(neighbour)
			if nidx < 0 || ps.closed[nidx] || g.IsWall(neighbour.X, neighbour.Y) {
				continue
			}
			tentativeG := current.g + 1
			if tentativeG < ps.gScore[nidx] {
				ps.cameFrom[nidx] = current.idx
				ps.gScore[nidx] = tentativeG
				ps.heap.push(gridNode{idx: nidx, g: tentativeG, f: tentativeG + manhattan(neighbour, goal)})
			}
		}
	}

	return []grid.Coord{start}
}

// Normalize guarantees a path of at least two cells so that a current->next
// segment always exists. A lone cell is duplicated; an empty path becomes
// [fallback, fallback].
func Normalize(path []grid.Coord, fallback grid.Coord) []grid.Coord {
	switch len(path) {
	case 0:
		return []grid.Coord{fallback, fallback}
	case 1:
		return []grid.Coord{path[0], path[0]}
	default:
		return path
	}
}

// IsTrivial reports whether a normalized path goes nowhere.
func IsTrivial(path []grid.Coord) bool {
	return len(path) < 2 || path[0] == path[len(path)-1]
}

func manhattan(a, b grid.Coord) int {
	return mathutil.IntAbs(a.X-b.X) + mathutil.IntAbs(a.Y-b.Y)
}

func reconstructPath(ps *pathScratch, endIdx int) []grid.Coord {
	path := make([]grid.Coord, 0, 16)
	current := endIdx
	for current >= 0 {
		path = append(path, ps.coord(current))
		current = ps.cameFrom[current]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
