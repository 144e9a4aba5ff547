// Package navigation moves a pursuing agent toward a moving target across a
// tile map. Each Advance call is one tick: the agent homes straight at the
// target while it can see it, and otherwise walks a freshly planned A* path
// one cell at a time.
package navigation

import (
	"fmt"

	"gridchase/internal/collision"
	"gridchase/internal/geometry"
	"gridchase/internal/grid"
	"gridchase/internal/pathfind"
)

// State is the movement mode of an agent.
type State int

const (
	// Homing moves straight at the target's centre.
	Homing State = iota
	// Transitioning heads for the first committed cell of a new path.
	Transitioning
	// FollowingPath walks cell to cell along the committed path.
	FollowingPath
)

func (s State) String() string {
	switch s {
	case Homing:
		return "homing"
	case Transitioning:
		return "transitioning"
	case FollowingPath:
		return "following-path"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// DefaultCornerInset pulls the agent's right and bottom corners just inside
// its box so a box flush with a grid line is not read as touching the next cell.
const DefaultCornerInset = 0.999

// Options configures a new agent. Zero values fall back to defaults.
type Options struct {
	Width        float64
	Height       float64
	Speed        float64 // tile units per tick
	CornerInset  float64
	ProbeEpsilon float64
}

// Report describes what happened during one Advance call.
type Report struct {
	State State
	// Colliding is set when the agent overlaps the target; no movement was made.
	Colliding bool
	// Replans counts solver invocations during the tick.
	Replans int
	// Reached is set when a sub-goal was reached and the agent snapped to it.
	Reached bool
	// Moved is the displacement applied this tick.
	Moved geometry.Point
}

// Agent is a pursuing entity. It owns its position, its path state and its
// solver; nothing in it is shared with other agents.
type Agent struct {
	ID  int
	Box collision.Box

	speed        float64
	cornerInset  float64
	probeEpsilon float64

	state         State
	path          []grid.Coord
	subGoal       geometry.Point
	hasSubGoal    bool
	followingPath bool

	solver *pathfind.Solver
}

// NewAgent creates an agent with its top-left corner at (x, y)
func NewAgent(id int, x, y float64, opts Options) *Agent {
	if opts.Width <= 0 {
		opts.Width = 1
	}
	if opts.Height <= 0 {
		opts.Height = 1
	}
	if opts.Speed <= 0 {
		opts.Speed = 0.02
	}
	if opts.CornerInset <= 0 || opts.CornerInset > 1 {
		opts.CornerInset = DefaultCornerInset
	}
	if opts.ProbeEpsilon <= 0 {
		opts.ProbeEpsilon = DefaultProbeEpsilon
	}
	return &Agent{
		ID:           id,
		Box:          collision.NewBox(x, y, opts.Width, opts.Height),
		speed:        opts.Speed,
		cornerInset:  opts.CornerInset,
		probeEpsilon: opts.ProbeEpsilon,
		state:        Homing,
		solver:       pathfind.NewSolver(),
	}
}

// Position returns the top-left corner of the agent
func (a *Agent) Position() geometry.Point {
	return a.Box.Position()
}

// State returns the current movement mode
func (a *Agent) State() State {
	return a.state
}

// Speed returns the per-tick speed
func (a *Agent) Speed() float64 {
	return a.speed
}

// Path returns a copy of the committed path, nil while homing.
func (a *Agent) Path() []grid.Coord {
	if a.path == nil {
		return nil
	}
	return append([]grid.Coord(nil), a.path...)
}

// SubGoal returns the point the agent is currently steering to in path mode.
func (a *Agent) SubGoal() (geometry.Point, bool) {
	return a.subGoal, a.hasSubGoal
}

// SolverStats exposes the agent's solver counters.
func (a *Agent) SolverStats() (searches, expanded int) {
	return a.solver.Stats()
}

// Reset discards all path state, e.g. after the map was replaced.
func (a *Agent) Reset() {
	a.discardPath()
	a.state = Homing
}

// CollidesWith reports whether the agent's box overlaps the target's.
func (a *Agent) CollidesWith(target collision.Box) bool {
	return a.Box.Overlaps(target)
}

// Obstructed reports whether a wall lies between the agent and the given corners.
func (a *Agent) Obstructed(corners [4]geometry.Point, m *grid.Map) bool {
	return Obstructed(a.Box.InsetCorners(a.cornerInset), corners, m, a.probeEpsilon)
}

// Advance runs one tick of pursuit. The map and target are only read.
func (a *Agent) Advance(target collision.Box, m *grid.Map) Report {
	if a.CollidesWith(target) {
		return Report{State: a.state, Colliding: true}
	}

	if !a.Obstructed(target.GetCorners(), m) && a.homingKeepsSight(target, m) {
		return a.home(target)
	}

	var report Report
	if !a.hasSubGoal {
		a.replan(target, m)
		report.Replans++
		if a.followingPath {
			a.setSubGoal(a.path[1])
		} else {
			a.state = Transitioning
			a.setSubGoal(a.initialSubGoal(m))
		}
	}

	start := a.Position()
	remaining := a.subGoal.Sub(start)
	direction, ok := remaining.Normalized()
	if !ok {
		a.completeSubGoal(target, m, &report)
		report.State = a.state
		return report
	}

	step := direction.Scale(a.speed)
	a.Box.MoveBy(step.X, step.Y)
	report.Moved = step

	if crossed(remaining, a.Position(), a.subGoal) {
		a.completeSubGoal(target, m, &report)
		report.Moved = a.Position().Sub(start)
	}
	report.State = a.state
	return report
}

func (a *Agent) home(target collision.Box) Report {
	a.discardPath()
	a.state = Homing

	report := Report{State: Homing}
	step, ok := a.homingStep(target)
	if !ok {
		return report
	}
	a.Box.MoveBy(step.X, step.Y)
	report.Moved = step
	return report
}

func (a *Agent) homingStep(target collision.Box) (geometry.Point, bool) {
	direction, ok := target.Center().Sub(a.Box.Center()).Normalized()
	if !ok {
		return geometry.Point{}, false
	}
	return direction.Scale(a.speed), true
}

// homingKeepsSight reports whether the next homing step still sees the
// target. A step that loses sight is left to the path, otherwise the path
// walks the agent back to where it can see and the two alternate. Inside the
// goal cell the path is trivial, so homing always proceeds there.
func (a *Agent) homingKeepsSight(target collision.Box, m *grid.Map) bool {
	step, ok := a.homingStep(target)
	if !ok {
		return true
	}
	next := a.Box
	next.MoveBy(step.X, step.Y)
	if !Obstructed(next.InsetCorners(a.cornerInset), target.GetCorners(), m, a.probeEpsilon) {
		return true
	}
	return m.CellAt(a.Position()) == a.goalCell(target, m)
}

// initialSubGoal picks where to go right after planning: straight to the
// second path cell when nothing blocks it, otherwise back into the current
// cell first.
func (a *Agent) initialSubGoal(m *grid.Map) grid.Coord {
	next := a.path[1]
	if a.Obstructed(collision.TileBox(next.X, next.Y).GetCorners(), m) {
		return a.path[0]
	}
	return next
}

// completeSubGoal snaps onto the sub-goal and plans again from there, since
// the target may have moved since the last plan.
func (a *Agent) completeSubGoal(target collision.Box, m *grid.Map, report *Report) {
	a.Box.MoveTo(a.subGoal.X, a.subGoal.Y)
	a.hasSubGoal = false
	a.followingPath = true
	a.state = FollowingPath
	report.Reached = true

	a.replan(target, m)
	report.Replans++
	a.setSubGoal(a.path[1])
}

func (a *Agent) replan(target collision.Box, m *grid.Map) {
	start := m.CellAt(a.Position())
	goal := a.goalCell(target, m)
	a.path = pathfind.Normalize(a.solver.Solve(m, start, goal), start)
}

// goalCell is the cell nearest the target's centre, clamped into the map. A
// wall goal falls back to the agent's own cell so the plan degrades to
// standing still instead of failing.
func (a *Agent) goalCell(target collision.Box, m *grid.Map) grid.Coord {
	goal := m.Clamp(m.NearestCell(target.Center()))
	if m.At(goal) == grid.Wall {
		return m.CellAt(a.Position())
	}
	return goal
}

func (a *Agent) setSubGoal(c grid.Coord) {
	a.subGoal = c.Point()
	a.hasSubGoal = true
}

func (a *Agent) discardPath() {
	a.path = nil
	a.hasSubGoal = false
	a.followingPath = false
}

// crossed reports whether pos has reached or passed goal along the direction
// of travel on either axis. Motion is straight at the goal, so both axes cross
// on the same tick up to rounding.
func crossed(travel, pos, goal geometry.Point) bool {
	return travel.X > 0 && pos.X >= goal.X || travel.X < 0 && pos.X <= goal.X ||
		travel.Y > 0 && pos.Y >= goal.Y || travel.Y < 0 && pos.Y <= goal.Y
}
