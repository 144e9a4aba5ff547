// Package simulation drives the chase one tick at a time: it moves the
// target from player input, advances every agent against the same read-only
// snapshot of the map and target, and applies the attack gate.
package simulation

import (
	"context"
	"errors"
	"sync"

	"gridchase/internal/collision"
	"gridchase/internal/config"
	"gridchase/internal/geometry"
	"gridchase/internal/grid"
	"gridchase/internal/navigation"
	"gridchase/internal/threading"
	"gridchase/internal/threading/monitoring"
)

// ErrNoOpenCell is returned when a map has nowhere to place the target.
var ErrNoOpenCell = errors.New("map has no open cell")

// Input is the player's steering for one tick. Components are usually -1, 0
// or 1; any non-zero vector is normalised.
type Input struct {
	DX, DY float64
}

// Target is the entity being chased.
type Target struct {
	Box       collision.Box
	Health    int
	MaxHealth int
	// Slowed is set while an agent touched the target on the previous tick.
	Slowed bool
}

// Alive reports whether the target still has health left.
func (t Target) Alive() bool {
	return t.Health > 0
}

// TickResult summarises one Step.
type TickResult struct {
	Tick     uint64
	Reports  []navigation.Report
	Attacks  int
	Damage   int
	Defeated bool
	// MapSwapped is set when a queued map was installed before this tick.
	MapSwapped bool
}

// World owns the map, the target and the agents. Step must not be called
// concurrently; QueueMap may be called from any goroutine.
type World struct {
	cfg        *config.Config
	data       *grid.MapData
	collisions *collision.CollisionSystem

	target Target
	agents []*navigation.Agent
	// nextAttack[i] is the first tick on which agent i may attack again.
	nextAttack []uint64
	reports    []navigation.Report
	tick       uint64

	components *threading.Components

	pendingMu sync.Mutex
	pending   *grid.MapData
}

// NewWorld places one agent per spawn marker and the target on its marker
// (or the last open cell when the map has none).
func NewWorld(cfg *config.Config, data *grid.MapData, components *threading.Components) (*World, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if components == nil {
		components = threading.NewComponents(1)
	}
	w := &World{
		cfg:        cfg,
		components: components,
	}
	if err := w.install(data); err != nil {
		return nil, err
	}
	w.spawnAgents()
	w.target.MaxHealth = cfg.Target.Health
	w.target.Health = cfg.Target.Health
	return w, nil
}

func (w *World) install(data *grid.MapData) error {
	spawn, err := targetSpawn(data)
	if err != nil {
		return err
	}
	w.data = data
	if w.collisions == nil {
		w.collisions = collision.NewCollisionSystem(data.Map)
	} else {
		w.collisions.UpdateTileChecker(data.Map)
	}
	box := collision.NewBox(float64(spawn.X), float64(spawn.Y), w.cfg.Target.Width, w.cfg.Target.Height)
	if w.target.Box.Width == 0 || !w.collisions.CanOccupy(w.target.Box) {
		w.target.Box = box
	}
	return nil
}

func targetSpawn(data *grid.MapData) (grid.Coord, error) {
	if data == nil || data.Map == nil {
		return grid.Coord{}, grid.ErrEmptyMap
	}
	if data.HasTarget {
		return data.TargetSpawn, nil
	}
	open := data.Map.OpenCells()
	if len(open) == 0 {
		return grid.Coord{}, ErrNoOpenCell
	}
	return open[len(open)-1], nil
}

func (w *World) agentOptions() navigation.Options {
	return navigation.Options{
		Width:        w.cfg.Agent.Width,
		Height:       w.cfg.Agent.Height,
		Speed:        w.cfg.GetAgentSpeed(),
		CornerInset:  w.cfg.Agent.CornerInset,
		ProbeEpsilon: w.cfg.Agent.ProbeEpsilon,
	}
}

func (w *World) spawnAgents() {
	opts := w.agentOptions()
	w.agents = make([]*navigation.Agent, len(w.data.AgentSpawns))
	for i, spawn := range w.data.AgentSpawns {
		w.agents[i] = navigation.NewAgent(i+1, float64(spawn.X), float64(spawn.Y), opts)
	}
	w.nextAttack = make([]uint64, len(w.agents))
	w.reports = make([]navigation.Report, len(w.agents))
}

// Step runs one tick. The target moves first, then every agent advances
// against the target's new position.
func (w *World) Step(ctx context.Context, input Input) (TickResult, error) {
	if err := ctx.Err(); err != nil {
		return TickResult{}, err
	}

	var result TickResult
	if data := w.takePending(); data != nil {
		result.MapSwapped = w.replaceMap(data)
	}

	timer := w.monitor().StartStep()
	defer timer.EndStep()

	w.moveTarget(input)
	if err := w.advanceAgents(ctx); err != nil {
		return TickResult{}, err
	}

	colliding := false
	for i, report := range w.reports {
		w.monitor().AddReplans(report.Replans)
		if report.Reached {
			w.monitor().IncrementSubGoalsReached()
		}
		if report.State != navigation.Homing {
			w.monitor().IncrementPathTicks()
		}
		if !report.Colliding {
			continue
		}
		colliding = true
		w.monitor().IncrementCollisions()
		if damage, ok := w.tryAttack(i); ok {
			result.Attacks++
			result.Damage += damage
		}
	}
	w.target.Slowed = colliding

	result.Tick = w.tick
	result.Reports = append([]navigation.Report(nil), w.reports...)
	result.Defeated = !w.target.Alive()
	w.tick++
	return result, nil
}

func (w *World) moveTarget(input Input) {
	direction, ok := geometry.Point{X: input.DX, Y: input.DY}.Normalized()
	if !ok {
		return
	}
	speed := w.cfg.GetTargetSpeed()
	if w.target.Slowed {
		speed = w.cfg.GetTargetSlowSpeed()
	}
	step := direction.Scale(speed)
	w.target.Box, _ = w.collisions.MoveWithSliding(w.target.Box, step.X, step.Y)
}

func (w *World) advanceAgents(ctx context.Context) error {
	target := w.target.Box
	m := w.data.Map
	advance := func(i int) {
		w.reports[i] = w.agents[i].Advance(target, m)
	}

	if pool := w.components.WorkerPool; pool != nil && len(w.agents) > 1 {
		pool.ParallelForWithContext(ctx, 0, len(w.agents), advance)
		return ctx.Err()
	}
	for i := range w.agents {
		if err := ctx.Err(); err != nil {
			return err
		}
		advance(i)
	}
	return nil
}

// tryAttack lands a hit from agent i when its cooldown has elapsed. Health
// never drops below zero.
func (w *World) tryAttack(i int) (int, bool) {
	if w.tick < w.nextAttack[i] || !w.target.Alive() {
		return 0, false
	}
	w.nextAttack[i] = w.tick + uint64(w.cfg.AttackIntervalTicks())

	damage := w.cfg.GetAttackDamage()
	if damage > w.target.Health {
		damage = w.target.Health
	}
	w.target.Health -= damage
	w.monitor().IncrementAttacks()
	return damage, true
}

// QueueMap schedules a map swap before the next tick.
func (w *World) QueueMap(data *grid.MapData) {
	w.pendingMu.Lock()
	w.pending = data
	w.pendingMu.Unlock()
}

func (w *World) takePending() *grid.MapData {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	data := w.pending
	w.pending = nil
	return data
}

// replaceMap installs a new map. Every agent drops its path; agents and the
// target that no longer fit where they stand go back to their spawns.
func (w *World) replaceMap(data *grid.MapData) bool {
	if err := w.install(data); err != nil {
		return false
	}

	if len(w.agents) != len(data.AgentSpawns) {
		w.spawnAgents()
		return true
	}
	for i, agent := range w.agents {
		agent.Reset()
		if !w.collisions.CanOccupy(agent.Box) {
			spawn := data.AgentSpawns[i]
			agent.Box.MoveTo(float64(spawn.X), float64(spawn.Y))
		}
	}
	return true
}

// Restart puts everything back on its spawn and restores full health.
func (w *World) Restart() {
	w.target.Box = collision.Box{}
	// w.data already passed install when it became the current map.
	_ = w.install(w.data)
	w.spawnAgents()
	w.target.Health = w.target.MaxHealth
	w.target.Slowed = false
	w.tick = 0
	w.monitor().Reset()
}

func (w *World) monitor() *monitoring.PerformanceMonitor {
	return w.components.PerformanceMonitor
}

// Map returns the map currently in use
func (w *World) Map() *grid.Map {
	return w.data.Map
}

// MapData returns the parsed map with its spawn markers
func (w *World) MapData() *grid.MapData {
	return w.data
}

// Target returns a copy of the target
func (w *World) Target() Target {
	return w.target
}

// Agents returns the agents. Callers must not mutate them while Step runs.
func (w *World) Agents() []*navigation.Agent {
	return w.agents
}

// Tick returns the number of the next tick to run
func (w *World) Tick() uint64 {
	return w.tick
}

// SolverStats sums the A* counters of every agent.
func (w *World) SolverStats() (searches, expanded int) {
	for _, agent := range w.agents {
		s, e := agent.SolverStats()
		searches += s
		expanded += e
	}
	return searches, expanded
}

// Monitor returns the performance monitor fed by Step
func (w *World) Monitor() *monitoring.PerformanceMonitor {
	return w.monitor()
}
