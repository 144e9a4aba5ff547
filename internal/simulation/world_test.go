package simulation

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"gridchase/internal/config"
	"gridchase/internal/grid"
	"gridchase/internal/navigation"
	"gridchase/internal/threading"
)

func parse(t *testing.T, text string) *grid.MapData {
	t.Helper()
	data, err := grid.ParseMap(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	return data
}

func newTestWorld(t *testing.T, cfg *config.Config, text string) *World {
	t.Helper()
	w, err := NewWorld(cfg, parse(t, text), nil)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

const duelMap = `
.....
.EP..
.....
`

// runUntilContact steps without input until some agent touches the target.
func runUntilContact(t *testing.T, w *World) TickResult {
	t.Helper()
	for i := 0; i < 500; i++ {
		result, err := w.Step(context.Background(), Input{})
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		for _, r := range result.Reports {
			if r.Colliding {
				return result
			}
		}
	}
	t.Fatalf("agents never reached the target")
	return TickResult{}
}

func TestNewWorld_PlacesSpawns(t *testing.T) {
	w := newTestWorld(t, config.Default(), `
E...#
....#
..P.E
`)
	if len(w.Agents()) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(w.Agents()))
	}
	if pos := w.Agents()[1].Position(); pos.X != 4 || pos.Y != 2 {
		t.Errorf("second agent at %+v, want (4,2)", pos)
	}
	target := w.Target()
	if target.Box.X != 2 || target.Box.Y != 2 {
		t.Errorf("target at (%v,%v), want (2,2)", target.Box.X, target.Box.Y)
	}
	if target.Health != config.Default().Target.Health {
		t.Errorf("target health = %d", target.Health)
	}
}

func TestNewWorld_WithoutTargetMarkerUsesLastOpenCell(t *testing.T) {
	w := newTestWorld(t, config.Default(), `
E..
..#
`)
	if box := w.Target().Box; box.X != 1 || box.Y != 1 {
		t.Errorf("target at (%v,%v), want (1,1)", box.X, box.Y)
	}

	_, err := NewWorld(config.Default(), parse(t, "##\n##\n"), nil)
	if !errors.Is(err, ErrNoOpenCell) {
		t.Errorf("expected ErrNoOpenCell, got %v", err)
	}
}

func TestStep_AttackGate(t *testing.T) {
	cfg := config.Default()
	cfg.Target.Health = 3
	cfg.Combat.AttackDamage = 1
	w := newTestWorld(t, cfg, duelMap)
	interval := uint64(cfg.AttackIntervalTicks())

	var attackTicks []uint64
	result := runUntilContact(t, w)
	if result.Attacks != 1 {
		t.Fatalf("first contact should attack immediately, got %d", result.Attacks)
	}
	attackTicks = append(attackTicks, result.Tick)

	for i := 0; i < int(interval)*5; i++ {
		result, err := w.Step(context.Background(), Input{})
		if err != nil {
			t.Fatalf("Step: %v", err)
		}
		if result.Attacks > 0 {
			attackTicks = append(attackTicks, result.Tick)
		}
		if w.Target().Health < 0 {
			t.Fatalf("health went negative")
		}
	}

	if len(attackTicks) != 3 {
		t.Fatalf("expected exactly 3 attacks before defeat, got %v", attackTicks)
	}
	for i := 1; i < len(attackTicks); i++ {
		if gap := attackTicks[i] - attackTicks[i-1]; gap != interval {
			t.Errorf("attack gap %d, want %d", gap, interval)
		}
	}
	if w.Target().Alive() {
		t.Errorf("target should be defeated")
	}
	if got := w.Monitor().GetCurrentMetrics().Attacks; got != 3 {
		t.Errorf("monitor counted %d attacks", got)
	}
}

func TestStep_DamageNeverExceedsHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Target.Health = 3
	cfg.Combat.AttackDamage = 5
	w := newTestWorld(t, cfg, duelMap)

	result := runUntilContact(t, w)
	if result.Damage != 3 || !result.Defeated {
		t.Errorf("expected 3 damage and defeat, got %+v", result)
	}
	if w.Target().Health != 0 {
		t.Errorf("health = %d, want 0", w.Target().Health)
	}
}

func TestStep_TargetSlowedAfterContact(t *testing.T) {
	cfg := config.Default()
	cfg.Target.Speed = 0.05
	cfg.Target.SlowSpeed = 0.01
	w := newTestWorld(t, cfg, duelMap)

	runUntilContact(t, w)
	if !w.Target().Slowed {
		t.Fatalf("target should be slowed after contact")
	}

	before := w.Target().Box.X
	if _, err := w.Step(context.Background(), Input{DX: 1}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if moved := w.Target().Box.X - before; math.Abs(moved-0.01) > 1e-12 {
		t.Errorf("slowed target moved %v, want 0.01", moved)
	}
}

func TestStep_TargetStopsAtWalls(t *testing.T) {
	cfg := config.Default()
	cfg.Target.Speed = 0.3
	w := newTestWorld(t, cfg, `
E....
.....
...P#
`)
	for i := 0; i < 20; i++ {
		if _, err := w.Step(context.Background(), Input{DX: 1, DY: 1}); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	box := w.Target().Box
	if box.X+box.Width > 4 || box.Y+box.Height > 3 {
		t.Errorf("target left the open area: %+v", box)
	}
}

func TestStep_DiagonalInputIsNormalised(t *testing.T) {
	cfg := config.Default()
	cfg.Target.Speed = 0.1
	w := newTestWorld(t, cfg, `
E.......
........
...P....
........
........
`)
	before := w.Target().Box.Position()
	if _, err := w.Step(context.Background(), Input{DX: 1, DY: 1}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	moved := w.Target().Box.Position().Sub(before).Length()
	if math.Abs(moved-0.1) > 1e-12 {
		t.Errorf("diagonal step length %v, want 0.1", moved)
	}
}

func TestStep_CancelledContext(t *testing.T) {
	w := newTestWorld(t, config.Default(), duelMap)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := w.Step(ctx, Input{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if w.Tick() != 0 {
		t.Errorf("cancelled step must not advance the tick")
	}
}

// errAfterFirst reports cancellation from its second Err call on, so Step
// starts normally and is cancelled while the agents advance.
type errAfterFirst struct {
	context.Context
	calls int
}

func (c *errAfterFirst) Err() error {
	c.calls++
	if c.calls > 1 {
		return context.Canceled
	}
	return nil
}

func TestStep_CancelledMidStepClosesTimer(t *testing.T) {
	w := newTestWorld(t, config.Default(), duelMap)
	ctx := &errAfterFirst{Context: context.Background()}

	if _, err := w.Step(ctx, Input{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if w.Tick() != 0 {
		t.Errorf("cancelled step must not advance the tick")
	}
	if got := w.Monitor().GetCurrentMetrics().Ticks; got != 1 {
		t.Errorf("step timer recorded %d steps, want 1", got)
	}
}

func TestSolverStats_MatchReplans(t *testing.T) {
	w := newTestWorld(t, config.Default(), `
E.........
..........
..........
####......
P.........
`)
	for i := 0; i < 200; i++ {
		if _, err := w.Step(context.Background(), Input{}); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	searches, expanded := w.SolverStats()
	replans := w.Monitor().GetCurrentMetrics().Replans
	if searches == 0 || expanded == 0 {
		t.Fatalf("agent should have planned around the wall, got %d searches", searches)
	}
	if uint64(searches) != replans {
		t.Errorf("solver ran %d searches but %d replans were reported", searches, replans)
	}
}

func TestQueueMap_SwapsBetweenTicks(t *testing.T) {
	w := newTestWorld(t, config.Default(), `
E.........
..........
..........
####......
P.........
`)
	for i := 0; i < 5; i++ {
		w.Step(context.Background(), Input{})
	}
	if w.Agents()[0].Path() == nil {
		t.Fatalf("agent should be following a path around the wall")
	}

	replacement := parse(t, `
E.........
..........
..........
..........
P.........
`)
	w.QueueMap(replacement)
	if w.Map() == replacement.Map {
		t.Fatalf("map swapped before the next tick")
	}

	result, err := w.Step(context.Background(), Input{})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !result.MapSwapped || w.Map() != replacement.Map {
		t.Fatalf("queued map was not installed")
	}
	if result.Reports[0].State != navigation.Homing {
		t.Errorf("open map should let the agent home straight in, got %v", result.Reports[0].State)
	}
}

func TestQueueMap_RespawnsBlockedEntities(t *testing.T) {
	w := newTestWorld(t, config.Default(), `
E...
....
...P
`)
	w.QueueMap(parse(t, `
#E..
....
...P
`))
	if _, err := w.Step(context.Background(), Input{}); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if pos := w.Agents()[0].Position(); pos.X < 1 {
		t.Errorf("agent inside the new wall at %+v", pos)
	}
}

func TestStep_ParallelMatchesSequential(t *testing.T) {
	text := grid.DefaultArena
	cfg := config.Default()

	sequential, err := NewWorld(cfg, parse(t, text), threading.NewComponents(1))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	components := threading.NewComponents(4)
	defer components.Shutdown()
	parallel, err := NewWorld(cfg, parse(t, text), components)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}

	inputs := []Input{{DX: 1}, {DY: 1}, {DX: -1}, {DY: -1}, {}}
	for i := 0; i < 600; i++ {
		in := inputs[(i/60)%len(inputs)]
		if _, err := sequential.Step(context.Background(), in); err != nil {
			t.Fatalf("sequential Step: %v", err)
		}
		if _, err := parallel.Step(context.Background(), in); err != nil {
			t.Fatalf("parallel Step: %v", err)
		}
	}

	for i, a := range sequential.Agents() {
		b := parallel.Agents()[i]
		if a.Position() != b.Position() || a.State() != b.State() {
			t.Errorf("agent %d diverged: %+v/%v vs %+v/%v", i, a.Position(), a.State(), b.Position(), b.State())
		}
	}
}

func TestRestart(t *testing.T) {
	cfg := config.Default()
	cfg.Target.Health = 1
	w := newTestWorld(t, cfg, duelMap)
	runUntilContact(t, w)
	if w.Target().Alive() {
		t.Fatalf("expected defeat")
	}

	w.Restart()
	if !w.Target().Alive() || w.Tick() != 0 {
		t.Errorf("restart should restore health and tick")
	}
	if pos := w.Agents()[0].Position(); pos.X != 1 || pos.Y != 1 {
		t.Errorf("agent not back on spawn: %+v", pos)
	}
	if w.Monitor().GetCurrentMetrics().Ticks != 0 {
		t.Errorf("monitor should be reset")
	}
}
