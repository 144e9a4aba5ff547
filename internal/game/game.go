package game

import (
	"context"
	"fmt"
	"log"

	"gridchase/internal/config"
	"gridchase/internal/navigation"
	"gridchase/internal/simulation"
	"gridchase/internal/threading"
	"gridchase/internal/watch"

	"github.com/hajimehoshi/ebiten/v2"
)

const maxMessages = 6

// ChaseGame is the ebiten front end. It feeds keyboard input into the
// simulation once per tick and draws the result.
type ChaseGame struct {
	config    *config.Config
	world     *simulation.World
	threading *threading.Components
	watcher   *watch.MapWatcher
	input     *InputHandler
	renderer  *Renderer

	// UI state
	paused         bool
	showPaths      bool
	showBoundaries bool
	showStats      bool

	lastResult simulation.TickResult
	messages   []string
	caught     bool
}

// NewChaseGame wires a world to the window. watcher may be nil.
func NewChaseGame(cfg *config.Config, world *simulation.World, components *threading.Components, watcher *watch.MapWatcher) *ChaseGame {
	g := &ChaseGame{
		config:    cfg,
		world:     world,
		threading: components,
		watcher:   watcher,
		showPaths: cfg.Display.ShowPaths,
		showStats: true,
	}
	g.input = NewInputHandler(g)
	g.renderer = NewRenderer(g)
	return g
}

// Update handles input, pending map reloads and one simulation step
func (g *ChaseGame) Update() error {
	g.pollWatcher()

	cmd := g.input.HandleInput()
	if cmd.Quit {
		return ebiten.Termination
	}
	g.applyToggles(cmd)

	if g.paused || g.reachedTickLimit() {
		return nil
	}

	result, err := g.world.Step(context.Background(), cmd.Move)
	if err != nil {
		return fmt.Errorf("simulation step: %w", err)
	}
	g.record(result)

	for _, alert := range g.threading.CheckPerformanceAlerts() {
		log.Printf("Warning: %s (%.1fms > %.1fms)", alert.Message, alert.Value, alert.Threshold)
	}
	return nil
}

// Draw renders the map, entities and HUD
func (g *ChaseGame) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

// Layout returns the screen dimensions
func (g *ChaseGame) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return g.config.Display.ScreenWidth, g.config.Display.ScreenHeight
}

func (g *ChaseGame) applyToggles(cmd Command) {
	if cmd.TogglePause {
		g.paused = !g.paused
	}
	if cmd.TogglePaths {
		g.showPaths = !g.showPaths
	}
	if cmd.ToggleBoundaries {
		g.showBoundaries = !g.showBoundaries
	}
	if cmd.ToggleStats {
		g.showStats = !g.showStats
	}
	if cmd.Restart {
		g.world.Restart()
		g.caught = false
		g.lastResult = simulation.TickResult{}
		g.addMessage("Restarted")
	}
}

func (g *ChaseGame) reachedTickLimit() bool {
	limit := g.config.Simulation.MaxTicks
	return limit > 0 && g.world.Tick() >= uint64(limit)
}

// pollWatcher hands a freshly parsed map to the world without blocking the frame.
func (g *ChaseGame) pollWatcher() {
	if g.watcher == nil {
		return
	}
	select {
	case data, ok := <-g.watcher.Maps:
		if !ok {
			g.watcher = nil
			return
		}
		g.world.QueueMap(data)
	case err, ok := <-g.watcher.Errors:
		if ok {
			log.Printf("Warning: map reload failed: %v", err)
			g.addMessage("Map reload failed")
		}
	default:
	}
}

// record turns a tick result into HUD messages
func (g *ChaseGame) record(result simulation.TickResult) {
	g.lastResult = result
	if result.MapSwapped {
		g.addMessage("Map reloaded")
	}
	for i, report := range result.Reports {
		if report.Colliding && result.Attacks > 0 && i < len(g.world.Agents()) {
			target := g.world.Target()
			g.addMessage(fmt.Sprintf("Agent %d hits (%d/%d)", g.world.Agents()[i].ID, target.Health, target.MaxHealth))
			break
		}
	}
	if result.Defeated && !g.caught {
		g.caught = true
		g.addMessage(fmt.Sprintf("Caught after %d ticks", result.Tick+1))
	}
}

func (g *ChaseGame) addMessage(msg string) {
	g.messages = append(g.messages, msg)
	if len(g.messages) > maxMessages {
		g.messages = g.messages[len(g.messages)-maxMessages:]
	}
}

// stateCounts tallies agents per movement state for the HUD
func stateCounts(reports []navigation.Report) map[navigation.State]int {
	counts := make(map[navigation.State]int, 3)
	for _, r := range reports {
		counts[r.State]++
	}
	return counts
}
