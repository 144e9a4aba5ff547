// Command termchase runs the chase in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"gridchase/internal/config"
	"gridchase/internal/grid"
	"gridchase/internal/simulation"
	"gridchase/internal/threading"
	"gridchase/internal/watch"
)

func main() {
	configPath := flag.String("config", "config.yaml", "configuration file")
	mapName := flag.String("map", "", "map file, overrides the configured one")
	mute := flag.Bool("mute", false, "disable sound")
	headless := flag.Int("headless", 0, "run this many ticks without a terminal and print statistics")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config: %v, using defaults", err)
		cfg = config.Default()
	}
	if *mapName != "" {
		cfg.Map.File = *mapName
	}

	data, mapPath, err := grid.LoadMapOrArena(cfg.Map.File)
	if err != nil {
		log.Printf("Warning: Failed to load map: %v, using built-in arena", err)
	}

	components := threading.NewComponents(cfg.GetWorkers())
	defer components.Shutdown()

	world, err := simulation.NewWorld(cfg, data, components)
	if err != nil {
		log.Fatal(err)
	}

	if *headless > 0 {
		summary, err := runHeadless(context.Background(), world, *headless)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Print(summary)
		return
	}

	t, err := newTerminal(cfg, world, !*mute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer t.cleanup()

	if cfg.Map.Watch && mapPath != "" {
		watcher, err := watch.NewMapWatcher(mapPath, watch.DefaultDebounce)
		if err != nil {
			log.Printf("Warning: Failed to watch map file: %v", err)
		} else {
			defer watcher.Close()
			t.watcher = watcher
		}
	}

	if err := t.run(); err != nil {
		t.cleanup()
		log.Fatal(err)
	}
}

// terminal is the interactive tcell front end
type terminal struct {
	screen  tcell.Screen
	view    *view
	world   *simulation.World
	sound   *soundPlayer
	watcher *watch.MapWatcher
	tick    time.Duration

	heading simulation.Input
	paused  bool
	caught  bool
	closed  bool
}

func newTerminal(cfg *config.Config, world *simulation.World, sound bool) (*terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	t := &terminal{
		screen: screen,
		view:   &view{screen: screen, showPaths: cfg.Display.ShowPaths},
		world:  world,
		tick:   time.Second / time.Duration(cfg.GetTPS()),
	}

	t.sound, err = newSoundPlayer(sound)
	if err != nil {
		// Non-fatal, the chase runs without sound
		log.Printf("Audio initialization failed: %v", err)
	}
	return t, nil
}

func (t *terminal) run() error {
	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !t.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			t.pollWatcher()
			if err := t.step(); err != nil {
				return err
			}
			t.view.draw(t.world, statusLine(t.world, t.paused))
		}
	}
}

func (t *terminal) step() error {
	if t.paused {
		return nil
	}
	result, err := t.world.Step(context.Background(), t.heading)
	if err != nil {
		return err
	}
	if result.Attacks > 0 {
		t.sound.hit()
	}
	if result.Defeated && !t.caught {
		t.caught = true
		t.sound.caught()
	}
	return nil
}

func (t *terminal) pollWatcher() {
	if t.watcher == nil {
		return
	}
	select {
	case data, ok := <-t.watcher.Maps:
		if ok {
			t.world.QueueMap(data)
		}
	default:
	}
}

// handleEvent returns false when the user asked to quit
func (t *terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
			return false
		}
		t.applyKey(ev.Key(), ev.Rune())
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

// applyKey updates the heading and toggles. Terminals report presses, not
// held keys, so a direction stays active until another one or stop is pressed.
func (t *terminal) applyKey(key tcell.Key, r rune) {
	switch {
	case key == tcell.KeyUp || r == 'w':
		t.heading = simulation.Input{DY: -1}
	case key == tcell.KeyDown || r == 's':
		t.heading = simulation.Input{DY: 1}
	case key == tcell.KeyLeft || r == 'a':
		t.heading = simulation.Input{DX: -1}
	case key == tcell.KeyRight || r == 'd':
		t.heading = simulation.Input{DX: 1}
	case r == ' ' || r == 'x':
		t.heading = simulation.Input{}
	case r == 'p':
		t.paused = !t.paused
	case r == 'v':
		t.view.showPaths = !t.view.showPaths
	case r == 'r':
		t.world.Restart()
		t.heading = simulation.Input{}
		t.caught = false
	}
}

func (t *terminal) cleanup() {
	if t.closed {
		return
	}
	t.closed = true
	if t.sound != nil {
		t.sound.close()
	}
	t.screen.Fini()
}

// runHeadless steps the world with a stationary target and reports how the
// agents fared.
func runHeadless(ctx context.Context, world *simulation.World, ticks int) (string, error) {
	caughtAt := -1
	for i := 0; i < ticks; i++ {
		result, err := world.Step(ctx, simulation.Input{})
		if err != nil {
			return "", err
		}
		if result.Defeated && caughtAt < 0 {
			caughtAt = int(result.Tick)
		}
	}

	m := world.Monitor().GetCurrentMetrics()
	searches, expanded := world.SolverStats()
	summary := fmt.Sprintf("ticks: %d\nreplans: %d\nsub-goals reached: %d\npath ticks: %d\nattacks: %d\nsolver searches: %d\nnodes expanded: %d\navg step: %v\n",
		m.Ticks, m.Replans, m.SubGoalsReached, m.PathTicks, m.Attacks, searches, expanded, m.AverageStep)
	if caughtAt >= 0 {
		summary += fmt.Sprintf("caught at tick: %d\n", caughtAt)
	} else {
		summary += "not caught\n"
	}
	return summary, nil
}
