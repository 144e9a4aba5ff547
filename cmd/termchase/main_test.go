package main

import (
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"gridchase/internal/config"
	"gridchase/internal/geometry"
	"gridchase/internal/grid"
	"gridchase/internal/simulation"
)

func testWorld(t *testing.T, text string) *simulation.World {
	t.Helper()
	data, err := grid.ParseMap(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseMap: %v", err)
	}
	w, err := simulation.NewWorld(config.Default(), data, nil)
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return w
}

func TestViewDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer screen.Fini()
	screen.SetSize(40, 10)

	w := testWorld(t, "#####\n#E.P#\n#####\n")
	v := &view{screen: screen, showPaths: true}
	v.draw(w, "status")

	// status line, walls filling both columns, agent 1 at (1,1), target at (3,1)
	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, 's'},
		{0, 1, '█'},
		{1, 1, '█'},
		{2 * cellColumns, 2, '1'},
		{3 * cellColumns, 2, '@'},
		{2*cellColumns + 1, 2, ' '},
	}
	for _, tt := range tests {
		got, _, _, _ := screen.GetContent(tt.x, tt.y)
		if got != tt.want {
			t.Errorf("cell (%d,%d) = %q, want %q", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestApplyKey(t *testing.T) {
	w := testWorld(t, "E..\n..P\n")
	term := &terminal{view: &view{}, world: w}

	term.applyKey(tcell.KeyRune, 'd')
	if term.heading != (simulation.Input{DX: 1}) {
		t.Errorf("heading = %+v after d", term.heading)
	}
	term.applyKey(tcell.KeyUp, 0)
	if term.heading != (simulation.Input{DY: -1}) {
		t.Errorf("heading = %+v after up", term.heading)
	}
	term.applyKey(tcell.KeyRune, ' ')
	if term.heading != (simulation.Input{}) {
		t.Errorf("space should stop the target")
	}

	term.applyKey(tcell.KeyRune, 'p')
	term.applyKey(tcell.KeyRune, 'v')
	if !term.paused || !term.view.showPaths {
		t.Errorf("toggles not applied")
	}
	if err := term.step(); err != nil || w.Tick() != 0 {
		t.Errorf("paused terminal must not step")
	}
}

func TestRunHeadless(t *testing.T) {
	w := testWorld(t, ".....\n.EP..\n.....\n")
	summary, err := runHeadless(context.Background(), w, 1000)
	if err != nil {
		t.Fatalf("runHeadless: %v", err)
	}
	for _, want := range []string{"ticks: 1000", "solver searches: 0", "caught at tick:"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := runHeadless(ctx, w, 10); err == nil {
		t.Errorf("expected cancellation error")
	}
}

func TestHelpers(t *testing.T) {
	if agentRune(3) != '3' || agentRune(12) != 'E' {
		t.Errorf("unexpected agent runes")
	}
	if c := cellOf(geometry.Point{X: -0.5, Y: 2.9}); c != (grid.Coord{X: -1, Y: 2}) {
		t.Errorf("cellOf = %+v", c)
	}

	w := testWorld(t, "E.P\n")
	if s := statusLine(w, true); !strings.Contains(s, "PAUSED") || !strings.Contains(s, "health 10/10") {
		t.Errorf("unexpected status %q", s)
	}
}
