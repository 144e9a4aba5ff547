package game

import (
	"fmt"
	"image/color"

	"gridchase/internal/collision"
	"gridchase/internal/geometry"
	"gridchase/internal/grid"
	"gridchase/internal/navigation"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	ebitext "github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

const (
	sidebarWidth = 220
	panelPadding = 12
	lineHeight   = 16
)

var (
	colorBackground = color.RGBA{15, 15, 22, 255}
	colorFloor      = color.RGBA{40, 44, 52, 255}
	colorWall       = color.RGBA{110, 110, 125, 255}
	colorGridLine   = color.RGBA{30, 32, 40, 255}
	colorBoundary   = color.RGBA{255, 170, 40, 255}
	colorTarget     = color.RGBA{50, 200, 255, 255}
	colorTargetHit  = color.RGBA{255, 255, 255, 255}
	colorPath       = color.RGBA{120, 220, 120, 160}
	colorSubGoal    = color.RGBA{255, 230, 60, 255}
	colorPanel      = color.RGBA{18, 18, 26, 255}
	colorBorder     = color.RGBA{70, 70, 90, 255}
	colorHealth     = color.RGBA{60, 200, 90, 255}
	colorHealthLost = color.RGBA{120, 30, 30, 255}
)

// stateColor gives each movement state its own agent colour
func stateColor(s navigation.State) color.RGBA {
	switch s {
	case navigation.Transitioning:
		return color.RGBA{240, 150, 40, 255}
	case navigation.FollowingPath:
		return color.RGBA{200, 80, 220, 255}
	default:
		return color.RGBA{230, 70, 70, 255}
	}
}

// mapLayout maps tile coordinates onto the screen
type mapLayout struct {
	originX, originY int
	tileSize         int
}

// fitMap picks the largest whole-pixel tile size that fits the area, capped
// at maxTile, and centres the map in it.
func fitMap(x, y, w, h, cols, rows, maxTile int) mapLayout {
	if cols <= 0 || rows <= 0 {
		return mapLayout{originX: x, originY: y, tileSize: 1}
	}
	tileSize := w / cols
	if alt := h / rows; alt < tileSize {
		tileSize = alt
	}
	if maxTile > 0 && tileSize > maxTile {
		tileSize = maxTile
	}
	if tileSize < 2 {
		tileSize = 2
	}
	return mapLayout{
		originX:  x + (w-cols*tileSize)/2,
		originY:  y + (h-rows*tileSize)/2,
		tileSize: tileSize,
	}
}

func (l mapLayout) toScreen(p geometry.Point) (float32, float32) {
	return float32(float64(l.originX) + p.X*float64(l.tileSize)), float32(float64(l.originY) + p.Y*float64(l.tileSize))
}

func (l mapLayout) boxRect(b collision.Box) (x, y, w, h float32) {
	x, y = l.toScreen(b.Position())
	return x, y, float32(b.Width * float64(l.tileSize)), float32(b.Height * float64(l.tileSize))
}

// Renderer draws the game state
type Renderer struct {
	game *ChaseGame
}

// NewRenderer creates a new renderer
func NewRenderer(game *ChaseGame) *Renderer {
	return &Renderer{game: game}
}

// Draw renders one frame
func (r *Renderer) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	mapAreaW := screenW - sidebarWidth - panelPadding*3
	mapAreaH := screenH - panelPadding*2
	sidebarX := panelPadding*2 + mapAreaW

	m := r.game.world.Map()
	layout := fitMap(panelPadding, panelPadding, mapAreaW, mapAreaH, m.Width(), m.Height(), r.game.config.GetTileSize())

	r.drawTiles(screen, m, layout)
	if r.game.showBoundaries {
		r.drawBoundaries(screen, m, layout)
	}
	if r.game.showPaths {
		r.drawPaths(screen, layout)
	}
	r.drawTarget(screen, layout)
	r.drawAgents(screen, layout)
	r.drawSidebar(screen, sidebarX, panelPadding, sidebarWidth, mapAreaH)
}

func (r *Renderer) drawTiles(screen *ebiten.Image, m *grid.Map, l mapLayout) {
	size := float32(l.tileSize)
	for ty := 0; ty < m.Height(); ty++ {
		for tx := 0; tx < m.Width(); tx++ {
			clr := colorFloor
			if m.IsWall(tx, ty) {
				clr = colorWall
			}
			x := float32(l.originX + tx*l.tileSize)
			y := float32(l.originY + ty*l.tileSize)
			vector.DrawFilledRect(screen, x, y, size, size, clr, false)
			if l.tileSize >= 8 {
				vector.StrokeRect(screen, x, y, size, size, 1, colorGridLine, false)
			}
		}
	}
}

func (r *Renderer) drawBoundaries(screen *ebiten.Image, m *grid.Map, l mapLayout) {
	for _, seg := range m.Boundaries() {
		x0, y0 := l.toScreen(seg.A)
		x1, y1 := l.toScreen(seg.B)
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, colorBoundary, true)
	}
}

func (r *Renderer) drawPaths(screen *ebiten.Image, l mapLayout) {
	half := geometry.Point{X: 0.5, Y: 0.5}
	for _, agent := range r.game.world.Agents() {
		path := agent.Path()
		for i := 1; i < len(path); i++ {
			x0, y0 := l.toScreen(path[i-1].Point().Add(half))
			x1, y1 := l.toScreen(path[i].Point().Add(half))
			vector.StrokeLine(screen, x0, y0, x1, y1, 2, colorPath, true)
		}
		if goal, ok := agent.SubGoal(); ok {
			gx, gy := l.toScreen(goal)
			vector.StrokeCircle(screen, gx, gy, float32(l.tileSize)*0.15, 2, colorSubGoal, true)
		}
	}
}

func (r *Renderer) drawTarget(screen *ebiten.Image, l mapLayout) {
	target := r.game.world.Target()
	x, y, w, h := l.boxRect(target.Box)
	clr := colorTarget
	if target.Slowed {
		clr = colorTargetHit
	}
	vector.DrawFilledRect(screen, x, y, w, h, clr, true)

	if target.MaxHealth > 0 {
		ratio := float32(target.Health) / float32(target.MaxHealth)
		vector.DrawFilledRect(screen, x, y-5, w, 3, colorHealthLost, false)
		vector.DrawFilledRect(screen, x, y-5, w*ratio, 3, colorHealth, false)
	}
}

func (r *Renderer) drawAgents(screen *ebiten.Image, l mapLayout) {
	for _, agent := range r.game.world.Agents() {
		x, y, w, h := l.boxRect(agent.Box)
		vector.DrawFilledRect(screen, x, y, w, h, stateColor(agent.State()), true)
		if l.tileSize >= 12 {
			ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%d", agent.ID), int(x)+2, int(y))
		}
	}
}

func (r *Renderer) drawSidebar(screen *ebiten.Image, x, y, w, h int) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), colorPanel, false)
	vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 2, colorBorder, false)

	face := basicfont.Face7x13
	ebitext.Draw(screen, r.game.config.Display.WindowTitle, face, x+panelPadding, y+panelPadding+face.Ascent, color.White)

	row := y + panelPadding + lineHeight + 8
	for _, line := range r.game.hudLines() {
		ebitenutil.DebugPrintAt(screen, line, x+panelPadding, row)
		row += lineHeight
	}

	row += 8
	for _, msg := range r.game.messages {
		ebitenutil.DebugPrintAt(screen, msg, x+panelPadding, row)
		row += lineHeight
	}

	controls := []string{
		"WASD/arrows: move",
		"Space: pause  R: restart",
		"Tab: paths  B: walls",
		"F1: stats  Esc: quit",
	}
	row = y + h - panelPadding - len(controls)*lineHeight
	for _, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, x+panelPadding, row)
		row += lineHeight
	}
}

// hudLines is the status block shown in the sidebar
func (g *ChaseGame) hudLines() []string {
	target := g.world.Target()
	lines := []string{
		fmt.Sprintf("Tick: %d", g.world.Tick()),
		fmt.Sprintf("Health: %d/%d", target.Health, target.MaxHealth),
		fmt.Sprintf("Agents: %d", len(g.world.Agents())),
	}
	if g.paused {
		lines = append(lines, "PAUSED")
	}
	if !g.showStats {
		return lines
	}

	counts := stateCounts(g.lastResult.Reports)
	for _, s := range []navigation.State{navigation.Homing, navigation.Transitioning, navigation.FollowingPath} {
		lines = append(lines, fmt.Sprintf("  %s: %d", s, counts[s]))
	}
	metrics := g.world.Monitor().GetCurrentMetrics()
	lines = append(lines,
		fmt.Sprintf("Replans: %d", metrics.Replans),
		fmt.Sprintf("Attacks: %d", metrics.Attacks),
		fmt.Sprintf("Step: %.2fms", float64(metrics.AverageStep.Microseconds())/1000),
	)
	searches, expanded := g.world.SolverStats()
	lines = append(lines, fmt.Sprintf("Searches: %d (%d nodes)", searches, expanded))
	if stats := g.threading.GetDetailedPerformanceStats(); stats != nil {
		lines = append(lines,
			fmt.Sprintf("Memory: %vMB", stats["memory_alloc_mb"]),
			fmt.Sprintf("Goroutines: %v", stats["goroutines"]),
		)
	}
	return lines
}
