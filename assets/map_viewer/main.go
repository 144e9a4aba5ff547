package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gridchase/internal/geometry"
	"gridchase/internal/grid"
	"gridchase/internal/pathfind"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	windowWidth  = 1200
	windowHeight = 800
	sidebarWidth = 300
)

// spawnRoute is the planned path from one agent spawn to the target spawn
type spawnRoute struct {
	From     grid.Coord
	Path     []grid.Coord
	Expanded int
	Reached  bool
}

type mapInfo struct {
	Key        string
	Data       *grid.MapData
	Err        error
	Boundaries []geometry.Segment
	Routes     []spawnRoute
}

type viewer struct {
	maps           []mapInfo
	mapIndex       int
	showBoundaries bool
	showRoutes     bool
	lastErr        string
}

func main() {
	ensureRuntimeCWD()

	maps, err := loadMaps(filepath.Join("assets", "maps"))
	if err != nil {
		log.Printf("Warning: %v", err)
	}

	v := &viewer{
		maps:           maps,
		showBoundaries: true,
		showRoutes:     true,
	}
	if len(maps) == 0 {
		v.lastErr = "no maps loaded"
	}

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("Grid Chase Map Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.showBoundaries = !v.showBoundaries
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		v.showRoutes = !v.showRoutes
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyRight) || inpututil.IsKeyJustPressed(ebiten.KeyD) {
		if len(v.maps) > 0 {
			v.mapIndex = (v.mapIndex + 1) % len(v.maps)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyLeft) || inpututil.IsKeyJustPressed(ebiten.KeyA) {
		if len(v.maps) > 0 {
			v.mapIndex--
			if v.mapIndex < 0 {
				v.mapIndex = len(v.maps) - 1
			}
		}
	}
	return nil
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{15, 15, 22, 255})

	if len(v.maps) == 0 {
		msg := v.lastErr
		if msg == "" {
			msg = "no maps loaded"
		}
		ebitenutil.DebugPrintAt(screen, msg, 16, 16)
		return
	}

	m := v.maps[v.mapIndex]
	if m.Err != nil {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("map %s failed to load: %v", m.Key, m.Err), 16, 16)
		return
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()

	padding := 16
	mapAreaW := screenW - sidebarWidth - padding*3
	mapAreaH := screenH - padding*2
	mapAreaX := padding
	mapAreaY := padding
	sidebarX := mapAreaX + mapAreaW + padding
	sidebarY := padding

	v.drawMapPanel(screen, m, mapAreaX, mapAreaY, mapAreaW, mapAreaH)
	drawSidebar(screen, m, sidebarX, sidebarY, sidebarWidth, mapAreaH)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return windowWidth, windowHeight
}

// loadMaps parses every .map file in dir and plans a route from each agent
// spawn to the target spawn.
func loadMaps(dir string) ([]mapInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}

	var keys []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".map") {
			keys = append(keys, entry.Name())
		}
	}
	sort.Strings(keys)

	maps := make([]mapInfo, 0, len(keys))
	for _, key := range keys {
		data, err := grid.LoadMap(filepath.Join(dir, key))
		info := mapInfo{Key: key, Data: data, Err: err}
		if err == nil {
			info.Boundaries = data.Map.Boundaries()
			info.Routes = planRoutes(data)
		}
		maps = append(maps, info)
	}
	return maps, nil
}

func planRoutes(data *grid.MapData) []spawnRoute {
	if !data.HasTarget {
		return nil
	}
	routes := make([]spawnRoute, 0, len(data.AgentSpawns))
	for _, spawn := range data.AgentSpawns {
		solver := pathfind.NewSolver()
		path := solver.Solve(data.Map, spawn, data.TargetSpawn)
		_, expanded := solver.Stats()
		routes = append(routes, spawnRoute{
			From:     spawn,
			Path:     path,
			Expanded: expanded,
			Reached:  len(path) > 0 && path[len(path)-1] == data.TargetSpawn,
		})
	}
	return routes
}

func (v *viewer) drawMapPanel(screen *ebiten.Image, m mapInfo, x, y, w, h int) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{20, 20, 35, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	worldW := m.Data.Map.Width()
	worldH := m.Data.Map.Height()

	tileSize := w / worldW
	if alt := h / worldH; alt < tileSize {
		tileSize = alt
	}
	if tileSize < 2 {
		tileSize = 2
	}

	originX := x + (w-worldW*tileSize)/2
	originY := y + (h-worldH*tileSize)/2

	floorColor := color.RGBA{40, 44, 52, 255}
	wallColor := color.RGBA{110, 110, 125, 255}
	for ty := 0; ty < worldH; ty++ {
		for tx := 0; tx < worldW; tx++ {
			cellColor := floorColor
			if m.Data.Map.IsWall(tx, ty) {
				cellColor = wallColor
			}
			drawX := originX + tx*tileSize
			drawY := originY + ty*tileSize
			vector.DrawFilledRect(screen, float32(drawX), float32(drawY), float32(tileSize), float32(tileSize), cellColor, false)
		}
	}

	if v.showBoundaries {
		for _, seg := range m.Boundaries {
			vector.StrokeLine(screen,
				float32(originX)+float32(seg.A.X)*float32(tileSize), float32(originY)+float32(seg.A.Y)*float32(tileSize),
				float32(originX)+float32(seg.B.X)*float32(tileSize), float32(originY)+float32(seg.B.Y)*float32(tileSize),
				2, color.RGBA{255, 170, 40, 255}, true)
		}
	}
	if v.showRoutes {
		drawRoutes(screen, m.Routes, originX, originY, tileSize)
	}

	drawOverlays(screen, m, originX, originY, tileSize)
	drawMapHeader(screen, m, x, y)
}

func drawMapHeader(screen *ebiten.Image, m mapInfo, x, y int) {
	ebitenutil.DebugPrintAt(screen, m.Key, x+12, y+8)
	ebitenutil.DebugPrintAt(screen, "Left/Right (or A/D) to switch maps, B walls, P routes, Esc to quit", x+12, y+24)
}

func drawRoutes(screen *ebiten.Image, routes []spawnRoute, originX, originY, tileSize int) {
	half := float32(tileSize) / 2
	for _, route := range routes {
		for i := 1; i < len(route.Path); i++ {
			a, b := route.Path[i-1], route.Path[i]
			vector.StrokeLine(screen,
				float32(originX+a.X*tileSize)+half, float32(originY+a.Y*tileSize)+half,
				float32(originX+b.X*tileSize)+half, float32(originY+b.Y*tileSize)+half,
				2, color.RGBA{120, 220, 120, 200}, true)
		}
	}
}

func drawOverlays(screen *ebiten.Image, m mapInfo, originX, originY, tileSize int) {
	if m.Data.HasTarget {
		drawTileMarkerCircle(screen, originX, originY, tileSize, m.Data.TargetSpawn.X, m.Data.TargetSpawn.Y, color.RGBA{50, 200, 255, 255}, true)
		drawTileLetter(screen, originX, originY, tileSize, m.Data.TargetSpawn.X, m.Data.TargetSpawn.Y, "P")
	}
	for i, spawn := range m.Data.AgentSpawns {
		drawTileMarkerCircle(screen, originX, originY, tileSize, spawn.X, spawn.Y, color.RGBA{230, 80, 80, 255}, false)
		drawTileLetter(screen, originX, originY, tileSize, spawn.X, spawn.Y, fmt.Sprintf("%d", i+1))
	}
}

func drawSidebar(screen *ebiten.Image, m mapInfo, x, y, w, h int) {
	drawFilledRect(screen, x, y, w, h, color.RGBA{18, 18, 26, 255})
	drawRectBorder(screen, x, y, w, h, 2, color.RGBA{70, 70, 90, 255})

	row := y + 12
	stats := []string{
		fmt.Sprintf("Tiles: %dx%d", m.Data.Map.Width(), m.Data.Map.Height()),
		fmt.Sprintf("Walls: %d", m.Data.Map.WallCount()),
		fmt.Sprintf("Boundary runs: %d", len(m.Boundaries)),
		fmt.Sprintf("Agent spawns: %d", len(m.Data.AgentSpawns)),
	}
	if !m.Data.HasTarget {
		stats = append(stats, "No target spawn")
	}
	for _, line := range stats {
		ebitenutil.DebugPrintAt(screen, line, x+12, row)
		row += 16
	}

	row += 8
	for i, route := range m.Routes {
		line := fmt.Sprintf("Agent %d: unreachable", i+1)
		if route.Reached {
			line = fmt.Sprintf("Agent %d: %d steps, %d expanded", i+1, len(route.Path)-1, route.Expanded)
		}
		ebitenutil.DebugPrintAt(screen, line, x+12, row)
		row += 16
	}

	row += 8
	ebitenutil.DebugPrintAt(screen, "Markers:", x+12, row)
	row += 16
	ebitenutil.DebugPrintAt(screen, "Cyan: target  Red: agents", x+12, row)
	row += 16
	ebitenutil.DebugPrintAt(screen, "Orange: wall boundaries", x+12, row)
}

func drawTileMarkerCircle(screen *ebiten.Image, originX, originY, tileSize, tx, ty int, clr color.RGBA, stroke bool) {
	if tileSize < 2 {
		return
	}
	centerX := float32(originX + tx*tileSize + tileSize/2)
	centerY := float32(originY + ty*tileSize + tileSize/2)
	radius := float32(tileSize) * 0.35
	vector.DrawFilledCircle(screen, centerX, centerY, radius, clr, true)
	if stroke {
		vector.StrokeCircle(screen, centerX, centerY, radius, 1, color.RGBA{255, 255, 255, 255}, true)
	}
}

func drawTileLetter(screen *ebiten.Image, originX, originY, tileSize, tx, ty int, letter string) {
	if tileSize < 6 || letter == "" {
		return
	}
	drawX := originX + tx*tileSize + 2
	drawY := originY + ty*tileSize + 1
	ebitenutil.DebugPrintAt(screen, letter, drawX, drawY)
}

func drawFilledRect(screen *ebiten.Image, x, y, w, h int, clr color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), clr, false)
}

func drawRectBorder(screen *ebiten.Image, x, y, w, h, thickness int, clr color.RGBA) {
	t := float32(thickness)
	fx := float32(x)
	fy := float32(y)
	fw := float32(w)
	fh := float32(h)
	vector.DrawFilledRect(screen, fx, fy, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy+fh-t, fw, t, clr, false)
	vector.DrawFilledRect(screen, fx, fy, t, fh, clr, false)
	vector.DrawFilledRect(screen, fx+fw-t, fy, t, fh, clr, false)
}

// ensureRuntimeCWD moves to the executable's directory when started elsewhere
func ensureRuntimeCWD() {
	if _, err := os.Stat("config.yaml"); err == nil {
		return
	}
	exe, err := os.Executable()
	if err != nil {
		return
	}
	execDir := filepath.Dir(exe)
	_ = os.Chdir(execDir)
}
