package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"gridchase/internal/geometry"
	"gridchase/internal/grid"
	"gridchase/internal/navigation"
	"gridchase/internal/simulation"
)

// each map cell is two terminal columns wide so tiles look roughly square
const cellColumns = 2

var (
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleSubGoal = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleTarget  = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleHUD     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

func agentStyle(s navigation.State) tcell.Style {
	switch s {
	case navigation.Transitioning:
		return tcell.StyleDefault.Foreground(tcell.ColorOrange).Bold(true)
	case navigation.FollowingPath:
		return tcell.StyleDefault.Foreground(tcell.ColorPurple).Bold(true)
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
}

// view draws a world onto a tcell screen. Row 0 holds the status line, the
// map starts on row 1.
type view struct {
	screen    tcell.Screen
	showPaths bool
}

func (v *view) draw(world *simulation.World, status string) {
	v.screen.Clear()

	m := world.Map()
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.IsWall(x, y) {
				v.putCell(grid.Coord{X: x, Y: y}, '█', styleWall)
			} else {
				v.putCell(grid.Coord{X: x, Y: y}, '·', styleFloor)
			}
		}
	}

	if v.showPaths {
		for _, agent := range world.Agents() {
			for _, c := range agent.Path() {
				v.putCell(c, '•', stylePath)
			}
			if goal, ok := agent.SubGoal(); ok {
				v.putCell(m.CellAt(goal), '+', styleSubGoal)
			}
		}
	}

	target := world.Target()
	v.putCell(cellOf(target.Box.Center()), '@', styleTarget)
	for _, agent := range world.Agents() {
		v.putCell(cellOf(agent.Box.Center()), agentRune(agent.ID), agentStyle(agent.State()))
	}

	v.putString(0, 0, status, styleHUD)
	v.screen.Show()
}

func (v *view) putCell(c grid.Coord, r rune, style tcell.Style) {
	col := c.X * cellColumns
	for i := 0; i < cellColumns; i++ {
		glyph := r
		if i > 0 && r != '█' {
			glyph = ' '
		}
		v.screen.SetContent(col+i, c.Y+1, glyph, nil, style)
	}
}

func (v *view) putString(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

// cellOf is the map cell containing p, which may lie outside the map
func cellOf(p geometry.Point) grid.Coord {
	return grid.Coord{X: int(math.Floor(p.X)), Y: int(math.Floor(p.Y))}
}

func agentRune(id int) rune {
	if id >= 0 && id < 10 {
		return rune('0' + id)
	}
	return 'E'
}

func statusLine(world *simulation.World, paused bool) string {
	target := world.Target()
	status := fmt.Sprintf("tick %d  health %d/%d  agents %d", world.Tick(), target.Health, target.MaxHealth, len(world.Agents()))
	if !target.Alive() {
		status += "  CAUGHT (r restarts)"
	} else if paused {
		status += "  PAUSED"
	}
	return status
}
