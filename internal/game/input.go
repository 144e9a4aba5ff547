package game

import (
	"gridchase/internal/simulation"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Command is everything the keyboard asked for this frame
type Command struct {
	Move             simulation.Input
	Quit             bool
	TogglePause      bool
	TogglePaths      bool
	ToggleBoundaries bool
	ToggleStats      bool
	Restart          bool
}

// InputHandler handles all user input for the game
type InputHandler struct {
	game *ChaseGame
}

// NewInputHandler creates a new input handler
func NewInputHandler(game *ChaseGame) *InputHandler {
	return &InputHandler{game: game}
}

// HandleInput processes all input for the current frame
func (ih *InputHandler) HandleInput() Command {
	return Command{
		Move: movementFromKeys(
			ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp),
			ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown),
			ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft),
			ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight),
		),
		Quit:             inpututil.IsKeyJustPressed(ebiten.KeyEscape),
		TogglePause:      inpututil.IsKeyJustPressed(ebiten.KeySpace),
		TogglePaths:      inpututil.IsKeyJustPressed(ebiten.KeyTab),
		ToggleBoundaries: inpututil.IsKeyJustPressed(ebiten.KeyB),
		ToggleStats:      inpututil.IsKeyJustPressed(ebiten.KeyF1),
		Restart:          inpututil.IsKeyJustPressed(ebiten.KeyR),
	}
}

// movementFromKeys converts held direction keys into a steering vector.
// Opposite keys cancel out.
func movementFromKeys(up, down, left, right bool) simulation.Input {
	var in simulation.Input
	if up {
		in.DY--
	}
	if down {
		in.DY++
	}
	if left {
		in.DX--
	}
	if right {
		in.DX++
	}
	return in
}
