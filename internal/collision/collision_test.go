package collision

import (
	"testing"

	"gridchase/internal/geometry"
)

// mockTileChecker implements TileChecker for testing
type mockTileChecker struct {
	width, height int
	blockingTiles map[int]map[int]bool
}

func newMockTileChecker(width, height int) *mockTileChecker {
	return &mockTileChecker{
		width:         width,
		height:        height,
		blockingTiles: make(map[int]map[int]bool),
	}
}

func (m *mockTileChecker) IsTileBlocking(tileX, tileY int) bool {
	if row, ok := m.blockingTiles[tileY]; ok {
		return row[tileX]
	}
	return false
}

func (m *mockTileChecker) GetWorldBounds() (width, height int) {
	return m.width, m.height
}

func (m *mockTileChecker) setBlocking(tileX, tileY int) {
	if m.blockingTiles[tileY] == nil {
		m.blockingTiles[tileY] = make(map[int]bool)
	}
	m.blockingTiles[tileY][tileX] = true
}

func TestBoxOverlaps_HalfOpen(t *testing.T) {
	a := NewBox(0, 0, 1, 1)

	tests := []struct {
		name  string
		other Box
		want  bool
	}{
		{"shared right edge", NewBox(1, 0, 1, 1), false},
		{"shared bottom edge", NewBox(0, 1, 1, 1), false},
		{"shared corner", NewBox(1, 1, 1, 1), false},
		{"small overlap", NewBox(0.99, 0.5, 1, 1), true},
		{"contained", NewBox(0.25, 0.25, 0.5, 0.5), true},
		{"far away", NewBox(5, 5, 1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(a); got != tt.want {
				t.Errorf("Overlaps is not symmetric")
			}
		})
	}
}

func TestBoxCorners(t *testing.T) {
	b := NewBox(2, 3, 0.5, 0.25)
	want := [4]geometry.Point{{X: 2, Y: 3}, {X: 2.5, Y: 3}, {X: 2, Y: 3.25}, {X: 2.5, Y: 3.25}}
	if got := b.GetCorners(); got != want {
		t.Errorf("GetCorners = %v, want %v", got, want)
	}
	if c := b.Center(); c != (geometry.Point{X: 2.25, Y: 3.125}) {
		t.Errorf("Center = %v", c)
	}
}

func TestCanOccupy(t *testing.T) {
	checker := newMockTileChecker(5, 5)
	checker.setBlocking(2, 2)
	cs := NewCollisionSystem(checker)

	if !cs.CanOccupy(NewBox(1, 1, 1, 1)) {
		t.Errorf("box flush against wall tile should fit")
	}
	if cs.CanOccupy(NewBox(1.5, 1.5, 1, 1)) {
		t.Errorf("box overlapping wall tile should not fit")
	}
	if cs.CanOccupy(NewBox(4.5, 0, 1, 1)) {
		t.Errorf("box leaving the world should not fit")
	}
}

func TestMoveWithSliding(t *testing.T) {
	checker := newMockTileChecker(5, 5)
	checker.setBlocking(2, 1)
	cs := NewCollisionSystem(checker)

	// moving diagonally into the wall on X keeps the Y motion
	box, moved := cs.MoveWithSliding(NewBox(1, 1, 1, 1), 0.5, 0.5)
	if !moved {
		t.Fatalf("expected slide")
	}
	if box.X != 1 || box.Y != 1.5 {
		t.Errorf("expected slide to (1, 1.5), got (%v, %v)", box.X, box.Y)
	}
}
