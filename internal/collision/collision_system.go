package collision

import (
	"math"
)

// TileChecker interface for checking if tiles block movement
type TileChecker interface {
	IsTileBlocking(tileX, tileY int) bool
	GetWorldBounds() (width, height int)
}

// CollisionSystem answers movement queries for free-moving bodies such as the
// pursued target. Agents never consult it: they steer by line of sight and paths.
type CollisionSystem struct {
	tileChecker TileChecker
}

// NewCollisionSystem creates a new collision system
func NewCollisionSystem(tileChecker TileChecker) *CollisionSystem {
	return &CollisionSystem{tileChecker: tileChecker}
}

// UpdateTileChecker updates the tile checker (used when the map is reloaded)
func (cs *CollisionSystem) UpdateTileChecker(tileChecker TileChecker) {
	cs.tileChecker = tileChecker
}

// CanOccupy checks if the box fits inside the world without covering a blocking tile
func (cs *CollisionSystem) CanOccupy(box Box) bool {
	width, height := cs.tileChecker.GetWorldBounds()
	minX, minY, maxX, maxY := box.GetBounds()
	if minX < 0 || minY < 0 || maxX > float64(width) || maxY > float64(height) {
		return false
	}

	// Far edges are exclusive so a box flush with a tile boundary does not
	// claim the next tile.
	startTileX := int(math.Floor(minX))
	startTileY := int(math.Floor(minY))
	endTileX := int(math.Ceil(maxX)) - 1
	endTileY := int(math.Ceil(maxY)) - 1

	for tileY := startTileY; tileY <= endTileY; tileY++ {
		for tileX := startTileX; tileX <= endTileX; tileX++ {
			if cs.tileChecker.IsTileBlocking(tileX, tileY) {
				return false
			}
		}
	}
	return true
}

// MoveWithSliding moves box by (dx, dy), resolving each axis separately so a
// body pushed diagonally into a wall slides along it. Returns the new box and
// whether any movement happened.
func (cs *CollisionSystem) MoveWithSliding(box Box, dx, dy float64) (Box, bool) {
	moved := false

	if dx != 0 {
		candidate := box
		candidate.MoveBy(dx, 0)
		if cs.CanOccupy(candidate) {
			box = candidate
			moved = true
		}
	}
	if dy != 0 {
		candidate := box
		candidate.MoveBy(0, dy)
		if cs.CanOccupy(candidate) {
			box = candidate
			moved = true
		}
	}
	return box, moved
}
