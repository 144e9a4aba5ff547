package collision

import "gridchase/internal/geometry"

// Box represents a rectangular body in tile units. X, Y is the top-left corner.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NewBox creates a new box with its top-left corner at the given position
func NewBox(x, y, width, height float64) Box {
	return Box{X: x, Y: y, Width: width, Height: height}
}

// TileBox returns the unit box covering grid cell (col, row)
func TileBox(col, row int) Box {
	return Box{X: float64(col), Y: float64(row), Width: 1, Height: 1}
}

// GetBounds returns the min/max coordinates of the box
func (b Box) GetBounds() (minX, minY, maxX, maxY float64) {
	return b.X, b.Y, b.X + b.Width, b.Y + b.Height
}

// Center returns the centre point of the box
func (b Box) Center() geometry.Point {
	return geometry.Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Position returns the top-left corner
func (b Box) Position() geometry.Point {
	return geometry.Point{X: b.X, Y: b.Y}
}

// GetCorners returns the four corners in a fixed order:
// top-left, top-right, bottom-left, bottom-right.
func (b Box) GetCorners() [4]geometry.Point {
	return b.InsetCorners(1)
}

// InsetCorners is GetCorners with the far edges pulled in to scale*Width and
// scale*Height. Corner order matches GetCorners.
func (b Box) InsetCorners(scale float64) [4]geometry.Point {
	right := b.X + b.Width*scale
	bottom := b.Y + b.Height*scale
	return [4]geometry.Point{
		{X: b.X, Y: b.Y},      // Top-left
		{X: right, Y: b.Y},    // Top-right
		{X: b.X, Y: bottom},   // Bottom-left
		{X: right, Y: bottom}, // Bottom-right
	}
}

// Overlaps checks if two boxes share interior area. Boxes that only touch on
// an edge do not overlap.
func (b Box) Overlaps(other Box) bool {
	return !(b.X+b.Width <= other.X || b.X >= other.X+other.Width ||
		b.Y+b.Height <= other.Y || b.Y >= other.Y+other.Height)
}

// Contains checks if a point is inside the box, edges included
func (b Box) Contains(p geometry.Point) bool {
	minX, minY, maxX, maxY := b.GetBounds()
	return p.X >= minX && p.X <= maxX && p.Y >= minY && p.Y <= maxY
}

// MoveTo moves the box so its top-left corner is at (x, y)
func (b *Box) MoveTo(x, y float64) {
	b.X = x
	b.Y = y
}

// MoveBy moves the box by the given offset
func (b *Box) MoveBy(dx, dy float64) {
	b.X += dx
	b.Y += dy
}
