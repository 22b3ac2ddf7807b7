package model

import "fmt"

// Rectangle is an axis-aligned region in scaled integer coordinates. X2
// and Y2 are exclusive, so Width and Height are plain differences.
type Rectangle struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// NewRectangle returns a rectangle of the given size anchored at the origin.
func NewRectangle(width, height int) Rectangle {
	return Rectangle{X2: width, Y2: height}
}

func (r Rectangle) Width() int {
	return r.X2 - r.X1
}

func (r Rectangle) Height() int {
	return r.Y2 - r.Y1
}

func (r Rectangle) Area() int {
	return r.Width() * r.Height()
}

// Orientation classifies a rectangle by its aspect.
type Orientation int

const (
	Landscape Orientation = iota // Wider than tall
	Portrait                     // Taller than wide
	Square
)

func (r Rectangle) Orientation() Orientation {
	switch {
	case r.Width() > r.Height():
		return Landscape
	case r.Width() < r.Height():
		return Portrait
	default:
		return Square
	}
}

// Fits reports whether a width x height piece fits in this rectangle
// without rotation.
func (r Rectangle) Fits(width, height int) bool {
	return width <= r.Width() && height <= r.Height()
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X1, r.Y1, r.Width(), r.Height())
}
