// Package runtime is a terminal node tree that hosts spatial navigation:
// it lays nodes out in cells, draws them, hit-tests and scrolls them, and
// exposes the tree as a nav.Scene.
package runtime

import "github.com/odvcencio/padnav/pkg/nav"

// Rect is a rectangle in terminal cells.
type Rect struct {
	X, Y, Width, Height int
}

// Empty reports whether r covers no cells.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the cell at x, y is inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersection returns the overlap of r and other.
func (r Rect) Intersection(other Rect) Rect {
	x := max(r.X, other.X)
	y := max(r.Y, other.Y)
	x2 := min(r.X+r.Width, other.X+other.Width)
	y2 := min(r.Y+r.Height, other.Y+other.Height)
	if x2 <= x || y2 <= y {
		return Rect{}
	}
	return Rect{X: x, Y: y, Width: x2 - x, Height: y2 - y}
}

// Inset shrinks r by in.
func (r Rect) Inset(in Insets) Rect {
	return Rect{
		X:      r.X + in.Left,
		Y:      r.Y + in.Top,
		Width:  max(0, r.Width-in.Left-in.Right),
		Height: max(0, r.Height-in.Top-in.Bottom),
	}
}

// Offset moves r by dx, dy.
func (r Rect) Offset(dx, dy int) Rect {
	r.X += dx
	r.Y += dy
	return r
}

func (r Rect) nav() nav.Rect {
	return nav.Rect{Top: float64(r.Y), Left: float64(r.X), Width: float64(r.Width), Height: float64(r.Height)}
}

// Insets are per-edge margins.
type Insets struct {
	Top, Right, Bottom, Left int
}

// Uniform returns equal insets on every edge.
func Uniform(n int) Insets { return Insets{Top: n, Right: n, Bottom: n, Left: n} }

// Size is a width and height in cells.
type Size struct {
	Width, Height int
}
