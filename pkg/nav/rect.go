package nav

import "math"

// unbounded is the half-extent used for history axes that carry no
// constraint. It is finite so that edge arithmetic stays well defined.
const unbounded = math.MaxFloat32

// Rect is an axis-aligned rectangle in scene coordinates.
type Rect struct {
	Top    float64
	Left   float64
	Width  float64
	Height float64
}

// noHistory is the history sentinel: every edge at -1, zero area.
var noHistory = Rect{Top: -1, Left: -1}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// CenterX returns the horizontal midpoint.
func (r Rect) CenterX() float64 { return r.Left + r.Width/2 }

// CenterY returns the vertical midpoint.
func (r Rect) CenterY() float64 { return r.Top + r.Height/2 }

// Contains reports whether the point lies inside r. The right and bottom
// edges are exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Intersection returns the overlap of r and other, or a zero Rect.
func (r Rect) Intersection(other Rect) Rect {
	left := math.Max(r.Left, other.Left)
	top := math.Max(r.Top, other.Top)
	right := math.Min(r.Right(), other.Right())
	bottom := math.Min(r.Bottom(), other.Bottom())
	if right <= left || bottom <= top {
		return Rect{}
	}
	return Rect{Top: top, Left: left, Width: right - left, Height: bottom - top}
}

// horizontallyUnbounded reports whether r spans the whole x axis.
func (r Rect) horizontallyUnbounded() bool { return r.Width >= unbounded }

// verticallyUnbounded reports whether r spans the whole y axis.
func (r Rect) verticallyUnbounded() bool { return r.Height >= unbounded }

// IsNoHistory reports whether r is the empty history sentinel.
func (r Rect) IsNoHistory() bool { return r == noHistory }
