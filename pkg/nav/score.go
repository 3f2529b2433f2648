package nav

import "math"

// Score weights. The history weight dwarfs the others so that a
// candidate inside the remembered corridor always wins.
const (
	primaryWeight   = 30
	secondaryWeight = 20
	historyWeight   = 100000
)

// DefaultEpsilon absorbs rounding in rect arithmetic when checking that a
// candidate does not overlap the reference along the movement axis.
const DefaultEpsilon = 1.0

// Score rates potential as the next selection when moving in dir from
// reference. Zero means the candidate is rejected; higher is better.
// Score panics if dir is not one of the four arrows.
func Score(dir Direction, maxDistance float64, history, reference, potential Rect, epsilon float64) float64 {
	mustDirectional(dir)

	if !beyond(dir, reference, potential) {
		return 0
	}

	var (
		primary   = primaryGap(dir, reference, potential)
		secondary float64
		inHistory float64
	)
	if primary < -epsilon {
		return 0
	}

	inShadow := shadow(dir, reference, potential)
	if inShadow > 0 {
		inHistory = historyShadow(dir, history, potential)
	} else {
		secondary = secondaryGap(dir, reference, potential)
	}

	primary = maxDistance - primary
	secondary = maxDistance - secondary
	if primary < 0 || secondary < 0 {
		return 0
	}

	return primary*(1+inShadow)*primaryWeight +
		secondary*secondaryWeight +
		inHistory*historyWeight
}

// beyond reports whether potential's leading edge strictly passes the
// reference edge in dir.
func beyond(dir Direction, reference, potential Rect) bool {
	switch dir {
	case Left:
		return potential.Left < reference.Left
	case Right:
		return potential.Right() > reference.Right()
	case Up:
		return potential.Top < reference.Top
	case Down:
		return potential.Bottom() > reference.Bottom()
	}
	panic("nav: unreachable direction")
}

// primaryGap is the distance between the facing edges along the movement
// axis. Negative values mean the rects overlap on that axis.
func primaryGap(dir Direction, reference, potential Rect) float64 {
	switch dir {
	case Left:
		return reference.Left - potential.Right()
	case Right:
		return potential.Left - reference.Right()
	case Up:
		return reference.Top - potential.Bottom()
	case Down:
		return potential.Top - reference.Bottom()
	}
	panic("nav: unreachable direction")
}

// secondaryGap is the perpendicular distance between two rects that do
// not overlap on the perpendicular axis.
func secondaryGap(dir Direction, reference, potential Rect) float64 {
	if dir.IsHorizontal() {
		if potential.Bottom() <= reference.Top {
			return reference.Top - potential.Bottom()
		}
		return potential.Top - reference.Bottom()
	}
	if potential.Right() <= reference.Left {
		return reference.Left - potential.Right()
	}
	return potential.Left - reference.Right()
}

// shadow returns the perpendicular overlap of a and b as a fraction of the
// shorter of the two extents.
func shadow(dir Direction, a, b Rect) float64 {
	if dir.IsHorizontal() {
		return overlapRatio(a.Top, a.Bottom(), b.Top, b.Bottom())
	}
	return overlapRatio(a.Left, a.Right(), b.Left, b.Right())
}

// historyShadow is shadow against the remembered corridor. A history that
// spans the whole perpendicular axis says nothing and scores zero.
func historyShadow(dir Direction, history, potential Rect) float64 {
	if dir.IsHorizontal() && history.verticallyUnbounded() {
		return 0
	}
	if !dir.IsHorizontal() && history.horizontallyUnbounded() {
		return 0
	}
	return shadow(dir, history, potential)
}

func overlapRatio(aLo, aHi, bLo, bHi float64) float64 {
	overlap := math.Min(aHi, bHi) - math.Max(aLo, bLo)
	if overlap <= 0 {
		return 0
	}
	shorter := math.Min(aHi-aLo, bHi-bLo)
	if shorter <= 0 {
		return 0
	}
	return overlap / shorter
}

// UpdateHistory returns the corridor remembered after moving in dir from
// reference to winner. The perpendicular band is the intersection of the
// winner, the reference and the previous history; it falls back to the
// winner's own band when that intersection is empty. The movement axis is
// left unbounded.
func UpdateHistory(dir Direction, history, reference, winner Rect) Rect {
	mustDirectional(dir)

	if dir.IsHorizontal() {
		lo, hi := band(winner.Top, winner.Bottom(), reference.Top, reference.Bottom())
		if !history.IsNoHistory() && !history.verticallyUnbounded() {
			lo, hi = band(lo, hi, history.Top, history.Bottom())
		}
		if hi <= lo {
			lo, hi = winner.Top, winner.Bottom()
		}
		return Rect{Top: lo, Height: hi - lo, Left: -unbounded, Width: 2 * unbounded}
	}

	lo, hi := band(winner.Left, winner.Right(), reference.Left, reference.Right())
	if !history.IsNoHistory() && !history.horizontallyUnbounded() {
		lo, hi = band(lo, hi, history.Left, history.Right())
	}
	if hi <= lo {
		lo, hi = winner.Left, winner.Right()
	}
	return Rect{Left: lo, Width: hi - lo, Top: -unbounded, Height: 2 * unbounded}
}

func band(aLo, aHi, bLo, bHi float64) (float64, float64) {
	return math.Max(aLo, bLo), math.Min(aHi, bHi)
}
