package nav

import "math"

// RaycastConfig tunes the raycast fast path.
type RaycastConfig struct {
	// Step is the distance between samples along the ray.
	Step float64
	// Floor is the minimum ray length.
	Floor float64
	// MaxSamples caps the number of hit tests; the step grows to fit.
	MaxSamples int
}

// DefaultRaycast is the raycast configuration used unless overridden.
var DefaultRaycast = RaycastConfig{Step: 10, Floor: 40, MaxSamples: 30}

// raycast samples points along a ray leaving the reference edge and
// returns the first focusable, visible element it hits under the root.
func (sc *searchContext) raycast(dir Direction, cfg RaycastConfig) Element {
	mustDirectional(dir)
	if sc.selected == nil || cfg.Step <= 0 || cfg.MaxSamples <= 0 {
		return nil
	}

	ref := sc.reference
	extent := ref.Height
	if dir.IsHorizontal() {
		extent = ref.Width
	}
	maxDist := math.Max(extent/2, cfg.Floor)

	step := cfg.Step
	samples := int(maxDist / step)
	if samples > cfg.MaxSamples {
		samples = cfg.MaxSamples
		step = maxDist / float64(samples)
	}

	for i := 1; i <= samples; i++ {
		x, y := rayPoint(dir, ref, step*float64(i))
		el := sc.focusableAt(x, y)
		if el == nil || el == sc.selected {
			continue
		}
		if !sc.scene.Visible(el) {
			continue
		}
		return el
	}
	return nil
}

func rayPoint(dir Direction, ref Rect, dist float64) (float64, float64) {
	switch dir {
	case Left:
		return ref.Left - dist, ref.CenterY()
	case Right:
		return ref.Right() + dist, ref.CenterY()
	case Up:
		return ref.CenterX(), ref.Top - dist
	case Down:
		return ref.CenterX(), ref.Bottom() + dist
	}
	panic("nav: unreachable direction")
}

// focusableAt hit-tests the point and climbs to the nearest focusable
// element under the root. Hits on the selection's own children resolve to
// the selection.
func (sc *searchContext) focusableAt(x, y float64) Element {
	hit := sc.scene.HitTest(x, y)
	if hit == nil || !sc.scene.Contains(sc.root, hit) {
		return nil
	}
	for el := hit; el != nil && el != sc.root; el = sc.scene.Parent(el) {
		if el == sc.selected {
			return el
		}
		if sc.registry.IsFocusable(sc.scene, el) {
			return el
		}
	}
	return nil
}
