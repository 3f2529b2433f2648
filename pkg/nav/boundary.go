package nav

import "math"

// boundary scores every focusable element under the root and returns the
// best. Ties keep the earliest element in document order. Visibility is
// only checked for candidates that would become the new best.
func (sc *searchContext) boundary(dir Direction) Element {
	mustDirectional(dir)

	viewport := sc.scene.Viewport()
	maxDistance := math.Max(viewport.Width, viewport.Height)

	var (
		best      Element
		bestScore float64
	)
	for _, el := range sc.scene.Focusables(sc.root) {
		if el == sc.selected || el == sc.root || !sc.registry.IsFocusable(sc.scene, el) {
			continue
		}
		rect := sc.scene.Bounds(el)
		if rect.Empty() {
			continue
		}
		score := Score(dir, maxDistance, sc.history, sc.reference, rect, sc.epsilon)
		if score > bestScore && sc.scene.Visible(el) {
			best, bestScore = el, score
		}
	}
	return best
}
