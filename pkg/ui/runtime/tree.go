package runtime

import (
	"math"
	"strings"

	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/nav/input"
	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

// Tree hosts a node tree on a terminal-sized viewport. It implements
// nav.Scene, nav.Scroller and input.FormInspector. Layout is recomputed
// lazily after Invalidate.
type Tree struct {
	root    *Node
	width   int
	height  int
	grid    *HitGrid
	focused *Node
	stale   bool
}

// Raycast suits cell coordinates: sampling every half cell keeps the ray
// from stepping over adjacent one-row nodes.
var Raycast = nav.RaycastConfig{Step: 0.5, Floor: 4, MaxSamples: 16}

var (
	_ nav.Scene           = (*Tree)(nil)
	_ nav.Scroller        = (*Tree)(nil)
	_ input.FormInspector = (*Tree)(nil)
)

// NewTree creates a tree of the given size.
func NewTree(root *Node, width, height int) *Tree {
	return &Tree{root: root, width: width, height: height, grid: NewHitGrid(width, height), stale: true}
}

// Node returns the root node.
func (t *Tree) Node() *Node { return t.root }

// Size returns the viewport size.
func (t *Tree) Size() (width, height int) { return t.width, t.height }

// Resize changes the viewport.
func (t *Tree) Resize(width, height int) {
	t.width, t.height = width, height
	t.grid.Resize(width, height)
	t.stale = true
}

// Invalidate schedules a relayout, for example after nodes are added,
// removed, hidden or resized.
func (t *Tree) Invalidate() { t.stale = true }

// Relayout lays the tree out now and rebuilds the hit grid.
func (t *Tree) Relayout() {
	t.root.Layout(t.viewport())
	t.rebuildGrid()
	t.stale = false
}

func (t *Tree) ensure() {
	if t.stale {
		t.Relayout()
	}
}

func (t *Tree) viewport() Rect { return Rect{Width: t.width, Height: t.height} }

func (t *Tree) rebuildGrid() {
	t.grid.Clear()
	vp := t.viewport()
	t.root.Walk(func(n *Node) bool {
		if n.Hidden {
			return false
		}
		t.grid.Add(n, n.ScreenRect().Intersection(n.clip(vp)))
		return true
	})
}

// FocusableAt returns the selectable node under a cell, climbing from the
// topmost node drawn there.
func (t *Tree) FocusableAt(x, y int) *Node {
	t.ensure()
	for n := t.grid.NodeAt(x, y); n != nil; n = n.parent {
		if t.tabbable(n) {
			return n
		}
	}
	return nil
}

// FocusedNode returns the node holding host focus.
func (t *Tree) FocusedNode() *Node { return t.focused }

func asNode(el nav.Element) *Node {
	n, _ := el.(*Node)
	return n
}

// element avoids wrapping a nil *Node in a non-nil interface.
func element(n *Node) nav.Element {
	if n == nil {
		return nil
	}
	return n
}

func (t *Tree) tabbable(n *Node) bool {
	idx, ok := t.TabIndex(n)
	return ok && idx >= 0
}

// Root implements nav.Scene.
func (t *Tree) Root() nav.Element { return element(t.root) }

// Bounds implements nav.Scene. Detached nodes report their last layout.
func (t *Tree) Bounds(el nav.Element) nav.Rect {
	n := asNode(el)
	if n == nil {
		return nav.Rect{}
	}
	t.ensure()
	return n.ScreenRect().nav()
}

// HitTest implements nav.Scene.
func (t *Tree) HitTest(x, y float64) nav.Element {
	t.ensure()
	return element(t.grid.NodeAt(int(math.Floor(x)), int(math.Floor(y))))
}

// Visible implements nav.Scene. Nodes scrolled out of view are visible;
// hidden nodes and nodes laid out with no area are not.
func (t *Tree) Visible(el nav.Element) bool {
	n := asNode(el)
	if n == nil || !t.Attached(n) || !n.shown() {
		return false
	}
	t.ensure()
	return !n.layout.Empty()
}

// Contains implements nav.Scene. Detached nodes are contained by nothing,
// not even their own detached ancestors.
func (t *Tree) Contains(ancestor, el nav.Element) bool {
	a, n := asNode(ancestor), asNode(el)
	if a == nil || n == nil || !under(t.root, n) {
		return false
	}
	return under(a, n)
}

// under reports whether n is a or one of its descendants.
func under(a, n *Node) bool {
	for ; n != nil; n = n.parent {
		if n == a {
			return true
		}
	}
	return false
}

// Parent implements nav.Scene.
func (t *Tree) Parent(el nav.Element) nav.Element {
	n := asNode(el)
	if n == nil {
		return nil
	}
	return element(n.parent)
}

// Attached implements nav.Scene.
func (t *Tree) Attached(el nav.Element) bool {
	n := asNode(el)
	return n != nil && under(t.root, n)
}

// Viewport implements nav.Scene.
func (t *Tree) Viewport() nav.Rect { return t.viewport().nav() }

// Focusables implements nav.Scene.
func (t *Tree) Focusables(root nav.Element) []nav.Element {
	r := asNode(root)
	if r == nil {
		return nil
	}
	var out []nav.Element
	r.Walk(func(n *Node) bool {
		if n.Hidden {
			return false
		}
		if t.tabbable(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// TabIndex implements nav.Scene. Focusable nodes default to 0.
func (t *Tree) TabIndex(el nav.Element) (int, bool) {
	n := asNode(el)
	switch {
	case n == nil:
		return 0, false
	case n.hasTab:
		return n.tabIndex, true
	case n.Focusable:
		return 0, true
	}
	return 0, false
}

// Query implements nav.Scene for "#id" and bare id selectors.
func (t *Tree) Query(selector string) nav.Element {
	id := strings.TrimPrefix(strings.TrimSpace(selector), "#")
	if id == "" {
		return nil
	}
	return element(t.root.Find(id))
}

// Focus implements nav.Scene.
func (t *Tree) Focus(el nav.Element) {
	n := asNode(el)
	if t.focused != nil {
		t.focused.focused = false
	}
	t.focused = n
	if n != nil {
		n.focused = true
	}
}

// Activate implements nav.Scene by calling the node's activation handler.
func (t *Tree) Activate(el nav.Element) bool {
	n := asNode(el)
	if n == nil || n.OnActivate == nil {
		return false
	}
	return n.OnActivate(n)
}

// ScrollIntoView implements nav.Scroller. Each scroll ancestor, nearest
// first, moves the least distance that brings rect inside its content
// area. Scrolling is immediate so the returned channel is closed.
func (t *Tree) ScrollIntoView(el nav.Element, rect nav.Rect) <-chan struct{} {
	done := make(chan struct{})
	defer close(done)

	n := asNode(el)
	if n == nil {
		return done
	}
	t.ensure()

	target := Rect{
		X:      int(math.Floor(rect.Left)),
		Y:      int(math.Floor(rect.Top)),
		Width:  int(math.Ceil(rect.Width)),
		Height: int(math.Ceil(rect.Height)),
	}
	moved := false
	for p := n.parent; p != nil; p = p.parent {
		if !p.Scroll {
			continue
		}
		client := p.clientScreenRect()
		dx := scrollDelta(target.X, target.Width, client.X, client.Width)
		dy := scrollDelta(target.Y, target.Height, client.Y, client.Height)

		oldX, oldY := p.scrollX, p.scrollY
		p.scrollX += dx
		p.scrollY += dy
		p.clampScroll()
		dx, dy = p.scrollX-oldX, p.scrollY-oldY
		if dx != 0 || dy != 0 {
			moved = true
			target = target.Offset(-dx, -dy)
		}
	}
	if moved {
		t.rebuildGrid()
	}
	return done
}

// scrollDelta returns how far a container at [lo, lo+size) must scroll so
// [pos, pos+extent) is inside it. Items larger than the container align
// to its start.
func scrollDelta(pos, extent, lo, size int) int {
	switch {
	case pos < lo:
		return pos - lo
	case pos+extent > lo+size:
		if extent > size {
			return pos - lo
		}
		return pos + extent - (lo + size)
	}
	return 0
}

// FormState implements input.FormInspector for text fields.
func (t *Tree) FormState(el nav.Element) (input.FormState, bool) {
	n := asNode(el)
	if n == nil {
		return input.FormState{}, false
	}
	state := input.FormState{}
	for p := n; p != nil; p = p.parent {
		if p.Form {
			state.InForm = true
			break
		}
	}
	if n.Field != nil {
		state.Control = input.ControlInput
		state.TextEntry = true
		state.SelectionStart = n.Field.Caret()
		state.SelectionEnd = n.Field.Caret()
		state.Length = n.Field.Len()
	}
	return state, state.InForm || state.Control != input.ControlNone
}

// HandleKey applies a key the navigation engine left to the host: text
// fields edit, and Enter activates the focused node or the form around a
// field.
func (t *Tree) HandleKey(msg KeyMsg) bool {
	n := t.focused
	if n == nil {
		return false
	}
	if msg.Key == terminal.KeyEnter {
		for p := n; p != nil; p = p.parent {
			if p.OnActivate != nil && (p == n || p.Form) {
				return p.OnActivate(p)
			}
		}
		return false
	}
	if n.Field != nil && n.Field.HandleKey(msg) {
		t.Invalidate()
		return true
	}
	return false
}
