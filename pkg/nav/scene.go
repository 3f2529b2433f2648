package nav

//go:generate mockgen -package=nav -self_package=github.com/odvcencio/padnav/pkg/nav -destination=mock_host_test.go github.com/odvcencio/padnav/pkg/nav Scroller,Navigator

// Element is an opaque, comparable handle to a node in the host tree.
// The engine never owns elements; it only observes them.
type Element any

// Scene is the host tree the engine navigates. Implementations are
// driven from the host UI loop and need not be safe for concurrent use.
type Scene interface {
	// Root returns the default focus root of the whole tree.
	Root() Element
	// Bounds returns the element's bounding box in scene coordinates.
	Bounds(el Element) Rect
	// HitTest returns the topmost element at the point, or nil.
	HitTest(x, y float64) Element
	// Visible reports whether the element is displayed.
	Visible(el Element) bool
	// Contains reports whether ancestor is el or one of its ancestors.
	// Detached elements are contained by nothing.
	Contains(ancestor, el Element) bool
	// Parent returns the element's parent, or nil at the top.
	Parent(el Element) Element
	// Attached reports whether the element is still in the live tree.
	Attached(el Element) bool
	// Viewport returns the visible area of the scene.
	Viewport() Rect
	// Focusables returns tab-reachable elements under root in document order.
	Focusables(root Element) []Element
	// TabIndex returns the element's tab index, if it has one.
	TabIndex(el Element) (int, bool)
	// Query resolves a selector to the first matching element, or nil.
	Query(selector string) Element
	// Focus moves the host's physical focus to the element.
	Focus(el Element)
	// Activate performs the element's native activation. It returns
	// false when the element has nothing to activate.
	Activate(el Element) bool
}

// Scroller brings a newly selected element into view. The returned
// channel closes when any animation finishes; callers may ignore it.
type Scroller interface {
	ScrollIntoView(el Element, rect Rect) <-chan struct{}
}

// Navigator is the host's history hook, invoked on an uncancelled BACK.
type Navigator interface {
	GoBack() bool
}
