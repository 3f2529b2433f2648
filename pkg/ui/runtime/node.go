package runtime

import (
	"slices"

	"github.com/mattn/go-runewidth"
)

// Axis is the direction a container stacks its children.
type Axis int

const (
	Column Axis = iota
	Row
	// Overlay gives every child the whole content area.
	Overlay
)

// Node is one element of the terminal scene. Containers stack children
// along Axis; children with a fixed size keep it and the rest share what
// is left in proportion to Grow.
type Node struct {
	ID    string
	Label string

	Focusable bool
	Hidden    bool
	Border    bool
	Form      bool
	Scroll    bool

	Axis    Axis
	Gap     int
	Padding Insets
	// Size is the fixed extent along the parent's axis; 0 means grow.
	Size int
	Grow int

	Field      *Field
	OnActivate func(*Node) bool

	tabIndex int
	hasTab   bool

	parent   *Node
	children []*Node

	layout  Rect
	client  Rect
	content Size
	scrollX int
	scrollY int
	focused bool
}

// NodeOption configures a Node.
type NodeOption func(*Node)

// Label sets the text drawn in the node.
func Label(s string) NodeOption { return func(n *Node) { n.Label = s } }

// Focusable marks the node selectable.
func Focusable() NodeOption {
	return func(n *Node) { n.Focusable = true }
}

// TabIndex sets an explicit tab index. Negative values keep the node out
// of navigation.
func TabIndex(i int) NodeOption {
	return func(n *Node) {
		n.tabIndex = i
		n.hasTab = true
	}
}

// Bordered draws a box around the node.
func Bordered() NodeOption { return func(n *Node) { n.Border = true } }

// Horizontal stacks children left to right.
func Horizontal() NodeOption { return func(n *Node) { n.Axis = Row } }

// Gap sets the space between children.
func Gap(g int) NodeOption { return func(n *Node) { n.Gap = g } }

// Padding sets the inner margin.
func Padding(in Insets) NodeOption { return func(n *Node) { n.Padding = in } }

// Fixed sets the extent along the parent's axis.
func Fixed(size int) NodeOption { return func(n *Node) { n.Size = size } }

// Grow sets the share of free space.
func Grow(g int) NodeOption { return func(n *Node) { n.Grow = g } }

// Scrollable clips children to the node and lets them scroll.
func Scrollable() NodeOption { return func(n *Node) { n.Scroll = true } }

// FormGroup marks the node as a form so SUBMIT inside it stays with the
// field.
func FormGroup() NodeOption { return func(n *Node) { n.Form = true } }

// TextField makes the node an editable, focusable text field.
func TextField(value string) NodeOption {
	return func(n *Node) {
		n.Field = NewField(value)
		n.Focusable = true
	}
}

// OnActivate sets the SUBMIT handler.
func OnActivate(fn func(*Node) bool) NodeOption {
	return func(n *Node) { n.OnActivate = fn }
}

// NewNode creates a node.
func NewNode(id string, opts ...NodeOption) *Node {
	n := &Node{ID: id}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Add appends children, detaching them from any previous parent.
func (n *Node) Add(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		if c.parent != nil {
			c.parent.Remove(c)
		}
		c.parent = n
		n.children = append(n.children, c)
	}
	return n
}

// Remove detaches child and reports whether it was a child of n.
func (n *Node) Remove(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// Parent returns the parent, nil for a root or detached node.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the child list.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Focused reports whether the host focus is on n.
func (n *Node) Focused() bool { return n.focused }

// ScrollOffset returns the scroll position of a scroll container.
func (n *Node) ScrollOffset() (x, y int) { return n.scrollX, n.scrollY }

// Walk visits n and its descendants in document order. Returning false
// from fn skips the node's subtree.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Walk(fn)
	}
}

// Find returns the first node in n's subtree with the given id.
func (n *Node) Find(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if found != nil {
			return false
		}
		if c.ID == id {
			found = c
			return false
		}
		return true
	})
	return found
}

func (n *Node) String() string { return "#" + n.ID }

func (n *Node) shown() bool {
	for c := n; c != nil; c = c.parent {
		if c.Hidden {
			return false
		}
	}
	return true
}

// naturalSize is the size a node asks for when its parent scrolls and
// it has no fixed size.
func (n *Node) naturalSize(axis Axis) int {
	frame := 0
	if n.Border {
		frame = 2
	}
	if axis == Column {
		frame += n.Padding.Top + n.Padding.Bottom
		return max(1, frame+1)
	}
	frame += n.Padding.Left + n.Padding.Right
	return max(1, frame+runewidth.StringWidth(n.Label))
}
