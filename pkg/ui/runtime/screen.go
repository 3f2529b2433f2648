package runtime

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/ui/backend"
)

// Trapper confines navigation to a subtree while a modal layer is open.
// *nav.Controller satisfies it.
type Trapper interface {
	TrapFocus(root nav.Element)
	ReleaseFocus()
}

// Layer is one entry in the layer stack.
type Layer struct {
	Root  *Node
	Modal bool
}

// Styles are the colors used to draw nodes.
type Styles struct {
	Normal  backend.Style
	Focused backend.Style
	Border  backend.Style
	Field   backend.Style
	Caret   backend.Style
}

// DefaultStyles draws focus in reverse video.
func DefaultStyles() Styles {
	base := backend.DefaultStyle()
	return Styles{
		Normal:  base,
		Focused: base.With(backend.AttrReverse|backend.AttrBold, true),
		Border:  base.Foreground(backend.ColorCyan),
		Field:   base.With(backend.AttrUnderline, true),
		Caret:   base.With(backend.AttrReverse, true),
	}
}

// Screen stacks layers over a shared document node. Later layers draw
// and hit-test above earlier ones, and modal layers trap focus.
type Screen struct {
	document *Node
	tree     *Tree
	layers   []*Layer
	buffer   *Buffer
	styles   Styles
	trapper  Trapper
}

// NewScreen creates an empty screen.
func NewScreen(w, h int) *Screen {
	doc := NewNode("document", func(n *Node) { n.Axis = Overlay })
	return &Screen{
		document: doc,
		tree:     NewTree(doc, w, h),
		buffer:   NewBuffer(w, h),
		styles:   DefaultStyles(),
	}
}

// Tree returns the scene the screen draws.
func (s *Screen) Tree() *Tree { return s.tree }

// Buffer returns the frame buffer.
func (s *Screen) Buffer() *Buffer { return s.buffer }

// Size returns the screen size.
func (s *Screen) Size() (w, h int) { return s.tree.Size() }

// SetStyles replaces the styles.
func (s *Screen) SetStyles(st Styles) { s.styles = st }

// SetTrapper connects modal layers to a navigation controller.
func (s *Screen) SetTrapper(t Trapper) { s.trapper = t }

// Resize changes the screen size.
func (s *Screen) Resize(w, h int) {
	s.tree.Resize(w, h)
	s.buffer.Resize(w, h)
}

// SetRoot sets the base layer.
func (s *Screen) SetRoot(root *Node) {
	if len(s.layers) == 0 {
		s.layers = append(s.layers, &Layer{Root: root})
		s.document.Add(root)
	} else {
		s.document.Remove(s.layers[0].Root)
		s.layers[0].Root = root
		s.document.children = append([]*Node{root}, s.document.children...)
		root.parent = s.document
	}
	s.tree.Invalidate()
}

// PushLayer opens root above the current layers.
func (s *Screen) PushLayer(root *Node, modal bool) {
	s.layers = append(s.layers, &Layer{Root: root, Modal: modal})
	s.document.Add(root)
	s.tree.Invalidate()
	if modal && s.trapper != nil {
		s.trapper.TrapFocus(root)
	}
}

// PopLayer closes the top layer. The base layer cannot be popped.
func (s *Screen) PopLayer() bool {
	if len(s.layers) <= 1 {
		return false
	}
	top := s.layers[len(s.layers)-1]
	s.layers = s.layers[:len(s.layers)-1]
	s.document.Remove(top.Root)
	s.tree.Invalidate()
	if top.Modal && s.trapper != nil {
		s.trapper.ReleaseFocus()
	}
	return true
}

// TopLayer returns the topmost layer.
func (s *Screen) TopLayer() *Layer {
	if len(s.layers) == 0 {
		return nil
	}
	return s.layers[len(s.layers)-1]
}

// LayerCount returns the number of layers.
func (s *Screen) LayerCount() int { return len(s.layers) }

// Render draws every layer into the buffer.
func (s *Screen) Render() {
	s.tree.ensure()
	s.buffer.Clear()
	vp := s.tree.viewport()
	for _, layer := range s.layers {
		layer.Root.Walk(func(n *Node) bool {
			if n.Hidden {
				return false
			}
			s.drawNode(n, vp)
			return true
		})
	}
	s.buffer.ResetClip()
}

func (s *Screen) drawNode(n *Node, vp Rect) {
	clip := n.clip(vp)
	if clip.Empty() {
		return
	}
	s.buffer.SetClip(clip)
	r := n.ScreenRect()

	if n.Border {
		s.buffer.Fill(r, ' ', s.styles.Normal)
		style := s.styles.Border
		if n.focused {
			style = s.styles.Focused
		}
		s.buffer.DrawBox(r, style)
	}

	inner := n.clientScreenRect()
	if inner.Empty() {
		return
	}
	s.buffer.SetClip(clip.Intersection(inner))

	label := n.Label
	style := s.styles.Normal
	if n.focused {
		style = s.styles.Focused
	}
	if n.Field != nil {
		s.drawField(n, inner, style)
		return
	}
	if label == "" {
		return
	}
	if n.focused && !n.Border {
		s.buffer.Fill(Rect{X: inner.X, Y: inner.Y, Width: inner.Width, Height: 1}, ' ', style)
	}
	s.buffer.SetString(inner.X, inner.Y, runewidth.Truncate(label, inner.Width, "…"), style)
}

func (s *Screen) drawField(n *Node, inner Rect, style backend.Style) {
	x := inner.X
	if n.Label != "" {
		x += s.buffer.SetString(x, inner.Y, n.Label+": ", style)
	}
	fieldStyle := s.styles.Field
	s.buffer.Fill(Rect{X: x, Y: inner.Y, Width: inner.X + inner.Width - x, Height: 1}, ' ', fieldStyle)
	for i, r := range []rune(n.Field.Value()) {
		st := fieldStyle
		if n.focused && i == n.Field.Caret() {
			st = s.styles.Caret
		}
		x += s.buffer.SetString(x, inner.Y, string(r), st)
	}
	if n.focused && n.Field.Caret() == n.Field.Len() {
		s.buffer.Set(x, inner.Y, ' ', s.styles.Caret)
	}
}
