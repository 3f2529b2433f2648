package nav

import "strings"

// testNode is a node in the in-memory scene used by the tests.
type testNode struct {
	id        string
	rect      Rect
	parent    *testNode
	children  []*testNode
	tabIndex  int
	hasTab    bool
	hidden    bool
	activated int
}

func (n *testNode) String() string { return n.id }

// testScene is a minimal Scene over testNodes. Later siblings paint on
// top of earlier ones.
type testScene struct {
	root     *testNode
	viewport Rect
	focused  Element
	nodes    map[string]*testNode
}

func newTestScene() *testScene {
	root := &testNode{id: "root", rect: Rect{Width: 1000, Height: 1000}}
	return &testScene{
		root:     root,
		viewport: Rect{Width: 1000, Height: 1000},
		nodes:    map[string]*testNode{"root": root},
	}
}

// item adds a focusable node.
func (s *testScene) item(parent *testNode, id string, r Rect) *testNode {
	n := s.group(parent, id, r)
	n.hasTab = true
	return n
}

// group adds a node without a tab index.
func (s *testScene) group(parent *testNode, id string, r Rect) *testNode {
	if parent == nil {
		parent = s.root
	}
	n := &testNode{id: id, rect: r, parent: parent}
	parent.children = append(parent.children, n)
	s.nodes[id] = n
	return n
}

func (s *testScene) detach(n *testNode) {
	p := n.parent
	if p == nil {
		return
	}
	for i, c := range p.children {
		if c == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

func node(el Element) *testNode {
	n, _ := el.(*testNode)
	return n
}

func (s *testScene) Root() Element { return s.root }

func (s *testScene) Bounds(el Element) Rect { return node(el).rect }

func (s *testScene) HitTest(x, y float64) Element {
	if hit := s.hit(s.root, x, y); hit != nil {
		return hit
	}
	return nil
}

func (s *testScene) hit(n *testNode, x, y float64) *testNode {
	if n.hidden || !n.rect.Contains(x, y) {
		return nil
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if h := s.hit(n.children[i], x, y); h != nil {
			return h
		}
	}
	return n
}

func (s *testScene) Visible(el Element) bool {
	for n := node(el); n != nil; n = n.parent {
		if n.hidden {
			return false
		}
	}
	return true
}

func (s *testScene) Contains(ancestor, el Element) bool {
	n := node(el)
	if n == nil || !s.Attached(n) {
		return false
	}
	for ; n != nil; n = n.parent {
		if Element(n) == ancestor {
			return true
		}
	}
	return false
}

func (s *testScene) Parent(el Element) Element {
	n := node(el)
	if n == nil || n.parent == nil {
		return nil
	}
	return n.parent
}

func (s *testScene) Attached(el Element) bool {
	n := node(el)
	for n != nil && n != s.root {
		n = n.parent
	}
	return n == s.root
}

func (s *testScene) Viewport() Rect { return s.viewport }

func (s *testScene) Focusables(root Element) []Element {
	var out []Element
	var walk func(n *testNode)
	walk = func(n *testNode) {
		if n.hasTab {
			out = append(out, n)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	if r := node(root); r != nil && s.Attached(r) {
		walk(r)
	}
	return out
}

func (s *testScene) TabIndex(el Element) (int, bool) {
	n := node(el)
	return n.tabIndex, n.hasTab
}

func (s *testScene) Query(selector string) Element {
	n, ok := s.nodes[strings.TrimPrefix(selector, "#")]
	if !ok || !s.Attached(n) {
		return nil
	}
	return n
}

func (s *testScene) Focus(el Element) { s.focused = el }

func (s *testScene) Activate(el Element) bool {
	node(el).activated++
	return true
}

func rect(top, left, width, height float64) Rect {
	return Rect{Top: top, Left: left, Width: width, Height: height}
}
