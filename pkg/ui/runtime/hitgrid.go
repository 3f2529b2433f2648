package runtime

// HitGrid maps screen cells to the topmost node drawn there.
type HitGrid struct {
	width  int
	height int
	cells  []int
	nodes  []*Node
}

// NewHitGrid creates a grid of the given size.
func NewHitGrid(width, height int) *HitGrid {
	grid := &HitGrid{}
	grid.Resize(width, height)
	return grid
}

// Resize changes the grid size and clears it.
func (g *HitGrid) Resize(width, height int) {
	if width != g.width || height != g.height {
		g.width = width
		g.height = height
		g.cells = nil
		if width > 0 && height > 0 {
			g.cells = make([]int, width*height)
		}
	}
	g.Clear()
}

// Clear empties every cell.
func (g *HitGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = -1
	}
	g.nodes = g.nodes[:0]
}

// Add marks the cells of bounds as covered by n. Later adds win.
func (g *HitGrid) Add(n *Node, bounds Rect) {
	if n == nil {
		return
	}
	bounds = bounds.Intersection(Rect{Width: g.width, Height: g.height})
	if bounds.Empty() {
		return
	}

	id := len(g.nodes)
	g.nodes = append(g.nodes, n)
	for y := bounds.Y; y < bounds.Y+bounds.Height; y++ {
		row := y * g.width
		for x := bounds.X; x < bounds.X+bounds.Width; x++ {
			g.cells[row+x] = id
		}
	}
}

// NodeAt returns the node at a cell, or nil.
func (g *HitGrid) NodeAt(x, y int) *Node {
	if x < 0 || y < 0 || x >= g.width || y >= g.height {
		return nil
	}
	idx := g.cells[y*g.width+x]
	if idx < 0 {
		return nil
	}
	return g.nodes[idx]
}
