package runtime

// Layout positions n and its subtree inside bounds. Positions ignore
// scrolling; scroll offsets are applied when mapping to the screen.
func (n *Node) Layout(bounds Rect) {
	n.layout = bounds
	inner := bounds
	if n.Border {
		inner = inner.Inset(Uniform(1))
	}
	inner = inner.Inset(n.Padding)
	n.client = inner

	visible := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if c.Hidden {
			c.Layout(Rect{X: inner.X, Y: inner.Y})
			continue
		}
		visible = append(visible, c)
	}
	if len(visible) == 0 {
		n.content = Size{Width: inner.Width, Height: inner.Height}
		n.clampScroll()
		return
	}

	if n.Axis == Overlay {
		for _, c := range visible {
			c.Layout(inner)
		}
		n.content = Size{Width: inner.Width, Height: inner.Height}
		n.clampScroll()
		return
	}

	mainExtent := inner.Height
	if n.Axis == Row {
		mainExtent = inner.Width
	}

	sizes := make([]int, len(visible))
	fixed, totalGrow := n.Gap*(len(visible)-1), 0
	for i, c := range visible {
		switch {
		case c.Size > 0:
			sizes[i] = c.Size
		case n.Scroll:
			sizes[i] = c.naturalSize(n.Axis)
		default:
			totalGrow += max(c.Grow, 1)
			continue
		}
		fixed += sizes[i]
	}

	free := max(0, mainExtent-fixed)
	if totalGrow > 0 {
		remaining := free
		last := -1
		for i, c := range visible {
			if sizes[i] != 0 {
				continue
			}
			sizes[i] = free * max(c.Grow, 1) / totalGrow
			remaining -= sizes[i]
			last = i
		}
		sizes[last] += remaining
	}

	cursor := 0
	for i, c := range visible {
		var r Rect
		if n.Axis == Row {
			r = Rect{X: inner.X + cursor, Y: inner.Y, Width: sizes[i], Height: inner.Height}
		} else {
			r = Rect{X: inner.X, Y: inner.Y + cursor, Width: inner.Width, Height: sizes[i]}
		}
		c.Layout(r)
		cursor += sizes[i] + n.Gap
	}
	cursor -= n.Gap

	if n.Axis == Row {
		n.content = Size{Width: max(cursor, inner.Width), Height: inner.Height}
	} else {
		n.content = Size{Width: inner.Width, Height: max(cursor, inner.Height)}
	}
	n.clampScroll()
}

func (n *Node) clampScroll() {
	n.scrollX = clamp(n.scrollX, 0, max(0, n.content.Width-n.client.Width))
	n.scrollY = clamp(n.scrollY, 0, max(0, n.content.Height-n.client.Height))
}

// screenOffset is the total scroll of n's scroll ancestors.
func (n *Node) screenOffset() (dx, dy int) {
	for p := n.parent; p != nil; p = p.parent {
		if p.Scroll {
			dx -= p.scrollX
			dy -= p.scrollY
		}
	}
	return dx, dy
}

// ScreenRect returns n's rectangle on screen after scrolling.
func (n *Node) ScreenRect() Rect {
	dx, dy := n.screenOffset()
	return n.layout.Offset(dx, dy)
}

// clientScreenRect is the scrolled position of n's content area.
func (n *Node) clientScreenRect() Rect {
	dx, dy := n.screenOffset()
	return n.client.Offset(dx, dy)
}

// clip is the part of the screen n may draw into.
func (n *Node) clip(viewport Rect) Rect {
	r := viewport
	for p := n.parent; p != nil; p = p.parent {
		if p.Scroll {
			r = r.Intersection(p.clientScreenRect())
		}
	}
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
