package runtime

import (
	"github.com/mattn/go-runewidth"

	"github.com/odvcencio/padnav/pkg/ui/backend"
)

// Cell is one character cell. Continuation cells of wide runes hold 0.
type Cell struct {
	Rune  rune
	Style backend.Style
}

// Buffer is the frame being drawn. Writes outside the clip rectangle are
// dropped, and changed cells are tracked so only they are flushed.
type Buffer struct {
	cells  []Cell
	dirty  []bool
	width  int
	height int
	clip   Rect

	dirtyCount int
}

// NewBuffer creates a buffer of the given size.
func NewBuffer(w, h int) *Buffer {
	b := &Buffer{}
	b.Resize(w, h)
	return b
}

// Size returns the buffer size.
func (b *Buffer) Size() (w, h int) { return b.width, b.height }

// Resize reallocates the buffer and marks it all dirty.
func (b *Buffer) Resize(w, h int) {
	if w == b.width && h == b.height && b.cells != nil {
		return
	}
	b.width, b.height = w, h
	b.cells = make([]Cell, w*h)
	b.dirty = make([]bool, w*h)
	b.clip = Rect{Width: w, Height: h}
	b.MarkAllDirty()
}

// SetClip restricts writes to r. The zero Rect clips everything.
func (b *Buffer) SetClip(r Rect) {
	b.clip = r.Intersection(Rect{Width: b.width, Height: b.height})
}

// ResetClip allows writes anywhere.
func (b *Buffer) ResetClip() { b.clip = Rect{Width: b.width, Height: b.height} }

// Get returns the cell at x, y, or a blank cell out of range.
func (b *Buffer) Get(x, y int) Cell {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return Cell{Rune: ' ', Style: backend.DefaultStyle()}
	}
	return b.cells[y*b.width+x]
}

// Set writes one cell.
func (b *Buffer) Set(x, y int, r rune, s backend.Style) {
	if !b.clip.Contains(x, y) {
		return
	}
	idx := y*b.width + x
	cell := Cell{Rune: r, Style: s}
	if b.cells[idx] != cell {
		b.cells[idx] = cell
		if !b.dirty[idx] {
			b.dirty[idx] = true
			b.dirtyCount++
		}
	}
}

// SetString writes s from x, y, giving wide runes two cells. It returns
// the number of columns used.
func (b *Buffer) SetString(x, y int, s string, style backend.Style) int {
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		b.Set(col, y, r, style)
		for i := 1; i < w; i++ {
			b.Set(col+i, y, 0, style)
		}
		col += w
	}
	return col - x
}

// Fill sets every cell of r.
func (b *Buffer) Fill(r Rect, ch rune, s backend.Style) {
	r = r.Intersection(b.clip)
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			b.Set(x, y, ch, s)
		}
	}
}

// Clear blanks the whole buffer regardless of the clip.
func (b *Buffer) Clear() {
	b.ResetClip()
	b.Fill(b.clip, ' ', backend.DefaultStyle())
}

// DrawBox draws a single-line border on the edge of r.
func (b *Buffer) DrawBox(r Rect, s backend.Style) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	right, bottom := r.X+r.Width-1, r.Y+r.Height-1
	b.Set(r.X, r.Y, '┌', s)
	b.Set(right, r.Y, '┐', s)
	b.Set(r.X, bottom, '└', s)
	b.Set(right, bottom, '┘', s)
	for x := r.X + 1; x < right; x++ {
		b.Set(x, r.Y, '─', s)
		b.Set(x, bottom, '─', s)
	}
	for y := r.Y + 1; y < bottom; y++ {
		b.Set(r.X, y, '│', s)
		b.Set(right, y, '│', s)
	}
}

// MarkAllDirty forces a full flush.
func (b *Buffer) MarkAllDirty() {
	for i := range b.dirty {
		b.dirty[i] = true
	}
	b.dirtyCount = len(b.dirty)
}

// DirtyCount returns the number of changed cells.
func (b *Buffer) DirtyCount() int { return b.dirtyCount }

// ForEachDirtyCell calls fn for each changed cell and clears the marks.
func (b *Buffer) ForEachDirtyCell(fn func(x, y int, cell Cell)) {
	if b.dirtyCount == 0 {
		return
	}
	for idx, d := range b.dirty {
		if d {
			fn(idx%b.width, idx/b.width, b.cells[idx])
			b.dirty[idx] = false
		}
	}
	b.dirtyCount = 0
}
