package runtime

import (
	"slices"

	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

// Field is a single-line text value with a caret.
type Field struct {
	value []rune
	caret int
}

// NewField creates a field with the caret at the end.
func NewField(value string) *Field {
	v := []rune(value)
	return &Field{value: v, caret: len(v)}
}

// Value returns the text.
func (f *Field) Value() string { return string(f.value) }

// Caret returns the caret position in runes.
func (f *Field) Caret() int { return f.caret }

// Len returns the length in runes.
func (f *Field) Len() int { return len(f.value) }

// SetCaret moves the caret, clamped to the value.
func (f *Field) SetCaret(pos int) { f.caret = clamp(pos, 0, len(f.value)) }

// HandleKey edits the field and reports whether the key was used.
func (f *Field) HandleKey(msg KeyMsg) bool {
	switch msg.Key {
	case terminal.KeyLeft:
		if f.caret == 0 {
			return false
		}
		f.caret--
	case terminal.KeyRight:
		if f.caret == len(f.value) {
			return false
		}
		f.caret++
	case terminal.KeyHome:
		f.caret = 0
	case terminal.KeyEnd:
		f.caret = len(f.value)
	case terminal.KeyBackspace:
		if f.caret == 0 {
			return false
		}
		f.value = slices.Delete(f.value, f.caret-1, f.caret)
		f.caret--
	case terminal.KeyDelete:
		if f.caret == len(f.value) {
			return false
		}
		f.value = slices.Delete(f.value, f.caret, f.caret+1)
	case terminal.KeyRune:
		if msg.Ctrl || msg.Alt {
			return false
		}
		f.value = slices.Insert(f.value, f.caret, msg.Rune)
		f.caret++
	default:
		return false
	}
	return true
}
