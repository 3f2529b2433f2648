package nav

import "slices"

type listener[T any] struct {
	fn      func(T)
	removed bool
}

// listeners is a callback list with unsubscribe tokens. Emission works on
// a snapshot so callbacks may subscribe or unsubscribe while running.
type listeners[T any] struct {
	items []*listener[T]
}

func (l *listeners[T]) add(fn func(T)) func() {
	item := &listener[T]{fn: fn}
	l.items = append(l.items, item)
	return func() {
		if item.removed {
			return
		}
		item.removed = true
		l.items = slices.DeleteFunc(l.items, func(other *listener[T]) bool { return other == item })
	}
}

func (l *listeners[T]) emit(v T) {
	for _, item := range slices.Clone(l.items) {
		if !item.removed {
			item.fn(v)
		}
	}
}

func (l *listeners[T]) len() int { return len(l.items) }

// SelectEvent is the cancelable notification sent before a selection is
// committed.
type SelectEvent struct {
	From     Element
	To       Element
	canceled bool
}

// Cancel aborts the pending selection.
func (e *SelectEvent) Cancel() { e.canceled = true }

// Canceled reports whether a listener aborted the selection.
func (e *SelectEvent) Canceled() bool { return e.canceled }

// FocusChange is sent after a selection is committed. It cannot undo the
// commit, but PreventFocus stops the host's physical focus from moving.
type FocusChange struct {
	From           Element
	To             Element
	focusPrevented bool
}

// PreventFocus skips the physical focus call for this change.
func (e *FocusChange) PreventFocus() { e.focusPrevented = true }

// FocusPrevented reports whether a listener suppressed physical focus.
func (e *FocusChange) FocusPrevented() bool { return e.focusPrevented }
