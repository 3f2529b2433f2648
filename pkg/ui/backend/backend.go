// Package backend abstracts the terminal so the runtime can draw to a real
// screen or to an in-memory simulation in tests.
package backend

import "github.com/odvcencio/padnav/pkg/ui/terminal"

// Backend is a terminal screen plus its input queue.
type Backend interface {
	// Init enters raw mode and the alternate screen.
	Init() error
	// Fini restores the terminal.
	Fini()

	Size() (width, height int)
	SetContent(x, y int, mainc rune, comb []rune, style Style)
	// Show flushes pending content.
	Show()
	HideCursor()
	// Sync forces a full redraw on the next Show.
	Sync()

	// PollEvent blocks for the next event and returns nil once the backend
	// is finalized.
	PollEvent() terminal.Event
	// PostEvent queues an event as if it came from the terminal.
	PostEvent(ev terminal.Event) error
}
