package runtime

import (
	"time"

	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

// Message is an event flowing into the UI loop.
type Message interface {
	isMessage()
}

// KeyMsg is a key press.
type KeyMsg struct {
	Key   terminal.Key
	Rune  rune
	Alt   bool
	Ctrl  bool
	Shift bool
}

func (KeyMsg) isMessage() {}

// ResizeMsg reports a new terminal size.
type ResizeMsg struct {
	Width  int
	Height int
}

func (ResizeMsg) isMessage() {}

// MouseMsg is a mouse event.
type MouseMsg struct {
	X, Y   int
	Button terminal.MouseButton
	Action terminal.MouseAction
}

func (MouseMsg) isMessage() {}

// TickMsg is sent at the app's tick rate.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// FuncMsg runs Fn on the UI loop. Other goroutines use it to reach state
// owned by the loop.
type FuncMsg struct {
	Fn func()
}

func (FuncMsg) isMessage() {}
