// Package tcell implements backend.Backend on tcell.
package tcell

import (
	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/padnav/pkg/ui/backend"
	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

// Backend draws to a tcell screen.
type Backend struct {
	screen tcell.Screen
}

// New opens the controlling terminal.
func New() (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Backend{screen: screen}, nil
}

// NewWithScreen wraps an existing screen, such as a simulation screen.
func NewWithScreen(screen tcell.Screen) *Backend {
	return &Backend{screen: screen}
}

func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse(tcell.MouseButtonEvents)
	return nil
}

func (b *Backend) Fini()                     { b.screen.Fini() }
func (b *Backend) Size() (width, height int) { return b.screen.Size() }
func (b *Backend) Show()                     { b.screen.Show() }
func (b *Backend) HideCursor()               { b.screen.HideCursor() }
func (b *Backend) Sync()                     { b.screen.Sync() }

func (b *Backend) SetContent(x, y int, mainc rune, comb []rune, style backend.Style) {
	b.screen.SetContent(x, y, mainc, comb, convertStyle(style))
}

// PollEvent skips tcell events with no terminal equivalent.
func (b *Backend) PollEvent() terminal.Event {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if out := convertEvent(ev); out != nil {
			return out
		}
	}
}

func (b *Backend) PostEvent(ev terminal.Event) error {
	if tev := reverseEvent(ev); tev != nil {
		return b.screen.PostEvent(tev)
	}
	return nil
}

func convertStyle(s backend.Style) tcell.Style {
	fg, bg, attrs := s.Decompose()
	style := tcell.StyleDefault.
		Foreground(convertColor(fg)).
		Background(convertColor(bg)).
		Bold(attrs&backend.AttrBold != 0).
		Reverse(attrs&backend.AttrReverse != 0).
		Underline(attrs&backend.AttrUnderline != 0).
		Dim(attrs&backend.AttrDim != 0)
	return style
}

func convertColor(c backend.Color) tcell.Color {
	if c == backend.ColorDefault {
		return tcell.ColorDefault
	}
	return tcell.PaletteColor(int(c))
}

var keyTable = map[tcell.Key]terminal.Key{
	tcell.KeyRune:       terminal.KeyRune,
	tcell.KeyEnter:      terminal.KeyEnter,
	tcell.KeyBackspace:  terminal.KeyBackspace,
	tcell.KeyBackspace2: terminal.KeyBackspace,
	tcell.KeyTab:        terminal.KeyTab,
	tcell.KeyBacktab:    terminal.KeyBacktab,
	tcell.KeyEscape:     terminal.KeyEscape,
	tcell.KeyUp:         terminal.KeyUp,
	tcell.KeyDown:       terminal.KeyDown,
	tcell.KeyLeft:       terminal.KeyLeft,
	tcell.KeyRight:      terminal.KeyRight,
	tcell.KeyHome:       terminal.KeyHome,
	tcell.KeyEnd:        terminal.KeyEnd,
	tcell.KeyPgUp:       terminal.KeyPageUp,
	tcell.KeyPgDn:       terminal.KeyPageDown,
	tcell.KeyDelete:     terminal.KeyDelete,
	tcell.KeyCtrlC:      terminal.KeyCtrlC,
}

func convertEvent(ev tcell.Event) terminal.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		key, ok := keyTable[e.Key()]
		if !ok {
			return nil
		}
		mods := e.Modifiers()
		return terminal.KeyEvent{
			Key:   key,
			Rune:  e.Rune(),
			Alt:   mods&tcell.ModAlt != 0,
			Ctrl:  mods&tcell.ModCtrl != 0,
			Shift: mods&tcell.ModShift != 0,
		}
	case *tcell.EventResize:
		w, h := e.Size()
		return terminal.ResizeEvent{Width: w, Height: h}
	case *tcell.EventMouse:
		x, y := e.Position()
		button, action := convertButtons(e.Buttons())
		return terminal.MouseEvent{X: x, Y: y, Button: button, Action: action}
	}
	return nil
}

func convertButtons(buttons tcell.ButtonMask) (terminal.MouseButton, terminal.MouseAction) {
	switch {
	case buttons&tcell.WheelUp != 0:
		return terminal.MouseWheelUp, terminal.MousePress
	case buttons&tcell.WheelDown != 0:
		return terminal.MouseWheelDown, terminal.MousePress
	case buttons&tcell.Button1 != 0:
		return terminal.MouseLeft, terminal.MousePress
	case buttons&tcell.Button2 != 0:
		return terminal.MouseMiddle, terminal.MousePress
	case buttons&tcell.Button3 != 0:
		return terminal.MouseRight, terminal.MousePress
	}
	return terminal.MouseNone, terminal.MouseRelease
}

func reverseEvent(ev terminal.Event) tcell.Event {
	switch e := ev.(type) {
	case terminal.ResizeEvent:
		return tcell.NewEventResize(e.Width, e.Height)
	case terminal.KeyEvent:
		for tk, k := range keyTable {
			if k == e.Key && tk != tcell.KeyBackspace {
				var mods tcell.ModMask
				if e.Alt {
					mods |= tcell.ModAlt
				}
				if e.Ctrl {
					mods |= tcell.ModCtrl
				}
				if e.Shift {
					mods |= tcell.ModShift
				}
				return tcell.NewEventKey(tk, e.Rune, mods)
			}
		}
	}
	return nil
}

var _ backend.Backend = (*Backend)(nil)
