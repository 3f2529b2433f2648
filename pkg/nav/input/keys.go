// Package input turns keyboard codes, gamepad state and injected sources
// into the direction stream that drives the focus controller.
package input

import (
	"maps"

	"github.com/odvcencio/padnav/pkg/nav"
)

// KeyCode is a platform virtual key code.
type KeyCode int

const (
	KeyBackspace KeyCode = 8
	KeyEnter     KeyCode = 13
	KeyEscape    KeyCode = 27
	KeySpace     KeyCode = 32
	KeyLeft      KeyCode = 37
	KeyUp        KeyCode = 38
	KeyRight     KeyCode = 39
	KeyDown      KeyCode = 40

	KeyNumpad1 KeyCode = 97
	KeyNumpad2 KeyCode = 98
	KeyNumpad3 KeyCode = 99
	KeyNumpad4 KeyCode = 100
	KeyNumpad6 KeyCode = 102
	KeyNumpad7 KeyCode = 103
	KeyNumpad8 KeyCode = 104
	KeyNumpad9 KeyCode = 105
)

// Virtual key codes synthesized for Xbox controllers by platforms that
// emulate keyboard input from a gamepad.
const (
	KeyGamepadA                     KeyCode = 195
	KeyGamepadB                     KeyCode = 196
	KeyGamepadX                     KeyCode = 197
	KeyGamepadY                     KeyCode = 198
	KeyGamepadRightShoulder         KeyCode = 199
	KeyGamepadLeftShoulder          KeyCode = 200
	KeyGamepadLeftTrigger           KeyCode = 201
	KeyGamepadRightTrigger          KeyCode = 202
	KeyGamepadDPadUp                KeyCode = 203
	KeyGamepadDPadDown              KeyCode = 204
	KeyGamepadDPadLeft              KeyCode = 205
	KeyGamepadDPadRight             KeyCode = 206
	KeyGamepadMenu                  KeyCode = 207
	KeyGamepadView                  KeyCode = 208
	KeyGamepadLeftThumbstickButton  KeyCode = 209
	KeyGamepadRightThumbstickButton KeyCode = 210
	KeyGamepadLeftThumbstickUp      KeyCode = 211
	KeyGamepadLeftThumbstickDown    KeyCode = 212
	KeyGamepadLeftThumbstickRight   KeyCode = 213
	KeyGamepadLeftThumbstickLeft    KeyCode = 214
)

// Keymap maps key codes to directions.
type Keymap map[KeyCode]nav.Direction

var defaultKeymap = Keymap{
	KeyLeft:      nav.Left,
	KeyUp:        nav.Up,
	KeyRight:     nav.Right,
	KeyDown:      nav.Down,
	KeyEnter:     nav.Submit,
	KeySpace:     nav.Submit,
	KeyEscape:    nav.Back,
	KeyBackspace: nav.Back,

	KeyNumpad7: nav.X,
	KeyNumpad9: nav.Y,
	KeyNumpad4: nav.TabLeft,
	KeyNumpad6: nav.TabRight,
	KeyNumpad8: nav.TabUp,
	KeyNumpad2: nav.TabDown,
	KeyNumpad1: nav.View,
	KeyNumpad3: nav.Menu,

	KeyGamepadA:                   nav.Submit,
	KeyGamepadB:                   nav.Back,
	KeyGamepadX:                   nav.X,
	KeyGamepadY:                   nav.Y,
	KeyGamepadLeftShoulder:        nav.TabLeft,
	KeyGamepadRightShoulder:       nav.TabRight,
	KeyGamepadLeftTrigger:         nav.TabUp,
	KeyGamepadRightTrigger:        nav.TabDown,
	KeyGamepadDPadUp:              nav.Up,
	KeyGamepadDPadDown:            nav.Down,
	KeyGamepadDPadLeft:            nav.Left,
	KeyGamepadDPadRight:           nav.Right,
	KeyGamepadMenu:                nav.Menu,
	KeyGamepadView:                nav.View,
	KeyGamepadLeftThumbstickUp:    nav.Up,
	KeyGamepadLeftThumbstickDown:  nav.Down,
	KeyGamepadLeftThumbstickRight: nav.Right,
	KeyGamepadLeftThumbstickLeft:  nav.Left,
}

// DefaultKeymap returns a copy of the built-in key table.
func DefaultKeymap() Keymap {
	return maps.Clone(defaultKeymap)
}

// Lookup returns the direction bound to code.
func (k Keymap) Lookup(code KeyCode) (nav.Direction, bool) {
	d, ok := k[code]
	return d, ok
}

// With returns a copy of k with extra bindings applied on top.
func (k Keymap) With(extra Keymap) Keymap {
	out := maps.Clone(k)
	if out == nil {
		out = Keymap{}
	}
	maps.Copy(out, extra)
	return out
}
