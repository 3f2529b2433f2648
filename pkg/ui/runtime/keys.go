package runtime

import (
	"github.com/odvcencio/padnav/pkg/nav/input"
	"github.com/odvcencio/padnav/pkg/ui/terminal"
)

var keyCodes = map[terminal.Key]input.KeyCode{
	terminal.KeyUp:        input.KeyUp,
	terminal.KeyDown:      input.KeyDown,
	terminal.KeyLeft:      input.KeyLeft,
	terminal.KeyRight:     input.KeyRight,
	terminal.KeyEnter:     input.KeyEnter,
	terminal.KeyEscape:    input.KeyEscape,
	terminal.KeyBackspace: input.KeyBackspace,
}

// Terminals cannot tell the numeric pad apart, so digits stand in for it.
var runeCodes = map[rune]input.KeyCode{
	' ': input.KeySpace,
	'1': input.KeyNumpad1,
	'2': input.KeyNumpad2,
	'3': input.KeyNumpad3,
	'4': input.KeyNumpad4,
	'6': input.KeyNumpad6,
	'7': input.KeyNumpad7,
	'8': input.KeyNumpad8,
	'9': input.KeyNumpad9,
}

// KeyCode translates a terminal key to the virtual key code the input
// normalizer understands.
func KeyCode(msg KeyMsg) (input.KeyCode, bool) {
	if msg.Alt || msg.Ctrl {
		return 0, false
	}
	if msg.Key == terminal.KeyRune {
		code, ok := runeCodes[msg.Rune]
		return code, ok
	}
	code, ok := keyCodes[msg.Key]
	return code, ok
}
