// Package nav resolves directional focus movement over a tree of visual
// elements: geometric candidate search, override bindings, a focusable
// registry, two-phase event bubbling and the focus controller that ties
// them together.
package nav

import (
	"fmt"
	"strings"

	"github.com/odvcencio/padnav/pkg/errors"
)

// Direction is a navigation or action code. Values follow the standard
// gamepad button indexes.
type Direction int

const (
	Submit   Direction = 0
	Back     Direction = 1
	X        Direction = 2
	Y        Direction = 3
	TabLeft  Direction = 4 // left bumper
	TabRight Direction = 5 // right bumper
	TabUp    Direction = 6 // left trigger
	TabDown  Direction = 7 // right trigger
	View     Direction = 8
	Menu     Direction = 9
	Up       Direction = 12
	Down     Direction = 13
	Left     Direction = 14
	Right    Direction = 15
)

var directionNames = map[Direction]string{
	Submit:   "submit",
	Back:     "back",
	X:        "x",
	Y:        "y",
	TabLeft:  "tableft",
	TabRight: "tabright",
	TabUp:    "tabup",
	TabDown:  "tabdown",
	View:     "view",
	Menu:     "menu",
	Up:       "up",
	Down:     "down",
	Left:     "left",
	Right:    "right",
}

// Directions lists every known code in index order.
func Directions() []Direction {
	return []Direction{Submit, Back, X, Y, TabLeft, TabRight, TabUp, TabDown, View, Menu, Up, Down, Left, Right}
}

// Valid reports whether d is one of the known codes.
func (d Direction) Valid() bool {
	_, ok := directionNames[d]
	return ok
}

// IsDirectional reports whether d is one of the four arrows.
func (d Direction) IsDirectional() bool {
	switch d {
	case Up, Down, Left, Right:
		return true
	}
	return false
}

// IsHorizontal reports whether d moves along the x axis.
func (d Direction) IsHorizontal() bool {
	return d == Left || d == Right
}

func (d Direction) String() string {
	if name, ok := directionNames[d]; ok {
		return name
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// ParseDirection maps a case-insensitive name to a Direction.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d, n := range directionNames {
		if n == name {
			return d, nil
		}
	}
	return 0, unknownDirection(s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, unknownDirection(d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func unknownDirection(v any) error {
	return errors.Newf(errors.ErrCodeUnknownDirection, "unknown direction %v", v).
		WithContext("direction", v)
}

// mustDirectional panics on codes that cannot drive geometric search.
// Reaching it with anything else is a programming error.
func mustDirectional(d Direction) {
	if !d.IsDirectional() {
		panic(fmt.Sprintf("nav: invalid direction %v for geometric search", d))
	}
}
