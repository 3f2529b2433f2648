package input

import (
	"strings"
	"time"

	"github.com/odvcencio/padnav/pkg/nav"
)

// Gamepad is a connected controller sampled once per frame. Pads are
// tracked by identity, so implementations must be comparable; pointers are.
type Gamepad interface {
	// ID is unique per connection.
	ID() string
	// Name is the controller model, used to pick a Mapping. Two identical
	// controllers share a name.
	Name() string
	Connected() bool
	// Axis returns the axis value in [-1, 1], 0 when out of range.
	Axis(index int) float64
	// Button reports whether the button is held, false when out of range.
	Button(index int) bool
}

// GamepadSource enumerates pads and announces new connections. OnConnect
// callbacks may arrive on any goroutine.
type GamepadSource interface {
	Gamepads() []Gamepad
	OnConnect(fn func(Gamepad)) (unsubscribe func())
}

// BindingKind selects what a Binding samples.
type BindingKind int

const (
	BindButton BindingKind = iota
	BindAxisNegative
	BindAxisPositive
)

// Binding ties a direction to one button or half-axis.
type Binding struct {
	Kind  BindingKind
	Index int
}

// Button binds a button index.
func Button(index int) Binding { return Binding{Kind: BindButton, Index: index} }

// AxisNegative binds the negative half of an axis.
func AxisNegative(index int) Binding { return Binding{Kind: BindAxisNegative, Index: index} }

// AxisPositive binds the positive half of an axis.
func AxisPositive(index int) Binding { return Binding{Kind: BindAxisPositive, Index: index} }

func (b Binding) pressed(pad Gamepad, threshold float64) bool {
	switch b.Kind {
	case BindButton:
		return pad.Button(b.Index)
	case BindAxisNegative:
		return pad.Axis(b.Index) < -threshold
	case BindAxisPositive:
		return pad.Axis(b.Index) > threshold
	}
	return false
}

// Mapping describes a controller layout.
type Mapping struct {
	Name     string
	Bindings map[nav.Direction][]Binding
}

// StandardMapping is the standard gamepad layout: left stick on axes 0
// and 1, and every direction on the button whose index equals its code.
var StandardMapping = Mapping{
	Name: "standard",
	Bindings: map[nav.Direction][]Binding{
		nav.Left:     {AxisNegative(0), Button(int(nav.Left))},
		nav.Right:    {AxisPositive(0), Button(int(nav.Right))},
		nav.Up:       {AxisNegative(1), Button(int(nav.Up))},
		nav.Down:     {AxisPositive(1), Button(int(nav.Down))},
		nav.Submit:   {Button(int(nav.Submit))},
		nav.Back:     {Button(int(nav.Back))},
		nav.X:        {Button(int(nav.X))},
		nav.Y:        {Button(int(nav.Y))},
		nav.TabLeft:  {Button(int(nav.TabLeft))},
		nav.TabRight: {Button(int(nav.TabRight))},
		nav.TabUp:    {Button(int(nav.TabUp))},
		nav.TabDown:  {Button(int(nav.TabDown))},
		nav.View:     {Button(int(nav.View))},
		nav.Menu:     {Button(int(nav.Menu))},
	},
}

// XboxMapping is the Xbox controller layout reported by the Linux xpad
// driver: triggers on axes 2 and 5 and the D-pad as a hat on axes 6 and 7.
var XboxMapping = Mapping{
	Name: "xbox",
	Bindings: map[nav.Direction][]Binding{
		nav.Left:     {AxisNegative(0), AxisNegative(6)},
		nav.Right:    {AxisPositive(0), AxisPositive(6)},
		nav.Up:       {AxisNegative(1), AxisNegative(7)},
		nav.Down:     {AxisPositive(1), AxisPositive(7)},
		nav.Submit:   {Button(0)},
		nav.Back:     {Button(1)},
		nav.X:        {Button(2)},
		nav.Y:        {Button(3)},
		nav.TabLeft:  {Button(4)},
		nav.TabRight: {Button(5)},
		nav.TabUp:    {AxisPositive(2)},
		nav.TabDown:  {AxisPositive(5)},
		nav.View:     {Button(6)},
		nav.Menu:     {Button(7)},
	},
}

// MappingFor picks a layout from a controller name. Unknown vendors get
// the standard layout.
func MappingFor(name string) Mapping {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "xbox") || strings.Contains(lower, "x-box") {
		return XboxMapping
	}
	return StandardMapping
}

// arrowOrder is the order arrows are checked each frame; only the first
// firing arrow is emitted so a diagonal stick moves once.
var arrowOrder = []nav.Direction{nav.Left, nav.Right, nav.Down, nav.Up}

var buttonOrder = []nav.Direction{
	nav.Submit, nav.Back, nav.X, nav.Y,
	nav.TabLeft, nav.TabRight, nav.TabUp, nav.TabDown,
	nav.View, nav.Menu,
}

// padState wraps a pad with per-direction debounce state.
type padState struct {
	pad       Gamepad
	mapping   Mapping
	threshold float64

	arrows  map[nav.Direction]*DirectionalDebouncer
	buttons map[nav.Direction]*FiredDebouncer
}

func newPadState(pad Gamepad, mapping Mapping, timing Timing) *padState {
	p := &padState{
		pad:       pad,
		mapping:   mapping,
		threshold: timing.JoystickThreshold,
		arrows:    make(map[nav.Direction]*DirectionalDebouncer),
		buttons:   make(map[nav.Direction]*FiredDebouncer),
	}
	for _, dir := range arrowOrder {
		p.arrows[dir] = NewDirectionalDebouncer(p.predicate(dir), timing.InitialDebounce, timing.FastDebounce)
	}
	for _, dir := range buttonOrder {
		p.buttons[dir] = NewFiredDebouncer(p.predicate(dir))
	}
	return p
}

func (p *padState) predicate(dir nav.Direction) func() bool {
	bindings := p.mapping.Bindings[dir]
	return func() bool {
		for _, b := range bindings {
			if b.pressed(p.pad, p.threshold) {
				return true
			}
		}
		return false
	}
}

// poll samples the pad and returns the directions that fire this frame.
func (p *padState) poll(now time.Time) []nav.Direction {
	var fired []nav.Direction
	for _, dir := range arrowOrder {
		if p.arrows[dir].Attempt(now) {
			fired = append(fired, dir)
			break
		}
	}
	for _, dir := range buttonOrder {
		if p.buttons[dir].Attempt(now) {
			fired = append(fired, dir)
		}
	}
	return fired
}

func (p *padState) setTiming(timing Timing) {
	p.threshold = timing.JoystickThreshold
	for _, d := range p.arrows {
		d.SetTiming(timing.InitialDebounce, timing.FastDebounce)
	}
}
