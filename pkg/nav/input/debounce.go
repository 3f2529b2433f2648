package input

import "time"

// Default repeat timings.
const (
	DefaultInitialDebounce   = 500 * time.Millisecond
	DefaultFastDebounce      = 150 * time.Millisecond
	DefaultJoystickThreshold = 0.5
)

// Stage is how long a directional input has been held.
type Stage int

const (
	StageIdle Stage = iota
	StageHeld
	StageFast
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageHeld:
		return "held"
	case StageFast:
		return "fast"
	}
	return "unknown"
}

// DirectionalDebouncer repeats a held input: it fires on press, again once
// the initial delay has passed, then at the fast interval until released.
type DirectionalDebouncer struct {
	pressed func() bool
	initial time.Duration
	fast    time.Duration

	stage  Stage
	heldAt time.Time
}

// NewDirectionalDebouncer wraps a pressed predicate.
func NewDirectionalDebouncer(pressed func() bool, initial, fast time.Duration) *DirectionalDebouncer {
	return &DirectionalDebouncer{pressed: pressed, initial: initial, fast: fast}
}

// Attempt samples the input at now and reports whether it fires.
func (d *DirectionalDebouncer) Attempt(now time.Time) bool {
	if !d.pressed() {
		d.stage = StageIdle
		return false
	}

	switch d.stage {
	case StageIdle:
		d.stage = StageHeld
		d.heldAt = now
		return true
	case StageHeld:
		if now.Sub(d.heldAt) < d.initial {
			return false
		}
		d.stage = StageFast
		d.heldAt = now
		return true
	case StageFast:
		if now.Sub(d.heldAt) < d.fast {
			return false
		}
		d.heldAt = now
		return true
	}
	panic("input: unknown debouncer stage")
}

// Stage returns the current stage.
func (d *DirectionalDebouncer) Stage() Stage { return d.stage }

// SetTiming changes the repeat delays without resetting the stage.
func (d *DirectionalDebouncer) SetTiming(initial, fast time.Duration) {
	d.initial = initial
	d.fast = fast
}

// FiredDebouncer fires once per press.
type FiredDebouncer struct {
	pressed func() bool
	was     bool
}

// NewFiredDebouncer wraps a pressed predicate.
func NewFiredDebouncer(pressed func() bool) *FiredDebouncer {
	return &FiredDebouncer{pressed: pressed}
}

// Attempt samples the input and reports a rising edge.
func (d *FiredDebouncer) Attempt(time.Time) bool {
	pressed := d.pressed()
	fired := pressed && !d.was
	d.was = pressed
	return fired
}
