// Package gamepad reads controllers through the Linux joystick interface
// (/dev/input/js*) and exposes them as an input.GamepadSource.
package gamepad

import (
	"encoding/binary"

	"github.com/odvcencio/padnav/pkg/errors"
)

// EventSize is the size of one js_event record.
const EventSize = 8

// Event types. TypeInit is or'ed into the synthetic events the driver
// sends on open to report initial state.
const (
	TypeButton uint8 = 0x01
	TypeAxis   uint8 = 0x02
	TypeInit   uint8 = 0x80
)

// axisMax is the magnitude of a fully deflected axis.
const axisMax = 32767

// Event is one joystick record.
type Event struct {
	Time   uint32 // milliseconds, driver clock
	Value  int16
	Type   uint8
	Number uint8
}

// Kind strips the init flag.
func (e Event) Kind() uint8 { return e.Type &^ TypeInit }

// Init reports whether the event describes initial state.
func (e Event) Init() bool { return e.Type&TypeInit != 0 }

// Decode parses a little-endian js_event record.
func Decode(b []byte) (Event, error) {
	if len(b) < EventSize {
		return Event{}, errors.Newf(errors.ErrCodeDeviceRead, "short joystick event: %d bytes", len(b))
	}
	return Event{
		Time:   binary.LittleEndian.Uint32(b[0:4]),
		Value:  int16(binary.LittleEndian.Uint16(b[4:6])),
		Type:   b[6],
		Number: b[7],
	}, nil
}

// Encode writes e in js_event layout.
func (e Event) Encode() []byte {
	b := make([]byte, EventSize)
	binary.LittleEndian.PutUint32(b[0:4], e.Time)
	binary.LittleEndian.PutUint16(b[4:6], uint16(e.Value))
	b[6] = e.Type
	b[7] = e.Number
	return b
}

// normalize maps a raw axis value to [-1, 1].
func normalize(v int16) float64 {
	f := float64(v) / axisMax
	if f < -1 {
		return -1
	}
	return f
}
