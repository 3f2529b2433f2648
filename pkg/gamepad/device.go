package gamepad

import (
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/padnav/pkg/errors"
)

// Device is one open joystick. State is updated by Run on its own goroutine
// and read by the poller on the UI loop.
type Device struct {
	id   string
	name string
	path string
	r    io.ReadCloser

	mu      sync.RWMutex
	axes    []float64
	buttons []bool

	connected atomic.Bool
	closeOnce sync.Once
}

// NewDevice wraps an event stream for the controller model name. Each
// device gets a fresh id. Open is the usual constructor.
func NewDevice(name, path string, r io.ReadCloser) *Device {
	d := &Device{id: ulid.Make().String(), name: name, path: path, r: r}
	d.connected.Store(true)
	return d
}

// Open opens a joystick node such as /dev/input/js0. The controller name
// comes from sysfs and falls back to the node name.
func Open(path string) (*Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDeviceOpen, "open joystick").WithContext("path", path)
	}
	return NewDevice(deviceName(path), path, f), nil
}

func deviceName(path string) string {
	node := filepath.Base(path)
	raw, err := os.ReadFile(filepath.Join("/sys/class/input", node, "device", "name"))
	if err != nil {
		return node
	}
	if name := strings.TrimSpace(string(raw)); name != "" {
		return name
	}
	return node
}

// ID implements input.Gamepad.
func (d *Device) ID() string { return d.id }

// Name implements input.Gamepad.
func (d *Device) Name() string { return d.name }

// Path returns the device node.
func (d *Device) Path() string { return d.path }

// Connected implements input.Gamepad.
func (d *Device) Connected() bool { return d.connected.Load() }

// Axis implements input.Gamepad.
func (d *Device) Axis(index int) float64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if index < 0 || index >= len(d.axes) {
		return 0
	}
	return d.axes[index]
}

// Button implements input.Gamepad.
func (d *Device) Button(index int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if index < 0 || index >= len(d.buttons) {
		return false
	}
	return d.buttons[index]
}

// Run reads events until the stream ends, then marks the device
// disconnected. A clean end of stream or Close returns nil.
func (d *Device) Run() error {
	defer d.Close()
	buf := make([]byte, EventSize)
	for {
		if _, err := io.ReadFull(d.r, buf); err != nil {
			if stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed) || !d.Connected() {
				return nil
			}
			return errors.Wrap(err, errors.ErrCodeDeviceRead, "read joystick").WithContext("path", d.path)
		}
		ev, err := Decode(buf)
		if err != nil {
			return err
		}
		d.apply(ev)
	}
}

func (d *Device) apply(ev Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := int(ev.Number)
	switch ev.Kind() {
	case TypeButton:
		if n >= len(d.buttons) {
			d.buttons = append(d.buttons, make([]bool, n+1-len(d.buttons))...)
		}
		d.buttons[n] = ev.Value != 0
	case TypeAxis:
		if n >= len(d.axes) {
			d.axes = append(d.axes, make([]float64, n+1-len(d.axes))...)
		}
		d.axes[n] = normalize(ev.Value)
	}
}

// Close marks the device disconnected and closes the stream.
func (d *Device) Close() error {
	var err error
	d.closeOnce.Do(func() {
		d.connected.Store(false)
		err = d.r.Close()
	})
	return err
}
