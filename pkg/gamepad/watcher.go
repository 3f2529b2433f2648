package gamepad

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/nav/input"
)

const (
	DefaultDir     = "/dev/input"
	DefaultPattern = "js*"
)

// Opener opens a device node.
type Opener func(path string) (*Device, error)

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDir watches dir instead of /dev/input.
func WithDir(dir string) WatcherOption {
	return func(w *Watcher) { w.dir = dir }
}

// WithOpener replaces Open.
func WithOpener(open Opener) WatcherOption {
	return func(w *Watcher) { w.open = open }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if l != nil {
			w.logger = l
		}
	}
}

// Watcher tracks joystick nodes and reports hotplugged pads.
type Watcher struct {
	dir    string
	open   Opener
	logger *logging.Logger

	mu        sync.Mutex
	devices   map[string]*Device
	listeners map[string]func(input.Gamepad)
	fs        *fsnotify.Watcher
	done      chan struct{}
}

var _ input.GamepadSource = (*Watcher)(nil)

// NewWatcher creates a watcher. Call Start to begin.
func NewWatcher(opts ...WatcherOption) *Watcher {
	w := &Watcher{
		dir:       DefaultDir,
		open:      Open,
		logger:    logging.Discard(),
		devices:   make(map[string]*Device),
		listeners: make(map[string]func(input.Gamepad)),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start opens the nodes already present and watches for new ones until ctx
// is done.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDeviceOpen, "create device watcher")
	}
	if err := fsw.Add(w.dir); err != nil {
		_ = fsw.Close()
		return errors.Wrap(err, errors.ErrCodeDeviceOpen, "watch device directory").WithContext("dir", w.dir)
	}

	w.mu.Lock()
	w.fs = fsw
	w.done = make(chan struct{})
	w.mu.Unlock()

	matches, _ := filepath.Glob(filepath.Join(w.dir, DefaultPattern))
	slices.Sort(matches)
	for _, path := range matches {
		w.attach(path)
	}

	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("device watcher error", slog.String("error", err.Error()))
		case evt, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handle(evt)
		}
	}
}

func (w *Watcher) handle(evt fsnotify.Event) {
	if !matches(evt.Name) {
		return
	}
	switch {
	case evt.Has(fsnotify.Remove), evt.Has(fsnotify.Rename):
		w.detach(evt.Name)
	case evt.Has(fsnotify.Create), evt.Has(fsnotify.Chmod):
		// udev may relax permissions after the node appears.
		w.attach(evt.Name)
	}
}

func matches(path string) bool {
	ok, _ := filepath.Match(DefaultPattern, filepath.Base(path))
	return ok
}

func (w *Watcher) attach(path string) {
	w.mu.Lock()
	if _, ok := w.devices[path]; ok {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	dev, err := w.open(path)
	if err != nil {
		w.logger.Warn("gamepad unavailable",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return
	}

	w.mu.Lock()
	if _, ok := w.devices[path]; ok {
		w.mu.Unlock()
		_ = dev.Close()
		return
	}
	w.devices[path] = dev
	fns := make([]func(input.Gamepad), 0, len(w.listeners))
	for _, fn := range w.listeners {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	w.logger.Info("joystick opened", slog.String("path", path), slog.String("gamepad_id", dev.ID()), slog.String("name", dev.Name()))
	go w.run(path, dev)

	for _, fn := range fns {
		fn(dev)
	}
}

func (w *Watcher) run(path string, dev *Device) {
	if err := dev.Run(); err != nil {
		w.logger.Warn("joystick read failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
	w.mu.Lock()
	if w.devices[path] == dev {
		delete(w.devices, path)
	}
	w.mu.Unlock()
}

func (w *Watcher) detach(path string) {
	w.mu.Lock()
	dev, ok := w.devices[path]
	delete(w.devices, path)
	w.mu.Unlock()
	if ok {
		_ = dev.Close()
	}
}

// Gamepads implements input.GamepadSource.
func (w *Watcher) Gamepads() []input.Gamepad {
	w.mu.Lock()
	paths := make([]string, 0, len(w.devices))
	for p := range w.devices {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	out := make([]input.Gamepad, 0, len(paths))
	for _, p := range paths {
		if dev := w.devices[p]; dev.Connected() {
			out = append(out, dev)
		}
	}
	w.mu.Unlock()
	return out
}

// OnConnect implements input.GamepadSource.
func (w *Watcher) OnConnect(fn func(input.Gamepad)) func() {
	id := ulid.Make().String()
	w.mu.Lock()
	w.listeners[id] = fn
	w.mu.Unlock()
	return func() {
		w.mu.Lock()
		delete(w.listeners, id)
		w.mu.Unlock()
	}
}

// Close stops watching and closes every device.
func (w *Watcher) Close() error {
	w.mu.Lock()
	fsw, done := w.fs, w.done
	w.fs = nil
	devices := w.devices
	w.devices = make(map[string]*Device)
	w.mu.Unlock()

	var err error
	if fsw != nil {
		err = fsw.Close()
		<-done
	}
	for _, dev := range devices {
		_ = dev.Close()
	}
	return err
}

