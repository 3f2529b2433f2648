// Package logging provides the structured logger shared by padnav components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Format selects the slog handler used for output.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options configures a Logger.
type Options struct {
	Level  string // debug, info, warn, error
	Format Format
	// File is a path to append log lines to. Empty means Writer (or stderr).
	File string
	// Dir writes one file per day under the directory and wins over File.
	Dir    string
	Writer io.Writer
}

// Logger is a structured logger for padnav components.
type Logger struct {
	*slog.Logger

	mu     sync.Mutex
	closer io.Closer
}

// New creates a logger tagged with the given component.
func New(component string, opts Options) (*Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer
	)
	switch {
	case opts.Dir != "":
		dw, err := NewDailyWriter(opts.Dir)
		if err != nil {
			return nil, err
		}
		w, closer = dw, dw
	case opts.File != "":
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	case opts.Writer != nil:
		w = opts.Writer
	}

	l := NewWithWriter(w, component, level, opts.Format)
	l.closer = closer
	return l, nil
}

// NewWithWriter creates a logger writing to w.
func NewWithWriter(w io.Writer, component string, level slog.Level, format Format) *Logger {
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if format == FormatText {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}

	logger := slog.New(handler).With(
		slog.String("component", component),
		slog.String("system", "padnav"),
	)
	return &Logger{Logger: logger}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 4}))}
}

// ParseLevel maps a level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// Component returns a child logger for a sub-component.
func (l *Logger) Component(name string) *Logger {
	if l == nil {
		return Discard()
	}
	return &Logger{Logger: l.Logger.With(slog.String("subcomponent", name))}
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	return err
}

// DirectionFired logs a direction leaving the input normalizer.
func (l *Logger) DirectionFired(direction, source string, handled bool) {
	l.Debug("direction fired",
		slog.String("direction", direction),
		slog.String("source", source),
		slog.Bool("handled", handled),
	)
}

// SelectionChanged logs a committed selection.
func (l *Logger) SelectionChanged(from, to string) {
	l.Debug("selection changed",
		slog.String("from", from),
		slog.String("to", to),
	)
}

// SearchMiss logs a directional move with no candidate.
func (l *Logger) SearchMiss(direction string) {
	l.Debug("no candidate",
		slog.String("direction", direction),
	)
}

// TrapPushed logs a new focus trap.
func (l *Logger) TrapPushed(depth int) {
	l.Debug("focus trapped",
		slog.Int("depth", depth),
	)
}

// UnbalancedRelease logs a release with no matching trap.
func (l *Logger) UnbalancedRelease() {
	l.Warn("releaseFocus called with no active trap; resetting to default root")
}

// GamepadConnected logs a new pad.
func (l *Logger) GamepadConnected(id, name, mapping string) {
	l.Info("gamepad connected",
		slog.String("gamepad_id", id),
		slog.String("gamepad_name", name),
		slog.String("mapping", mapping),
	)
}

// GamepadDisconnected logs a removed pad.
func (l *Logger) GamepadDisconnected(id string) {
	l.Info("gamepad disconnected",
		slog.String("gamepad_id", id),
	)
}
