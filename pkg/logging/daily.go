package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DailyWriter appends to one file per day, named padnav-YYYY-MM-DD.log.
type DailyWriter struct {
	dir string
	now func() time.Time

	mu      sync.Mutex
	file    *os.File
	path    string
	lastDay string
}

var _ io.WriteCloser = (*DailyWriter)(nil)

// NewDailyWriter creates dir if needed and opens today's file.
func NewDailyWriter(dir string) (*DailyWriter, error) {
	return newDailyWriter(dir, time.Now)
}

func newDailyWriter(dir string, now func() time.Time) (*DailyWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	w := &DailyWriter{dir: dir, now: now}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.rotateLocked(); err != nil {
		return nil, err
	}
	return w, nil
}

// Write implements io.Writer. Each call is one slog record, so records never
// straddle two files.
func (w *DailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.now().Format(time.DateOnly) != w.lastDay || w.file == nil {
		if err := w.rotateLocked(); err != nil {
			return 0, err
		}
	}
	return w.file.Write(p)
}

// Path returns the current log file path.
func (w *DailyWriter) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Close closes the current file. A later Write reopens it.
func (w *DailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *DailyWriter) rotateLocked() error {
	if w.file != nil {
		_ = w.file.Close()
		w.file = nil
	}

	today := w.now().Format(time.DateOnly)
	path := filepath.Join(w.dir, "padnav-"+today+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	w.file, w.path, w.lastDay = file, path, today
	return nil
}
