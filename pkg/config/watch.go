package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/logging"
)

// reloadSettle coalesces the burst of events an editor save produces.
var reloadSettle = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes each valid result to fn
// until ctx is done. A file that fails to load or validate is logged and
// skipped, so the last good configuration stays in effect. fn runs on the
// watcher goroutine.
func Watch(ctx context.Context, path string, logger *logging.Logger, fn func(*Config)) error {
	if logger == nil {
		logger = logging.Discard()
	}
	path = filepath.Clean(expandHomeDir(path))

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigLoad, "create config watcher")
	}
	// The directory is watched because editors replace the file on save.
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return errors.Wrap(err, errors.ErrCodeConfigLoad, "watch config directory").WithContext("path", path)
	}

	go watchLoop(ctx, fsw, path, logger, fn)
	return nil
}

func watchLoop(ctx context.Context, fsw *fsnotify.Watcher, path string, logger *logging.Logger, fn func(*Config)) {
	defer fsw.Close()

	reload := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			logger.Warn("config watcher error", slog.String("error", err.Error()))
		case evt, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != path || !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(reloadSettle, func() {
					select {
					case reload <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(reloadSettle)
			}
		case <-reload:
			cfg, err := LoadFromPath(path)
			if err != nil {
				logger.Warn("config reload rejected",
					slog.String("path", path),
					slog.String("code", string(errors.GetCode(err))),
					slog.String("error", err.Error()),
				)
				continue
			}
			logger.Info("config reloaded", slog.String("path", path))
			fn(cfg)
		}
	}
}
