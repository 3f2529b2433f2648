package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/odvcencio/padnav/pkg/bus"
	"github.com/odvcencio/padnav/pkg/config"
	"github.com/odvcencio/padnav/pkg/gamepad"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/telemetry"
	"github.com/odvcencio/padnav/pkg/ui/backend/tcell"
)

// isTerminalFn allows tests to run without a TTY.
var isTerminalFn = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }

type runOptions struct {
	configPath string
	httpAddr   string
	bus        string
	noGamepads bool
	logLevel   string
}

func parseRunFlags(args []string) (*runOptions, error) {
	fs := flag.NewFlagSet("padnav", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := &runOptions{}
	fs.StringVar(&opts.configPath, "config", "", "config file (default ~/.padnav/config.yaml and ./.padnav/config.yaml)")
	fs.StringVar(&opts.httpAddr, "http", "", "enable the control server on this address")
	fs.StringVar(&opts.bus, "bus", "", "remote input bus: memory or nats")
	fs.BoolVar(&opts.noGamepads, "no-gamepads", false, "do not open joystick devices")
	fs.StringVar(&opts.logLevel, "log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return nil, withExitCode(err, exitUsage)
	}
	if fs.NArg() > 0 {
		return nil, withExitCode(fmt.Errorf("unexpected argument: %s", fs.Arg(0)), exitUsage)
	}
	return opts, nil
}

// loadConfig resolves the config file and applies flag overrides. The
// returned path is the file to watch, empty when none exists.
func loadConfig(opts *runOptions) (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if opts.configPath != "" {
		path = opts.configPath
		cfg, err = config.LoadFromPath(path)
	} else {
		cfg, err = config.Load()
		for _, candidate := range []string{config.ProjectPath(), config.UserPath()} {
			if candidate == "" {
				continue
			}
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
				break
			}
		}
	}
	if err != nil {
		return nil, "", withExitCode(err, exitConfig)
	}

	if opts.httpAddr != "" {
		cfg.Remote.HTTP.Enabled = true
		cfg.Remote.HTTP.Addr = opts.httpAddr
	}
	if opts.bus != "" {
		cfg.Remote.Bus = strings.ToLower(opts.bus)
	}
	if opts.noGamepads {
		cfg.Input.Gamepads = false
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", withExitCode(err, exitConfig)
	}
	return cfg, path, nil
}

// newBusFn allows tests to stub the bus without a NATS server.
var newBusFn = func(cfg *config.Config) (bus.MessageBus, error) {
	if cfg.Remote.Bus == config.BusNATS {
		c := bus.DefaultConfig()
		c.URL = cfg.Remote.NATSURL
		return bus.NewNATSBus(c)
	}
	return bus.NewMemoryBus(), nil
}

func runDemo(args []string) error {
	opts, err := parseRunFlags(args)
	if err != nil {
		return err
	}
	cfg, configPath, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if !isTerminalFn() {
		return withExitCode(errors.New("padnav needs an interactive terminal"), exitUsage)
	}

	logger, err := logging.New("padnav", cfg.Logging.LoggerOptions())
	if err != nil {
		return withExitCode(err, exitConfig)
	}
	defer logger.Close()
	for _, w := range cfg.ValidationWarnings() {
		logger.Warn("config warning", slog.String("warning", w))
	}

	shutdownTracing, err := startTracing(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTracing()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	b, err := newBusFn(cfg)
	if err != nil {
		// Remote input is optional; keyboard and gamepads still work.
		logger.Warn("remote bus unavailable", slog.String("error", err.Error()))
		b = nil
	}
	if b != nil {
		defer b.Close()
	}

	deps := hostDeps{cfg: cfg, logger: logger, bus: b}
	if cfg.Input.Gamepads {
		w := gamepad.NewWatcher(gamepad.WithDir(cfg.Input.DeviceDir), gamepad.WithLogger(logger.Component("gamepad")))
		if err := w.Start(ctx); err != nil {
			logger.Warn("gamepads unavailable", slog.String("error", err.Error()))
		} else {
			defer w.Close()
			deps.pads = w
		}
	}

	screen, err := tcell.New()
	if err != nil {
		return fmt.Errorf("open terminal: %w", err)
	}
	deps.backend = screen

	h, err := newHost(deps)
	if err != nil {
		return err
	}
	logger.Info("padnav started",
		slog.String("bus", cfg.Remote.Bus),
		slog.Bool("http", cfg.Remote.HTTP.Enabled),
		slog.Bool("gamepads", deps.pads != nil),
	)
	return h.run(ctx, configPath)
}

// startTracing installs the span exporter when tracing is enabled. The
// returned func flushes it.
func startTracing(cfg *config.Config, logger *logging.Logger) (func(), error) {
	if !cfg.Telemetry.Tracing {
		return func() {}, nil
	}

	var (
		w         io.Writer = os.Stdout
		closeFile func() error
	)
	if cfg.Telemetry.TraceFile != "" {
		f, err := os.OpenFile(cfg.Telemetry.TraceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, withExitCode(fmt.Errorf("open trace file: %w", err), exitConfig)
		}
		w, closeFile = f, f.Close
	}

	tp, err := telemetry.NewTracerProvider("padnav", w)
	if err != nil {
		if closeFile != nil {
			_ = closeFile()
		}
		return nil, err
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("trace flush failed", slog.String("error", err.Error()))
		}
		if closeFile != nil {
			_ = closeFile()
		}
	}, nil
}
