// Package config loads padnav settings from YAML files and PADNAV_*
// environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/odvcencio/padnav/pkg/errors"
	"github.com/odvcencio/padnav/pkg/logging"
	"github.com/odvcencio/padnav/pkg/nav"
	"github.com/odvcencio/padnav/pkg/nav/input"
)

// Bus transports for remote input.
const (
	BusMemory = "memory"
	BusNATS   = "nats"
)

// Default configuration values exported for documentation and validation
const (
	DefaultHTTPAddr      = "127.0.0.1:7788"
	DefaultRateLimit     = 20.0
	DefaultBurst         = 5
	DefaultQueueGroup    = "padnav"
	DefaultLogLevel      = "info"
	DefaultDeviceDir     = "/dev/input"
	DefaultFrameInterval = input.DefaultFrameInterval
)

// Config represents the complete padnav configuration
type Config struct {
	Navigation NavigationConfig `yaml:"navigation"`
	Input      InputConfig      `yaml:"input"`
	Remote     RemoteConfig     `yaml:"remote"`
	Logging    LoggingConfig    `yaml:"logging"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
}

// NavigationConfig tunes the search strategies.
type NavigationConfig struct {
	// Epsilon absorbs rounding when checking a candidate lies beyond the
	// reference edge.
	Epsilon float64       `yaml:"epsilon"`
	Raycast RaycastConfig `yaml:"raycast"`
}

// RaycastConfig mirrors nav.RaycastConfig. Units are terminal cells.
type RaycastConfig struct {
	Step       float64 `yaml:"step"`
	Floor      float64 `yaml:"floor"`
	MaxSamples int     `yaml:"max_samples"`
}

// InputConfig holds repeat timings and device settings. Timings are the
// only part applied on hot reload.
type InputConfig struct {
	InitialDebounce   time.Duration `yaml:"initial_debounce"`
	FastDebounce      time.Duration `yaml:"fast_debounce"`
	JoystickThreshold float64       `yaml:"joystick_threshold"`
	FrameInterval     time.Duration `yaml:"frame_interval"`
	Gamepads          bool          `yaml:"gamepads"`
	DeviceDir         string        `yaml:"device_dir"`
}

// RemoteConfig controls the bus source and HTTP control surface.
type RemoteConfig struct {
	Bus        string     `yaml:"bus"`
	NATSURL    string     `yaml:"nats_url"`
	QueueGroup string     `yaml:"queue_group"`
	HTTP       HTTPConfig `yaml:"http"`
}

// HTTPConfig controls the debug server.
type HTTPConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`
}

// LoggingConfig selects log level, format and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File keeps log output off the terminal. Empty writes to stderr.
	File string `yaml:"file"`
	// Dir, when set, writes one log file per day under it instead of File.
	Dir string `yaml:"dir"`
}

// TelemetryConfig toggles span export.
type TelemetryConfig struct {
	Tracing   bool   `yaml:"tracing"`
	TraceFile string `yaml:"trace_file"`
}

func defaultNATSURL() string {
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return "nats://nats:4222"
	}
	return "nats://127.0.0.1:4222"
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, ".padnav", "logs", "padnav.log")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Navigation: NavigationConfig{
			Epsilon: nav.DefaultEpsilon,
			Raycast: RaycastConfig{Step: 0.5, Floor: 4, MaxSamples: 16},
		},
		Input: InputConfig{
			InitialDebounce:   input.DefaultInitialDebounce,
			FastDebounce:      input.DefaultFastDebounce,
			JoystickThreshold: input.DefaultJoystickThreshold,
			FrameInterval:     DefaultFrameInterval,
			Gamepads:          true,
			DeviceDir:         DefaultDeviceDir,
		},
		Remote: RemoteConfig{
			Bus:        BusMemory,
			NATSURL:    defaultNATSURL(),
			QueueGroup: DefaultQueueGroup,
			HTTP: HTTPConfig{
				Enabled:   false,
				Addr:      DefaultHTTPAddr,
				RateLimit: DefaultRateLimit,
				Burst:     DefaultBurst,
			},
		},
		Logging: LoggingConfig{
			Level:  DefaultLogLevel,
			Format: string(logging.FormatJSON),
			File:   defaultLogFile(),
		},
	}
}

// RaycastOptions converts the raycast settings for the controller.
func (c NavigationConfig) RaycastOptions() nav.RaycastConfig {
	return nav.RaycastConfig{
		Step:       c.Raycast.Step,
		Floor:      c.Raycast.Floor,
		MaxSamples: c.Raycast.MaxSamples,
	}
}

// Timing converts the input settings for the input service.
func (c InputConfig) Timing() input.Timing {
	return input.Timing{
		InitialDebounce:   c.InitialDebounce,
		FastDebounce:      c.FastDebounce,
		JoystickThreshold: c.JoystickThreshold,
	}
}

// Limit returns the injection rate limit.
func (c HTTPConfig) Limit() rate.Limit { return rate.Limit(c.RateLimit) }

// LoggerOptions converts the logging settings.
func (c LoggingConfig) LoggerOptions() logging.Options {
	return logging.Options{
		Level:  c.Level,
		Format: logging.Format(c.Format),
		File:   expandHomeDir(c.File),
		Dir:    expandHomeDir(c.Dir),
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return errors.Newf(errors.ErrCodeConfigInvalid, format, args...).WithContext("field", field)
	}

	if c.Navigation.Epsilon < 0 {
		return invalid("navigation.epsilon", "epsilon must be non-negative, got %g", c.Navigation.Epsilon)
	}
	rc := c.Navigation.Raycast
	if rc.Step <= 0 || rc.Floor <= 0 || rc.MaxSamples <= 0 {
		return invalid("navigation.raycast", "raycast step, floor and max_samples must be positive")
	}

	in := c.Input
	if in.InitialDebounce <= 0 || in.FastDebounce <= 0 {
		return invalid("input", "debounce durations must be positive")
	}
	if in.FastDebounce > in.InitialDebounce {
		return invalid("input.fast_debounce", "fast debounce %s exceeds initial debounce %s", in.FastDebounce, in.InitialDebounce)
	}
	if in.JoystickThreshold <= 0 || in.JoystickThreshold >= 1 {
		return invalid("input.joystick_threshold", "joystick threshold must be in (0, 1), got %g", in.JoystickThreshold)
	}
	if in.FrameInterval <= 0 {
		return invalid("input.frame_interval", "frame interval must be positive")
	}
	if in.Gamepads && strings.TrimSpace(in.DeviceDir) == "" {
		return invalid("input.device_dir", "device_dir is required when gamepads are enabled")
	}

	switch c.Remote.Bus {
	case BusMemory:
	case BusNATS:
		if strings.TrimSpace(c.Remote.NATSURL) == "" {
			return invalid("remote.nats_url", "nats_url is required for the nats bus")
		}
	default:
		return invalid("remote.bus", "invalid bus: %s (valid: memory, nats)", c.Remote.Bus)
	}
	if h := c.Remote.HTTP; h.Enabled {
		if _, _, err := net.SplitHostPort(h.Addr); err != nil {
			return invalid("remote.http.addr", "invalid http addr %q: %v", h.Addr, err)
		}
		if h.RateLimit <= 0 || h.Burst < 1 {
			return invalid("remote.http", "rate_limit must be positive and burst at least 1")
		}
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return invalid("logging.level", "%v", err)
	}
	switch logging.Format(c.Logging.Format) {
	case logging.FormatJSON, logging.FormatText:
	default:
		return invalid("logging.format", "invalid log format: %s (valid: json, text)", c.Logging.Format)
	}
	return nil
}

// ValidationWarnings returns non-fatal configuration concerns.
func (c *Config) ValidationWarnings() []string {
	var warnings []string
	if c.Remote.HTTP.Enabled && !isLoopbackBindAddress(c.Remote.HTTP.Addr) {
		warnings = append(warnings, fmt.Sprintf("remote.http.addr %s is reachable off this host and has no authentication", c.Remote.HTTP.Addr))
	}
	if c.Telemetry.Tracing && c.Telemetry.TraceFile == "" && c.Logging.File == "" && c.Logging.Dir == "" {
		warnings = append(warnings, "tracing to stdout will draw over the terminal UI; set telemetry.trace_file")
	}
	return warnings
}

func isLoopbackBindAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return false
	}
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}
	host = strings.Trim(host, "[]")
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
