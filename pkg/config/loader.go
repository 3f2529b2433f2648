package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/odvcencio/padnav/pkg/errors"
)

const (
	dirName   = ".padnav"
	fileName  = "config.yaml"
	envFile   = "config.env"
	envPrefix = "PADNAV_"
)

// UserPath returns ~/.padnav/config.yaml, or "" without a home directory.
func UserPath() string {
	home := homeDir()
	if home == "" {
		return ""
	}
	return filepath.Join(home, dirName, fileName)
}

// ProjectPath returns ./.padnav/config.yaml.
func ProjectPath() string {
	return filepath.Join(".", dirName, fileName)
}

// Load loads configuration from default locations with proper precedence:
// defaults, then the user file, then the project file, then the environment.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if path := UserPath(); path != "" {
		if err := loadAndMerge(cfg, path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}
	if err := loadAndMerge(cfg, ProjectPath()); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	return finish(cfg)
}

// LoadFromPath loads configuration from a specific file path. The file
// must exist.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()
	if err := loadAndMerge(cfg, expandHomeDir(path)); err != nil {
		return nil, err
	}
	return finish(cfg)
}

// Parse decodes YAML over the defaults and applies the environment.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := merge(cfg, data, "<inline>"); err != nil {
		return nil, err
	}
	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg, loadConfigEnvVars())
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadAndMerge decodes a YAML file over cfg. Keys absent from the file keep
// their current values.
func loadAndMerge(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigLoad, "read config").WithContext("path", path)
	}
	return merge(cfg, data, path)
}

func merge(cfg *Config, data []byte, path string) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigParse, "parse config").WithContext("path", path)
	}
	return nil
}

// ApplyEnvOverrides applies PADNAV_* variables from the process environment.
func ApplyEnvOverrides(cfg *Config) {
	applyEnvOverrides(cfg, nil)
}

// applyEnvOverrides applies environment variable overrides. The process
// environment wins over ~/.padnav/config.env.
func applyEnvOverrides(cfg *Config, configEnv map[string]string) {
	lookup := func(key string) string {
		if v := strings.TrimSpace(os.Getenv(envPrefix + key)); v != "" {
			return v
		}
		return strings.TrimSpace(configEnv[envPrefix+key])
	}

	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := lookup("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := lookup("LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := lookup("LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}

	if v := lookup("BUS"); v != "" {
		cfg.Remote.Bus = strings.ToLower(v)
	}
	if v := lookup("NATS_URL"); v != "" {
		cfg.Remote.NATSURL = v
	}
	if v := lookup("QUEUE_GROUP"); v != "" {
		cfg.Remote.QueueGroup = v
	}
	if val, ok := envBool(lookup("HTTP_ENABLED")); ok {
		cfg.Remote.HTTP.Enabled = val
	}
	if v := lookup("HTTP_ADDR"); v != "" {
		cfg.Remote.HTTP.Addr = v
	}

	if d, ok := envDuration(lookup("INITIAL_DEBOUNCE")); ok {
		cfg.Input.InitialDebounce = d
	}
	if d, ok := envDuration(lookup("FAST_DEBOUNCE")); ok {
		cfg.Input.FastDebounce = d
	}
	if f, ok := envFloat(lookup("JOYSTICK_THRESHOLD")); ok {
		cfg.Input.JoystickThreshold = f
	}
	if val, ok := envBool(lookup("GAMEPADS")); ok {
		cfg.Input.Gamepads = val
	}
	if v := lookup("DEVICE_DIR"); v != "" {
		cfg.Input.DeviceDir = v
	}

	if f, ok := envFloat(lookup("EPSILON")); ok {
		cfg.Navigation.Epsilon = f
	}
	if val, ok := envBool(lookup("TRACING")); ok {
		cfg.Telemetry.Tracing = val
	}
	if v := lookup("TRACE_FILE"); v != "" {
		cfg.Telemetry.TraceFile = v
	}
}

// Unparseable values are ignored so a typo in the environment falls back to
// the file value.
func envBool(val string) (bool, bool) {
	switch strings.ToLower(val) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

func envDuration(val string) (time.Duration, bool) {
	if val == "" {
		return 0, false
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, false
	}
	return d, true
}

func envFloat(val string) (float64, bool) {
	if val == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func loadConfigEnvVars() map[string]string {
	home := homeDir()
	if home == "" {
		return nil
	}

	data, err := os.ReadFile(filepath.Join(home, dirName, envFile))
	if err != nil {
		return nil
	}

	vars := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		vars[key] = strings.Trim(strings.TrimSpace(value), "\"'")
	}
	return vars
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to HOME if UserHomeDir fails
		home = os.Getenv("HOME")
	}
	return strings.TrimSpace(home)
}

func expandHomeDir(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if path == "~" {
		if home := homeDir(); home != "" {
			return home
		}
		return path
	}
	if strings.HasPrefix(path, "~/") {
		if home := homeDir(); home != "" {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
