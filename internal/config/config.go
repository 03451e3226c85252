package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Battery contains sysfs sources and the percentage thresholds.
type Battery struct {
	CapacityPath string `toml:"capacity_path"`
	StatusPath   string `toml:"status_path"`
	Critical     int    `toml:"critical"`
	Low          int    `toml:"low"`
	NearDead     int    `toml:"near_dead"`
}

// Intervals contains poll intervals in seconds.
type Intervals struct {
	Normal   int `toml:"normal"`
	Fast     int `toml:"fast"`
	Critical int `toml:"critical"`
}

// Plug contains configuration for AC plug transition detection.
type Plug struct {
	Enabled  bool `toml:"enabled"`
	Interval int  `toml:"interval"`
}

// Commands contains optional user commands run on alert tiers and plug edges.
type Commands struct {
	NearDead      string `toml:"near_dead"`
	Low           string `toml:"low"`
	Critical      string `toml:"critical"`
	PlugIn        string `toml:"plug_in"`
	PlugOut       string `toml:"plug_out"`
	NearDeadDelay int    `toml:"near_dead_delay"`
}

// Audio contains alert sound configuration.
type Audio struct {
	Path          string `toml:"path"`
	Player        string `toml:"player"`
	StartingBleep bool   `toml:"starting_bleep"`
}

// Notifications contains desktop notification settings.
type Notifications struct {
	Backend        string `toml:"backend"`
	Binary         string `toml:"binary"`
	AppName        string `toml:"app_name"`
	ReplaceID      uint32 `toml:"replace_id"`
	ExpireMillis   int    `toml:"expire_ms"`
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Session contains the desktop sessions the daemon is allowed to run in.
type Session struct {
	Targets []string `toml:"targets"`
}

// Daemon contains lifecycle settings.
type Daemon struct {
	LockPath              string `toml:"lock_path"`
	SignalCheckIntervalMS int    `toml:"signal_check_interval_ms"`
	WatchConfig           bool   `toml:"watch_config"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Metrics contains the optional node_exporter textfile export.
type Metrics struct {
	TextfilePath  string `toml:"textfile_path"`
	FlushInterval int    `toml:"flush_interval"`
}

// Config encapsulates all configuration values for battreminder.
//
// Configuration sections by subsystem:
//   - Battery: sysfs paths and alert thresholds
//   - Intervals: poll cadence per alert tier
//   - Plug: AC plug transition detector
//   - Commands: user commands per tier and plug edge
//   - Audio: alert sound
//   - Notifications: desktop notification backend and optional ntfy mirror
//   - Session: desktop session allow-list
//   - Daemon: lock file and signal polling
//   - Logging: log format, level, and file
//   - Metrics: Prometheus textfile export
//
// A loaded Config is never mutated; every task reads it through the same pointer.
type Config struct {
	Battery       Battery       `toml:"battery"`
	Intervals     Intervals     `toml:"intervals"`
	Plug          Plug          `toml:"plug"`
	Commands      Commands      `toml:"commands"`
	Audio         Audio         `toml:"audio"`
	Notifications Notifications `toml:"notifications"`
	Session       Session       `toml:"session"`
	Daemon        Daemon        `toml:"daemon"`
	Logging       Logging       `toml:"logging"`
	Metrics       Metrics       `toml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. When the file is
// absent the defaults are written to the resolved location and used. The
// returned bool reports whether the file existed before the call.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	} else if err := CreateSample(resolvedPath); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		path = defaultConfigPath
	}
	expanded, err := expandPath(path)
	if err != nil {
		return "", false, err
	}
	info, err := os.Stat(expanded)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return expanded, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	if info.IsDir() {
		return "", false, fmt.Errorf("config path %s is a directory", expanded)
	}
	return expanded, true, nil
}

// NormalInterval returns the poll interval used while charging, full, or above the low threshold.
func (c *Config) NormalInterval() time.Duration {
	return time.Duration(c.Intervals.Normal) * time.Second
}

// FastInterval returns the poll interval used between the low and critical thresholds.
func (c *Config) FastInterval() time.Duration {
	return time.Duration(c.Intervals.Fast) * time.Second
}

// CriticalInterval returns the poll interval used below the critical threshold.
func (c *Config) CriticalInterval() time.Duration {
	return time.Duration(c.Intervals.Critical) * time.Second
}

// PlugInterval returns the spacing between the two status samples of the plug detector.
func (c *Config) PlugInterval() time.Duration {
	return time.Duration(c.Plug.Interval) * time.Second
}

// NearDeadDelay returns the warning period before the near-dead command runs.
func (c *Config) NearDeadDelay() time.Duration {
	return time.Duration(c.Commands.NearDeadDelay) * time.Second
}

// SignalCheckInterval returns the shutdown flag polling cadence.
func (c *Config) SignalCheckInterval() time.Duration {
	return time.Duration(c.Daemon.SignalCheckIntervalMS) * time.Millisecond
}

// MetricsFlushInterval returns how often the metrics textfile is rewritten.
func (c *Config) MetricsFlushInterval() time.Duration {
	return time.Duration(c.Metrics.FlushInterval) * time.Second
}

// AudioEnabled reports whether an alert sound file is configured.
func (c *Config) AudioEnabled() bool {
	path := strings.TrimSpace(c.Audio.Path)
	return path != "" && !strings.EqualFold(path, audioDisabled)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && pathValue[1] == '/' {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
