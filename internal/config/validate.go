package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateThresholds(); err != nil {
		return err
	}
	if err := c.validateIntervals(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if err := c.validateSession(); err != nil {
		return err
	}
	return c.validateLogging()
}

// validateThresholds rejects inverted orderings instead of letting the
// critical band shadow the low band.
func (c *Config) validateThresholds() error {
	b := c.Battery
	if b.Low < 0 || b.Low > 100 {
		return fmt.Errorf("battery.low must be between 0 and 100, got %d", b.Low)
	}
	if b.Critical < 0 || b.Critical > 100 {
		return fmt.Errorf("battery.critical must be between 0 and 100, got %d", b.Critical)
	}
	if b.Critical >= b.Low {
		return fmt.Errorf("battery.critical (%d) must be less than battery.low (%d)", b.Critical, b.Low)
	}
	if b.NearDead < 0 {
		return fmt.Errorf("battery.near_dead must be >= 0, got %d", b.NearDead)
	}
	if b.NearDead > b.Critical {
		return fmt.Errorf("battery.near_dead (%d) must not exceed battery.critical (%d)", b.NearDead, b.Critical)
	}
	return nil
}

func (c *Config) validateIntervals() error {
	if err := ensurePositiveMap(map[string]int{
		"intervals.normal":                c.Intervals.Normal,
		"intervals.fast":                  c.Intervals.Fast,
		"intervals.critical":              c.Intervals.Critical,
		"daemon.signal_check_interval_ms": c.Daemon.SignalCheckIntervalMS,
	}); err != nil {
		return err
	}
	if c.Plug.Enabled && c.Plug.Interval <= 0 {
		return errors.New("plug.interval must be positive when plug.enabled is true")
	}
	if c.Commands.NearDeadDelay < 0 {
		return errors.New("commands.near_dead_delay must be >= 0")
	}
	if c.Metrics.TextfilePath != "" && c.Metrics.FlushInterval <= 0 {
		return errors.New("metrics.flush_interval must be positive when metrics.textfile_path is set")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	switch c.Notifications.Backend {
	case BackendDBus, BackendExec, BackendNone:
	default:
		return fmt.Errorf("notifications.backend: unsupported value %q (want %s, %s, or %s)",
			c.Notifications.Backend, BackendDBus, BackendExec, BackendNone)
	}
	if c.Notifications.ExpireMillis < -1 {
		return errors.New("notifications.expire_ms must be >= -1")
	}
	if c.Notifications.NtfyTopic != "" && c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive when notifications.ntfy_topic is set")
	}
	return nil
}

func (c *Config) validateSession() error {
	if len(c.Session.Targets) == 0 {
		return fmt.Errorf("session.targets must include at least one session name (use %q to match all)", SessionAny)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	var invalid []string
	for key, value := range values {
		if value <= 0 {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	slices.Sort(invalid)
	return fmt.Errorf("%s must be positive", strings.Join(invalid, ", "))
}
