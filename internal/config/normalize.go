package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeBattery(); err != nil {
		return err
	}
	c.normalizeCommands()
	if err := c.normalizeAudio(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeSession()
	if err := c.normalizeDaemon(); err != nil {
		return err
	}
	if err := c.normalizeLogging(); err != nil {
		return err
	}
	return c.normalizeMetrics()
}

func (c *Config) normalizeBattery() error {
	c.Battery.CapacityPath = strings.TrimSpace(c.Battery.CapacityPath)
	if c.Battery.CapacityPath == "" {
		c.Battery.CapacityPath = defaultCapacityPath
	}
	c.Battery.StatusPath = strings.TrimSpace(c.Battery.StatusPath)
	if c.Battery.StatusPath == "" {
		c.Battery.StatusPath = defaultStatusPath
	}
	var err error
	if c.Battery.CapacityPath, err = expandPath(c.Battery.CapacityPath); err != nil {
		return fmt.Errorf("battery.capacity_path: %w", err)
	}
	if c.Battery.StatusPath, err = expandPath(c.Battery.StatusPath); err != nil {
		return fmt.Errorf("battery.status_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeCommands() {
	c.Commands.NearDead = strings.TrimSpace(c.Commands.NearDead)
	c.Commands.Low = strings.TrimSpace(c.Commands.Low)
	c.Commands.Critical = strings.TrimSpace(c.Commands.Critical)
	c.Commands.PlugIn = strings.TrimSpace(c.Commands.PlugIn)
	c.Commands.PlugOut = strings.TrimSpace(c.Commands.PlugOut)
}

func (c *Config) normalizeAudio() error {
	c.Audio.Path = strings.TrimSpace(c.Audio.Path)
	if c.Audio.Path == "" {
		c.Audio.Path = audioDisabled
	}
	if c.AudioEnabled() {
		expanded, err := expandPath(c.Audio.Path)
		if err != nil {
			return fmt.Errorf("audio.path: %w", err)
		}
		c.Audio.Path = expanded
	}
	c.Audio.Player = strings.TrimSpace(c.Audio.Player)
	if c.Audio.Player == "" {
		c.Audio.Player = defaultAudioPlayer
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.Backend = strings.ToLower(strings.TrimSpace(c.Notifications.Backend))
	if c.Notifications.Backend == "" {
		c.Notifications.Backend = defaultNotifyBackend
	}
	c.Notifications.Binary = strings.TrimSpace(c.Notifications.Binary)
	if c.Notifications.Binary == "" {
		c.Notifications.Binary = defaultNotifyBinary
	}
	c.Notifications.AppName = strings.TrimSpace(c.Notifications.AppName)
	if c.Notifications.AppName == "" {
		c.Notifications.AppName = defaultNotifyAppName
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
}

func (c *Config) normalizeSession() {
	targets := make([]string, 0, len(c.Session.Targets))
	for _, target := range c.Session.Targets {
		if trimmed := strings.TrimSpace(target); trimmed != "" {
			targets = append(targets, trimmed)
		}
	}
	c.Session.Targets = targets
}

func (c *Config) normalizeDaemon() error {
	c.Daemon.LockPath = strings.TrimSpace(c.Daemon.LockPath)
	if c.Daemon.LockPath == "" {
		c.Daemon.LockPath = defaultLockPath
	}
	var err error
	if c.Daemon.LockPath, err = expandPath(c.Daemon.LockPath); err != nil {
		return fmt.Errorf("daemon.lock_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	c.Logging.File = strings.TrimSpace(c.Logging.File)
	if c.Logging.File != "" {
		var err error
		if c.Logging.File, err = expandPath(c.Logging.File); err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMetrics() error {
	c.Metrics.TextfilePath = strings.TrimSpace(c.Metrics.TextfilePath)
	if c.Metrics.TextfilePath == "" {
		return nil
	}
	var err error
	if c.Metrics.TextfilePath, err = expandPath(c.Metrics.TextfilePath); err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	return nil
}
