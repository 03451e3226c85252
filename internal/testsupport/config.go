package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"battreminder/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose battery files, lock file, and metrics
// textfile live in a per-test temp directory. Notifications default to the
// none backend so tests never reach a real desktop.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Battery.CapacityPath = filepath.Join(base, "sys", "capacity")
	cfgVal.Battery.StatusPath = filepath.Join(base, "sys", "status")
	cfgVal.Daemon.LockPath = filepath.Join(base, "run", "battreminder.lock")
	cfgVal.Daemon.SignalCheckIntervalMS = 10
	cfgVal.Daemon.WatchConfig = false
	cfgVal.Notifications.Backend = config.BackendNone

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBattery writes capacity and status fixtures for the config's sysfs paths.
func WithBattery(capacity, status string) ConfigOption {
	return func(b *configBuilder) {
		WriteBattery(b.t, b.cfg, capacity, status)
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(filepath.Dir(cfg.Battery.CapacityPath))
}
