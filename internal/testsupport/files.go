package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"battreminder/internal/config"
)

// WriteFile writes contents to path, creating parent directories.
func WriteFile(t testing.TB, path, contents string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteBattery rewrites the capacity and status fixtures named by cfg.
// An empty value leaves that file untouched.
func WriteBattery(t testing.TB, cfg *config.Config, capacity, status string) {
	t.Helper()

	if capacity != "" {
		WriteFile(t, cfg.Battery.CapacityPath, capacity)
	}
	if status != "" {
		WriteFile(t, cfg.Battery.StatusPath, status)
	}
}
