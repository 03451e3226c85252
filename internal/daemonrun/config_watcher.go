package daemonrun

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"battreminder/internal/config"
	"battreminder/internal/logging"
)

// ConfigWatcher reports edits to the configuration file. The daemon never
// applies a changed config while running; it validates the new file and
// tells the user to restart.
type ConfigWatcher struct {
	configPath string
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	logger     *slog.Logger
	changes    chan error

	mu    sync.Mutex
	timer *time.Timer
}

// NewConfigWatcher creates a watcher for configPath.
func NewConfigWatcher(configPath string, debounce time.Duration, logger *slog.Logger) (*ConfigWatcher, error) {
	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &ConfigWatcher{
		configPath: absPath,
		watcher:    watcher,
		debounce:   debounce,
		logger:     logging.NewComponentLogger(logger, "config-watcher"),
		changes:    make(chan error, 1),
	}, nil
}

// Changes delivers the validation result of each debounced edit. A nil
// value means the new file is valid. Results are dropped when nobody reads.
func (cw *ConfigWatcher) Changes() <-chan error {
	return cw.changes
}

// Run watches the config directory until ctx is done. Editors often replace
// the file, so the directory is watched rather than the file itself.
func (cw *ConfigWatcher) Run(ctx context.Context) error {
	defer cw.watcher.Close()
	if err := cw.watcher.Add(filepath.Dir(cw.configPath)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}
	cw.logger.Debug("watching configuration", logging.Args(logging.String("path", cw.configPath))...)

	for {
		select {
		case <-ctx.Done():
			cw.stopTimer()
			return nil
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != cw.configPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				cw.schedule()
			}
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(cw.logger, "config watcher error", "config_watch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "config edits may go unnoticed"),
			)
		}
	}
}

func (cw *ConfigWatcher) schedule() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
	cw.timer = time.AfterFunc(cw.debounce, cw.check)
}

func (cw *ConfigWatcher) stopTimer() {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if cw.timer != nil {
		cw.timer.Stop()
	}
}

func (cw *ConfigWatcher) check() {
	if _, err := os.Stat(cw.configPath); errors.Is(err, fs.ErrNotExist) {
		return
	}
	_, _, _, err := config.Load(cw.configPath)
	if err != nil {
		logging.WarnWithContext(cw.logger, "configuration changed and no longer validates", "config_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "fix the file before restarting battreminder"),
			logging.String(logging.FieldImpact, "running daemon keeps the configuration it started with"),
		)
	} else {
		logging.WarnWithContext(cw.logger, "configuration changed on disk", "config_changed",
			logging.String(logging.FieldErrorHint, "restart battreminder to apply the new configuration"),
			logging.String(logging.FieldImpact, "running daemon keeps the configuration it started with"),
		)
	}
	select {
	case cw.changes <- err:
	default:
	}
}
