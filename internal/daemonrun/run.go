package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	prom "github.com/prometheus/client_golang/prometheus"

	"battreminder/internal/alert"
	"battreminder/internal/battery"
	"battreminder/internal/config"
	"battreminder/internal/deps"
	"battreminder/internal/engine"
	"battreminder/internal/instance"
	"battreminder/internal/logging"
	"battreminder/internal/metrics"
	"battreminder/internal/plug"
	"battreminder/internal/session"
	"battreminder/internal/shutdown"
)

const configDebounce = 2 * time.Second

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel   string
	ConfigPath string
	// Dispatcher replaces the configured alert backends when set.
	Dispatcher alert.Dispatcher
	// Logger replaces the configured logger when set.
	Logger *slog.Logger
	// Coordinator is called with the shutdown coordinator before Wait, so
	// callers can trigger a shutdown without sending a signal.
	Coordinator func(*shutdown.Coordinator)
}

// Run checks the session, takes the instance lock, and runs the monitoring
// loops until a termination signal or ctx cancellation. Startup failures are
// returned before any loop starts; the only error after that is a failed
// lock release.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	logger := opts.Logger
	if logger == nil {
		var err error
		logger, err = logging.NewFromConfig(cfg, opts.LogLevel)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
	}
	logger = logger.With(logging.String(logging.FieldRunID, uuid.NewString()))

	if err := session.CheckEnv(cfg.Session.Targets); err != nil {
		return fmt.Errorf("session gate: %w", err)
	}

	lock := instance.New(cfg.Daemon.LockPath)
	if err := lock.Acquire(); err != nil {
		return fmt.Errorf("instance lock: %w", err)
	}
	logger.Info("battreminder started", logging.Args(
		logging.String("lock", lock.Path()),
		logging.Int("pid", os.Getpid()),
	)...)

	reader := battery.NewReader(cfg.Battery.CapacityPath, cfg.Battery.StatusPath)
	first, err := reader.Read()
	if err != nil {
		return abort(lock, fmt.Errorf("initial battery read: %w", err))
	}
	logger.Info("battery detected", logging.Args(
		logging.Percentage(first.Percentage),
		logging.Status(first.Status.String()),
	)...)
	logConfigSnapshot(logger, cfg, opts.ConfigPath)

	dispatcher := opts.Dispatcher
	var owned *alert.Service
	if dispatcher == nil {
		svc, err := alert.NewService(cfg, logger)
		if err != nil {
			return abort(lock, err)
		}
		dispatcher, owned = svc, svc
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var exporter *metrics.TextfileExporter
	if path := strings.TrimSpace(cfg.Metrics.TextfilePath); path != "" {
		reg := prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(reg)
		exporter, err = metrics.NewTextfileExporter(path, cfg.MetricsFlushInterval(), reg, logger)
		if err != nil {
			return abort(lock, err)
		}
		exporter.Start()
	}

	if cfg.Audio.StartingBleep {
		if err := dispatcher.PlaySound(cmdCtx); err != nil {
			logging.WarnWithContext(logger, "starting bleep failed", "sound_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check audio.path and audio.player"),
			)
		}
	}

	coord := shutdown.New(cfg.SignalCheckInterval(), lock, logger)
	coord.Register()
	if opts.Coordinator != nil {
		opts.Coordinator(coord)
	}

	loopCtx, cancel := context.WithCancel(cmdCtx)
	var wg sync.WaitGroup
	start := func(name string, run func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := run(loopCtx); err != nil {
				logging.WarnWithContext(logger, name+" stopped with error", "loop_failed",
					logging.Error(err),
				)
			}
		}()
	}

	eng := engine.New(reader, dispatcher, engine.PolicyFromConfig(cfg), recorder, logger)
	start("threshold engine", eng.Run)

	if cfg.Plug.Enabled {
		detector := plug.NewDetector(reader, dispatcher, plug.Options{
			Interval:       cfg.PlugInterval(),
			PlugInCommand:  cfg.Commands.PlugIn,
			PlugOutCommand: cfg.Commands.PlugOut,
			Recorder:       recorder,
			Logger:         logger,
		})
		start("plug detector", detector.Run)
	}

	if cfg.Daemon.WatchConfig && opts.ConfigPath != "" {
		watcher, err := NewConfigWatcher(opts.ConfigPath, configDebounce, logger)
		if err != nil {
			logging.WarnWithContext(logger, "config watcher unavailable", "config_watch_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "config edits will not be reported"),
			)
		} else {
			start("config watcher", watcher.Run)
		}
	}

	releaseErr := coord.Wait(cmdCtx)
	logger.Info("battreminder shutting down")
	cancel()
	wg.Wait()

	if owned != nil {
		if err := owned.Close(); err != nil {
			logging.WarnWithContext(logger, "notification backend close failed", "notify_close_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "none, the process is exiting"),
			)
		}
	}

	if exporter != nil {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := exporter.Stop(stopCtx); err != nil {
			logging.WarnWithContext(logger, "final metrics flush failed", "metrics_flush_failed", logging.Error(err))
		}
		stopCancel()
	}

	if releaseErr != nil {
		return fmt.Errorf("lock cleanup: %w", releaseErr)
	}
	return nil
}

func abort(lock *instance.Lock, err error) error {
	if releaseErr := lock.Release(); releaseErr != nil {
		return fmt.Errorf("%w (lock cleanup: %v)", err, releaseErr)
	}
	return err
}

func logConfigSnapshot(logger *slog.Logger, cfg *config.Config, configPath string) {
	logger.Debug("configuration snapshot", logging.Args(
		logging.String(logging.FieldEventType, "config_snapshot"),
		logging.String("config_path", configPath),
		logging.String("capacity_path", cfg.Battery.CapacityPath),
		logging.String("status_path", cfg.Battery.StatusPath),
		logging.Int("critical", cfg.Battery.Critical),
		logging.Int("low", cfg.Battery.Low),
		logging.Int("near_dead", cfg.Battery.NearDead),
		logging.Duration("normal_interval", cfg.NormalInterval()),
		logging.Duration("fast_interval", cfg.FastInterval()),
		logging.Duration("critical_interval", cfg.CriticalInterval()),
		logging.Bool("plug_enabled", cfg.Plug.Enabled),
		logging.String("notify_backend", cfg.Notifications.Backend),
		logging.Bool("ntfy_enabled", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
		logging.Bool("audio_enabled", cfg.AudioEnabled()),
		logging.Any("session_targets", cfg.Session.Targets),
	)...)

	for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
		if status.Available {
			continue
		}
		impact := "this alert action will fail"
		if status.Optional {
			impact = "alerts will be silent"
		}
		logging.WarnWithContext(logger, "external program not found", "dependency_missing",
			logging.String("dependency", status.Name),
			logging.Command(status.Command),
			logging.String("detail", status.Detail),
			logging.String(logging.FieldErrorHint, "install the program or fix the config entry"),
			logging.String(logging.FieldImpact, impact),
		)
	}
}
