package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"battreminder/internal/logging"
)

// TextfileExporter periodically writes a registry to a node_exporter textfile
// collector path.
type TextfileExporter struct {
	scheduler gocron.Scheduler
	path      string
	gatherer  prom.Gatherer
	logger    *slog.Logger
}

// NewTextfileExporter schedules a flush of gatherer to path every interval.
// The scheduler is not running until Start is called.
func NewTextfileExporter(path string, interval time.Duration, gatherer prom.Gatherer, logger *slog.Logger) (*TextfileExporter, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("metrics flush interval must be positive, got %s", interval)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create metrics directory: %w", err)
		}
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	e := &TextfileExporter{
		scheduler: s,
		path:      path,
		gatherer:  gatherer,
		logger:    logging.NewComponentLogger(logger, "metrics"),
	}
	if _, err := s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(e.flushLogged),
		gocron.WithName("metrics-textfile"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create metrics flush job: %w", err)
	}
	return e, nil
}

// Start begins periodic flushing.
func (e *TextfileExporter) Start() {
	e.logger.Debug("metrics textfile export started", logging.Args(logging.String("path", e.path))...)
	e.scheduler.Start()
}

// Stop halts the scheduler and writes one final snapshot.
func (e *TextfileExporter) Stop(ctx context.Context) error {
	if err := e.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stop metrics scheduler: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return e.Flush()
}

// Flush writes the current metrics to the textfile atomically.
func (e *TextfileExporter) Flush() error {
	if err := prom.WriteToTextfile(e.path, e.gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", e.path, err)
	}
	return nil
}

func (e *TextfileExporter) flushLogged() {
	if err := e.Flush(); err != nil {
		logging.WarnWithContext(e.logger, "metrics flush failed", "metrics_flush_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check metrics.textfile_path is writable"),
			logging.String(logging.FieldImpact, "metrics textfile is stale"),
		)
	}
}
