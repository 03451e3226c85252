// Package shutdown turns termination signals into a single, orderly lock
// release.
//
// The signal relay only sets an atomic flag. The main goroutine polls that
// flag on a fixed cadence, so cleanup never runs inside signal delivery and
// runs exactly once no matter how many signals arrive.
package shutdown

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"

	"battreminder/internal/logging"
)

// Signals are the termination signals the coordinator subscribes to.
var Signals = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGQUIT}

// Releaser is the resource released on shutdown.
type Releaser interface {
	Release() error
}

// Coordinator owns the shutdown flag.
type Coordinator struct {
	interval time.Duration
	releaser Releaser
	logger   *slog.Logger

	flag     atomic.Bool
	signals  chan os.Signal
	stopOnce sync.Once
	done     chan struct{}

	releaseOnce sync.Once
	releaseErr  error
}

// New returns a Coordinator that polls every interval.
func New(interval time.Duration, releaser Releaser, logger *slog.Logger) *Coordinator {
	if interval <= 0 {
		interval = time.Second
	}
	return &Coordinator{
		interval: interval,
		releaser: releaser,
		logger:   logging.NewComponentLogger(logger, "shutdown"),
		done:     make(chan struct{}),
	}
}

// Register subscribes to Signals. Each delivered signal sets the flag.
func (c *Coordinator) Register() {
	c.signals = make(chan os.Signal, 1)
	signal.Notify(c.signals, Signals...)
	go func() {
		for {
			select {
			case sig := <-c.signals:
				if c.flag.CompareAndSwap(false, true) {
					c.logger.Info("termination signal received", logging.Args(logging.String("signal", sig.String()))...)
				}
			case <-c.done:
				return
			}
		}
	}()
}

// Trigger sets the flag as if a signal had arrived.
func (c *Coordinator) Trigger() {
	c.flag.Store(true)
}

// Requested reports whether shutdown has been requested.
func (c *Coordinator) Requested() bool {
	return c.flag.Load()
}

// Wait blocks until the flag is set or ctx ends, releases the lock once, and
// returns the release error. A ctx cancellation also releases the lock.
func (c *Coordinator) Wait(ctx context.Context) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for !c.flag.Load() {
		select {
		case <-ctx.Done():
			c.logger.Debug("context ended before a termination signal")
			return c.release()
		case <-ticker.C:
		}
	}
	return c.release()
}

func (c *Coordinator) release() error {
	c.releaseOnce.Do(func() {
		c.stop()
		if c.releaser == nil {
			return
		}
		c.releaseErr = c.releaser.Release()
		if c.releaseErr != nil {
			c.logger.Error("lock cleanup failed", logging.Args(
				logging.String(logging.FieldEventType, "lock_release_failed"),
				logging.Error(c.releaseErr),
				logging.String(logging.FieldErrorHint, "remove the lock file manually before the next start"),
			)...)
			return
		}
		c.logger.Info("lock released")
	})
	return c.releaseErr
}

func (c *Coordinator) stop() {
	c.stopOnce.Do(func() {
		if c.signals != nil {
			signal.Stop(c.signals)
		}
		close(c.done)
	})
}
