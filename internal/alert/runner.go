package alert

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"

	"battreminder/internal/logging"
)

// Runner starts external programs and reaps them in the background.
type Runner struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewRunner returns a Runner that logs exit failures to logger.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logger}
}

// Start launches argv[0] with the remaining arguments. It returns once the
// process has started; the exit status is logged by a reaping goroutine.
// The child is not tied to ctx so a shutdown does not kill a suspend or
// poweroff command that is already underway.
func (r *Runner) Start(ctx context.Context, kind string, argv []string) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s %q: %w", kind, argv[0], err)
	}
	r.logger.Debug("process started", logging.Args(
		logging.String("kind", kind),
		logging.Command(argv[0]),
		logging.Int("pid", cmd.Process.Pid),
	)...)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := cmd.Wait(); err != nil {
			logging.WarnWithContext(r.logger, "process exited with error", "process_failed",
				logging.String("kind", kind),
				logging.Command(argv[0]),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run the command manually to inspect its output"),
			)
		}
	}()
	return nil
}

// Wait blocks until every started process has been reaped.
func (r *Runner) Wait() {
	r.wg.Wait()
}
