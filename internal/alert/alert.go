package alert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"battreminder/internal/config"
	"battreminder/internal/logging"
)

// ErrEmptyCommand is returned when Execute is asked to run a blank command line.
var ErrEmptyCommand = errors.New("empty command")

// NoProgress marks a notification without a progress hint.
const NoProgress = -1

// Notification is one desktop alert.
type Notification struct {
	Summary string
	Body    string
	// Progress is rendered by notification daemons as a bar; NoProgress omits it.
	Progress int
}

// Dispatcher is the alert surface used by the monitoring loops.
type Dispatcher interface {
	Notify(ctx context.Context, n Notification) error
	PlaySound(ctx context.Context) error
	Execute(ctx context.Context, command string) error
}

// Notifier shows a Notification on one transport.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Service is the production Dispatcher.
type Service struct {
	notifier Notifier
	mirror   Notifier
	runner   *Runner
	player   string
	sound    string
	logger   *slog.Logger
}

// NewService builds a Service from configuration, selecting the notification
// backend and the optional ntfy mirror.
func NewService(cfg *config.Config, logger *slog.Logger) (*Service, error) {
	logger = logging.NewComponentLogger(logger, "alert")
	notifier, err := newNotifier(cfg)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		notifier: notifier,
		mirror:   newNtfyMirror(cfg),
		runner:   NewRunner(logger),
		player:   strings.TrimSpace(cfg.Audio.Player),
		logger:   logger,
	}
	if cfg.AudioEnabled() {
		svc.sound = cfg.Audio.Path
	}
	return svc, nil
}

// NewServiceWith assembles a Service from explicit parts.
func NewServiceWith(notifier, mirror Notifier, runner *Runner, player, sound string, logger *slog.Logger) *Service {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if runner == nil {
		runner = NewRunner(logger)
	}
	return &Service{
		notifier: notifier,
		mirror:   mirror,
		runner:   runner,
		player:   player,
		sound:    sound,
		logger:   logging.NewComponentLogger(logger, "alert"),
	}
}

func newNotifier(cfg *config.Config) (Notifier, error) {
	n := cfg.Notifications
	switch n.Backend {
	case config.BackendDBus:
		return NewDBusNotifier(n.AppName, n.ReplaceID, int32(n.ExpireMillis)), nil
	case config.BackendExec:
		return NewExecNotifier(n.Binary, n.AppName, n.ReplaceID, n.ExpireMillis), nil
	case config.BackendNone:
		return noopNotifier{}, nil
	default:
		return nil, fmt.Errorf("notifications.backend: unsupported value %q", n.Backend)
	}
}

// Notify shows n on the desktop backend and, when configured, mirrors it to
// ntfy. A mirror failure is logged and does not fail the call.
func (s *Service) Notify(ctx context.Context, n Notification) error {
	err := s.notifier.Notify(ctx, n)
	if s.mirror != nil {
		if mirrorErr := s.mirror.Notify(ctx, n); mirrorErr != nil {
			logging.WarnWithContext(s.logger, "ntfy mirror failed", "ntfy_failed",
				logging.Error(mirrorErr),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic"),
				logging.String(logging.FieldImpact, "phone did not receive the alert"),
			)
		}
	}
	if err != nil {
		return fmt.Errorf("desktop notification: %w", err)
	}
	return nil
}

// PlaySound starts the configured player on the alert sound. It is a no-op
// when audio is disabled.
func (s *Service) PlaySound(ctx context.Context) error {
	if s.sound == "" {
		return nil
	}
	if s.player == "" {
		return fmt.Errorf("audio.player is empty")
	}
	return s.runner.Start(ctx, "sound", append(strings.Fields(s.player), s.sound))
}

// Execute starts command without waiting for it to finish.
func (s *Service) Execute(ctx context.Context, command string) error {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ErrEmptyCommand
	}
	return s.runner.Start(ctx, "command", fields)
}

// TestNotification sends a sample alert through every configured transport.
func (s *Service) TestNotification(ctx context.Context) error {
	return s.Notify(ctx, Notification{
		Summary:  "batt-reminder test",
		Body:     "Notification system test",
		Progress: NoProgress,
	})
}

// Close releases backend resources such as the session bus connection.
func (s *Service) Close() error {
	if c, ok := s.notifier.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, Notification) error { return nil }
