package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"battreminder/internal/alert"
	"battreminder/internal/battery"
	"battreminder/internal/logging"
	"battreminder/internal/metrics"
)

// Reader supplies battery readings.
type Reader interface {
	Read() (battery.Reading, error)
}

// Engine runs the threshold loop. The gate is owned by the goroutine that
// calls Step or Run; Engine is not safe for concurrent Step calls.
type Engine struct {
	reader     Reader
	dispatcher alert.Dispatcher
	policy     Policy
	recorder   metrics.Recorder
	logger     *slog.Logger

	allowExecute bool
	pending      sync.WaitGroup
}

// New returns an Engine with the gate open.
func New(reader Reader, dispatcher alert.Dispatcher, policy Policy, recorder metrics.Recorder, logger *slog.Logger) *Engine {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Engine{
		reader:       reader,
		dispatcher:   dispatcher,
		policy:       policy,
		recorder:     recorder,
		logger:       logging.NewComponentLogger(logger, "engine"),
		allowExecute: true,
	}
}

// AllowExecute reports the current gate.
func (e *Engine) AllowExecute() bool {
	return e.allowExecute
}

// SetAllowExecute overrides the gate.
func (e *Engine) SetAllowExecute(allow bool) {
	e.allowExecute = allow
}

// Run polls until ctx is done, then waits for scheduled near-dead commands
// to observe the cancellation.
func (e *Engine) Run(ctx context.Context) error {
	defer e.pending.Wait()
	e.logger.Info("threshold engine started", logging.Args(
		logging.Int("critical", e.policy.Critical),
		logging.Int("low", e.policy.Low),
		logging.Int("near_dead", e.policy.NearDead),
	)...)
	for {
		wait := e.Step(ctx)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			e.logger.Debug("threshold engine stopped")
			return nil
		case <-timer.C:
		}
	}
}

// Step performs one cycle and returns how long to sleep before the next.
// Dispatch failures are logged and never stop the loop.
func (e *Engine) Step(ctx context.Context) time.Duration {
	reading, err := e.reader.Read()
	if err != nil {
		e.recorder.IncReadFailure("engine")
		logging.WarnWithContext(e.logger, "battery read failed", "battery_read_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check battery.capacity_path and battery.status_path"),
			logging.String(logging.FieldImpact, "treated as unknown status"),
		)
		reading.Status = battery.Unknown
	} else {
		e.recorder.ObserveReading(reading.Percentage, reading.Status.String())
	}

	decision := Decide(reading, e.allowExecute, e.policy)
	e.logger.Debug("battery evaluated", logging.Args(
		logging.Percentage(reading.Percentage),
		logging.Status(reading.Status.String()),
		logging.Tier(decision.Tier.String()),
		logging.Bool(logging.FieldAllowExecute, decision.AllowExecute),
		logging.Duration(logging.FieldSleep, decision.Sleep+SettleDelay),
	)...)

	if decision.Tier == TierUnknown {
		e.logger.Info("battery status unknown", logging.Args(
			logging.Status(reading.Status.String()),
		)...)
	}

	if decision.Notify {
		e.alertCritical(ctx, reading.Percentage)
	}
	if decision.NearDead {
		e.alertNearDead(ctx)
	}
	if decision.Command != "" {
		e.execute(ctx, decision.CommandTier, decision.Command)
	}

	e.allowExecute = decision.AllowExecute
	return decision.Sleep + SettleDelay
}

func (e *Engine) alertCritical(ctx context.Context, pct int) {
	e.recorder.IncAlert(TierCritical.String())
	note := alert.Notification{Summary: CriticalMessage(pct), Progress: pct}
	if err := e.dispatcher.Notify(ctx, note); err != nil {
		logging.WarnWithContext(e.logger, "critical notification failed", "notify_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.backend and the desktop notification daemon"),
		)
	}
	if err := e.dispatcher.PlaySound(ctx); err != nil {
		logging.WarnWithContext(e.logger, "alert sound failed", "sound_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check audio.path and audio.player"),
		)
	}
}

func (e *Engine) alertNearDead(ctx context.Context) {
	e.recorder.IncAlert(TierNearDead.String())
	command := e.policy.NearDeadCommand
	delay := e.policy.NearDeadDelay
	note := alert.Notification{
		Summary:  NearDeadMessage(e.policy.NearDead, command, delay),
		Progress: alert.NoProgress,
	}
	if err := e.dispatcher.Notify(ctx, note); err != nil {
		logging.WarnWithContext(e.logger, "near-dead notification failed", "notify_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check notifications.backend and the desktop notification daemon"),
			logging.String(logging.FieldImpact, "near-dead command still scheduled"),
		)
	}

	if delay <= 0 {
		e.execute(ctx, TierNearDead, command)
		return
	}
	e.logger.Info("near-dead command scheduled", logging.Args(
		logging.Command(command),
		logging.Duration("delay", delay),
	)...)
	e.pending.Add(1)
	go func() {
		defer e.pending.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		e.execute(ctx, TierNearDead, command)
	}()
}

func (e *Engine) execute(ctx context.Context, tier Tier, command string) {
	err := e.dispatcher.Execute(ctx, command)
	e.recorder.IncCommand(tier.String(), err == nil)
	if err != nil {
		logging.WarnWithContext(e.logger, "command failed to start", "command_failed",
			logging.Tier(tier.String()),
			logging.Command(command),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the commands section of the config"),
			logging.String(logging.FieldImpact, "command skipped for this cycle"),
		)
		return
	}
	e.logger.Info("command started", logging.Args(
		logging.Tier(tier.String()),
		logging.Command(command),
	)...)
}
