// Package plug detects AC adapter plug and unplug events by sampling the
// battery status twice, one interval apart.
package plug

import (
	"context"
	"log/slog"
	"time"

	"battreminder/internal/alert"
	"battreminder/internal/battery"
	"battreminder/internal/logging"
	"battreminder/internal/metrics"
)

// IdleSleep is the pause after an iteration that saw no transition.
const IdleSleep = 5 * time.Second

// Transition is the classified change between two samples.
type Transition int

const (
	None Transition = iota
	PluggedIn
	PluggedOut
)

func (t Transition) String() string {
	switch t {
	case PluggedIn:
		return "plugged_in"
	case PluggedOut:
		return "plugged_out"
	default:
		return "none"
	}
}

// Classify compares two samples. Only moves into or out of Discharging count.
func Classify(before, after battery.Status) Transition {
	switch {
	case before == battery.Discharging && after != battery.Discharging:
		return PluggedIn
	case before != battery.Discharging && after == battery.Discharging:
		return PluggedOut
	default:
		return None
	}
}

// StatusReader supplies the charging status.
type StatusReader interface {
	ReadStatus() (battery.Status, error)
}

// Detector runs the sampling loop.
type Detector struct {
	reader     StatusReader
	dispatcher alert.Dispatcher
	interval   time.Duration
	plugIn     string
	plugOut    string
	recorder   metrics.Recorder
	logger     *slog.Logger
}

// Options configures a Detector.
type Options struct {
	Interval       time.Duration
	PlugInCommand  string
	PlugOutCommand string
	Recorder       metrics.Recorder
	Logger         *slog.Logger
}

// NewDetector returns a Detector.
func NewDetector(reader StatusReader, dispatcher alert.Dispatcher, opts Options) *Detector {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Detector{
		reader:     reader,
		dispatcher: dispatcher,
		interval:   opts.Interval,
		plugIn:     opts.PlugInCommand,
		plugOut:    opts.PlugOutCommand,
		recorder:   recorder,
		logger:     logging.NewComponentLogger(opts.Logger, "plug"),
	}
}

// Run loops until ctx is done.
func (d *Detector) Run(ctx context.Context) error {
	d.logger.Info("plug detector started", logging.Args(logging.Duration("interval", d.interval))...)
	for ctx.Err() == nil {
		transition, ok := d.Step(ctx)
		if ok && transition != None {
			continue
		}
		if !sleep(ctx, IdleSleep) {
			break
		}
	}
	d.logger.Debug("plug detector stopped")
	return nil
}

// Step samples the status, waits one interval, samples again, and reacts to
// a transition. ok is false when a sample failed or ctx ended mid-wait; no
// action fires in that case.
func (d *Detector) Step(ctx context.Context) (Transition, bool) {
	before, err := d.reader.ReadStatus()
	if err != nil {
		d.readFailed(err)
		return None, false
	}
	if !sleep(ctx, d.interval) {
		return None, false
	}
	after, err := d.reader.ReadStatus()
	if err != nil {
		d.readFailed(err)
		return None, false
	}

	transition := Classify(before, after)
	if transition == None {
		return None, true
	}

	d.recorder.IncPlugTransition(transition.String())
	d.logger.Info("plug transition", logging.Args(
		logging.String("transition", transition.String()),
		logging.String("before", before.String()),
		logging.String("after", after.String()),
	)...)

	command := d.plugIn
	if transition == PluggedOut {
		command = d.plugOut
	}
	if command != "" {
		err := d.dispatcher.Execute(ctx, command)
		d.recorder.IncCommand(transition.String(), err == nil)
		if err != nil {
			logging.WarnWithContext(d.logger, "plug command failed to start", "command_failed",
				logging.Command(command),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check commands.plug_in and commands.plug_out"),
			)
		}
	}
	if err := d.dispatcher.PlaySound(ctx); err != nil {
		logging.WarnWithContext(d.logger, "plug sound failed", "sound_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check audio.path and audio.player"),
		)
	}
	return transition, true
}

func (d *Detector) readFailed(err error) {
	d.recorder.IncReadFailure("plug")
	logging.WarnWithContext(d.logger, "status read failed", "battery_read_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check battery.status_path"),
		logging.String(logging.FieldImpact, "plug iteration skipped"),
	)
}

// sleep waits for d or until ctx ends, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
