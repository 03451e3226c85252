package engine

import (
	"fmt"
	"time"

	"battreminder/internal/battery"
	"battreminder/internal/config"
)

const (
	// SettleDelay is appended to every interval sleep.
	SettleDelay = 5 * time.Second
	// UnknownSleep is the interval used when the status cannot be determined.
	UnknownSleep = 5 * time.Second
)

// Tier classifies a reading.
type Tier int

const (
	TierNone Tier = iota
	TierLow
	TierCritical
	TierNearDead
	TierUnknown
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierCritical:
		return "critical"
	case TierNearDead:
		return "near_dead"
	case TierUnknown:
		return "unknown"
	default:
		return "none"
	}
}

// Policy holds the thresholds, intervals, and commands used by Decide.
type Policy struct {
	Critical int
	Low      int
	NearDead int

	NormalInterval   time.Duration
	FastInterval     time.Duration
	CriticalInterval time.Duration

	LowCommand      string
	CriticalCommand string
	NearDeadCommand string
	NearDeadDelay   time.Duration
}

// PolicyFromConfig extracts the engine policy from cfg.
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		Critical:         cfg.Battery.Critical,
		Low:              cfg.Battery.Low,
		NearDead:         cfg.Battery.NearDead,
		NormalInterval:   cfg.NormalInterval(),
		FastInterval:     cfg.FastInterval(),
		CriticalInterval: cfg.CriticalInterval(),
		LowCommand:       cfg.Commands.Low,
		CriticalCommand:  cfg.Commands.Critical,
		NearDeadCommand:  cfg.Commands.NearDead,
		NearDeadDelay:    cfg.NearDeadDelay(),
	}
}

// Decision is the outcome of one evaluation.
type Decision struct {
	Tier Tier
	// Notify requests the critical notification and sound.
	Notify bool
	// Command is the gated command to start, empty for none.
	Command string
	// CommandTier is the band Command belongs to; it stays TierCritical
	// when Tier escalates to TierNearDead.
	CommandTier Tier
	// NearDead requests the near-dead notice and the delayed near-dead command.
	NearDead bool
	// Sleep is the tier interval, not including SettleDelay.
	Sleep        time.Duration
	AllowExecute bool
}

// Decide evaluates reading against policy. allowExecute is the gate carried
// over from the previous cycle; the returned Decision holds its next value.
func Decide(reading battery.Reading, allowExecute bool, policy Policy) Decision {
	switch reading.Status {
	case battery.Charging, battery.Full:
		return Decision{Tier: TierNone, Sleep: policy.NormalInterval, AllowExecute: allowExecute}
	case battery.Discharging:
	default:
		return Decision{Tier: TierUnknown, Sleep: UnknownSleep, AllowExecute: allowExecute}
	}

	pct := reading.Percentage
	switch {
	case pct < policy.Critical:
		d := Decision{
			Tier:         TierCritical,
			Notify:       true,
			Sleep:        policy.CriticalInterval,
			AllowExecute: allowExecute,
		}
		if allowExecute && policy.CriticalCommand != "" {
			d.Command = policy.CriticalCommand
			d.CommandTier = TierCritical
			d.AllowExecute = false
		}
		if pct < policy.NearDead && policy.NearDeadCommand != "" {
			d.Tier = TierNearDead
			d.NearDead = true
		}
		return d
	case pct < policy.Low:
		d := Decision{Tier: TierLow, Sleep: policy.FastInterval, AllowExecute: allowExecute}
		if allowExecute && policy.LowCommand != "" {
			d.Command = policy.LowCommand
			d.CommandTier = TierLow
			d.AllowExecute = false
		}
		return d
	default:
		return Decision{Tier: TierNone, Sleep: policy.NormalInterval, AllowExecute: true}
	}
}

// CriticalMessage is the summary of the critical notification.
func CriticalMessage(pct int) string {
	return fmt.Sprintf("%d%% Battery remaining, please plug in the charger.", pct)
}

// NearDeadMessage warns that command will run after delay.
func NearDeadMessage(threshold int, command string, delay time.Duration) string {
	return fmt.Sprintf("Battery is less than %d%% The system will run %s in %d seconds from now...",
		threshold, command, int(delay.Round(time.Second)/time.Second))
}
