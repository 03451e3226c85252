package engine_test

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"battreminder/internal/battery"
	"battreminder/internal/engine"
	"battreminder/internal/logging"
	"battreminder/internal/metrics"
	"battreminder/internal/testsupport"
)

func testPolicy() engine.Policy {
	return engine.Policy{
		Critical:         30,
		Low:              45,
		NearDead:         10,
		NormalInterval:   300 * time.Second,
		FastInterval:     5 * time.Second,
		CriticalInterval: 120 * time.Second,
	}
}

func newEngine(t *testing.T, capacity, status string, policy engine.Policy) (*engine.Engine, *testsupport.RecordingDispatcher) {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithBattery(capacity, status))
	reader := battery.NewReader(cfg.Battery.CapacityPath, cfg.Battery.StatusPath)
	dispatcher := &testsupport.RecordingDispatcher{}
	return engine.New(reader, dispatcher, policy, metrics.NoopRecorder{}, logging.NewNop()), dispatcher
}

func TestDecideTable(t *testing.T) {
	policy := testPolicy()
	policy.LowCommand = "low-cmd"
	policy.CriticalCommand = "crit-cmd"

	tests := []struct {
		name      string
		reading   battery.Reading
		allow     bool
		wantTier  engine.Tier
		wantCmd   string
		wantAllow bool
		wantSleep time.Duration
		notify    bool
	}{
		{"charging keeps gate closed", battery.Reading{Percentage: 10, Status: battery.Charging}, false, engine.TierNone, "", false, policy.NormalInterval, false},
		{"full keeps gate open", battery.Reading{Percentage: 100, Status: battery.Full}, true, engine.TierNone, "", true, policy.NormalInterval, false},
		{"unknown", battery.Reading{Percentage: 5, Status: battery.Unknown}, true, engine.TierUnknown, "", true, engine.UnknownSleep, false},
		{"recovery reopens gate", battery.Reading{Percentage: 80, Status: battery.Discharging}, false, engine.TierNone, "", true, policy.NormalInterval, false},
		{"exactly low is recovery", battery.Reading{Percentage: 45, Status: battery.Discharging}, false, engine.TierNone, "", true, policy.NormalInterval, false},
		{"low band runs command", battery.Reading{Percentage: 40, Status: battery.Discharging}, true, engine.TierLow, "low-cmd", false, policy.FastInterval, false},
		{"low band gate closed", battery.Reading{Percentage: 40, Status: battery.Discharging}, false, engine.TierLow, "", false, policy.FastInterval, false},
		{"exactly critical is low band", battery.Reading{Percentage: 30, Status: battery.Discharging}, true, engine.TierLow, "low-cmd", false, policy.FastInterval, false},
		{"critical runs command", battery.Reading{Percentage: 25, Status: battery.Discharging}, true, engine.TierCritical, "crit-cmd", false, policy.CriticalInterval, true},
		{"critical gate closed still notifies", battery.Reading{Percentage: 25, Status: battery.Discharging}, false, engine.TierCritical, "", false, policy.CriticalInterval, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := engine.Decide(tt.reading, tt.allow, policy)
			if d.Tier != tt.wantTier {
				t.Errorf("tier = %s, want %s", d.Tier, tt.wantTier)
			}
			if d.Command != tt.wantCmd {
				t.Errorf("command = %q, want %q", d.Command, tt.wantCmd)
			}
			if d.AllowExecute != tt.wantAllow {
				t.Errorf("allow = %v, want %v", d.AllowExecute, tt.wantAllow)
			}
			if d.Sleep != tt.wantSleep {
				t.Errorf("sleep = %s, want %s", d.Sleep, tt.wantSleep)
			}
			if d.Notify != tt.notify {
				t.Errorf("notify = %v, want %v", d.Notify, tt.notify)
			}
		})
	}
}

func TestDecideGateUntouchedWithoutCommand(t *testing.T) {
	d := engine.Decide(battery.Reading{Percentage: 40, Status: battery.Discharging}, true, testPolicy())
	if !d.AllowExecute {
		t.Fatal("expected gate to stay open when no low command is configured")
	}
}

func TestDecideNearDead(t *testing.T) {
	policy := testPolicy()
	reading := battery.Reading{Percentage: 5, Status: battery.Discharging}

	if d := engine.Decide(reading, true, policy); d.NearDead || d.Tier != engine.TierCritical {
		t.Fatalf("expected plain critical without near-dead command, got %+v", d)
	}

	policy.NearDeadCommand = "systemctl suspend"
	for _, allow := range []bool{true, false} {
		d := engine.Decide(reading, allow, policy)
		if !d.NearDead || !d.Notify || d.Tier != engine.TierNearDead {
			t.Fatalf("allow=%v: expected near-dead with critical notify, got %+v", allow, d)
		}
	}

	if d := engine.Decide(battery.Reading{Percentage: 10, Status: battery.Discharging}, true, policy); d.NearDead {
		t.Fatal("expected threshold itself to be outside the near-dead band")
	}
}

func TestStepCriticalWithGateOpen(t *testing.T) {
	policy := testPolicy()
	policy.CriticalCommand = "cmd-a"
	eng, dispatcher := newEngine(t, "25\n", "Discharging", policy)

	sleep := eng.Step(t.Context())

	notes := dispatcher.Notifications()
	if len(notes) != 1 || notes[0].Summary != "25% Battery remaining, please plug in the charger." || notes[0].Progress != 25 {
		t.Fatalf("unexpected notifications: %+v", notes)
	}
	if got := dispatcher.Commands(); !slices.Equal(got, []string{"cmd-a"}) {
		t.Fatalf("expected cmd-a once, got %v", got)
	}
	if dispatcher.Sounds() != 1 {
		t.Fatalf("expected one sound, got %d", dispatcher.Sounds())
	}
	if eng.AllowExecute() {
		t.Fatal("expected gate closed after critical command")
	}
	if sleep != 120*time.Second+engine.SettleDelay {
		t.Fatalf("unexpected sleep %s", sleep)
	}

	// Second cycle in the same episode notifies again but does not rerun.
	eng.Step(t.Context())
	if len(dispatcher.Notifications()) != 2 {
		t.Fatalf("expected critical notification every cycle, got %d", len(dispatcher.Notifications()))
	}
	if len(dispatcher.Commands()) != 1 {
		t.Fatalf("expected command to run once per episode, got %v", dispatcher.Commands())
	}
}

func TestStepCriticalWithGateClosed(t *testing.T) {
	policy := testPolicy()
	policy.CriticalCommand = "cmd-a"
	eng, dispatcher := newEngine(t, "25\n", "Discharging", policy)
	eng.SetAllowExecute(false)

	eng.Step(t.Context())

	if len(dispatcher.Notifications()) != 1 {
		t.Fatalf("expected critical notification regardless of gate, got %d", len(dispatcher.Notifications()))
	}
	if len(dispatcher.Commands()) != 0 {
		t.Fatalf("expected no command with gate closed, got %v", dispatcher.Commands())
	}
	if eng.AllowExecute() {
		t.Fatal("expected gate to remain closed")
	}
}

func TestStepRecoveryReopensGate(t *testing.T) {
	eng, dispatcher := newEngine(t, "80", "Discharging", testPolicy())
	eng.SetAllowExecute(false)

	sleep := eng.Step(t.Context())

	if !eng.AllowExecute() {
		t.Fatal("expected gate reopened")
	}
	if sleep != 300*time.Second+engine.SettleDelay {
		t.Fatalf("unexpected sleep %s", sleep)
	}
	if len(dispatcher.Notifications()) != 0 || len(dispatcher.Commands()) != 0 {
		t.Fatal("expected no alerts in the normal band")
	}
}

func TestStepLowEpisode(t *testing.T) {
	policy := testPolicy()
	policy.LowCommand = "low-cmd"
	cfg := testsupport.NewConfig(t, testsupport.WithBattery("40", "Discharging"))
	dispatcher := &testsupport.RecordingDispatcher{}
	eng := engine.New(battery.NewReader(cfg.Battery.CapacityPath, cfg.Battery.StatusPath), dispatcher, policy, nil, logging.NewNop())

	for range 3 {
		if sleep := eng.Step(t.Context()); sleep != 5*time.Second+engine.SettleDelay {
			t.Fatalf("unexpected low band sleep %s", sleep)
		}
	}
	if got := dispatcher.Commands(); !slices.Equal(got, []string{"low-cmd"}) {
		t.Fatalf("expected low command once, got %v", got)
	}
	if len(dispatcher.Notifications()) != 0 {
		t.Fatal("low band should not notify")
	}

	testsupport.WriteBattery(t, cfg, "50", "")
	eng.Step(t.Context())
	testsupport.WriteBattery(t, cfg, "44", "")
	eng.Step(t.Context())
	if got := dispatcher.Commands(); len(got) != 2 {
		t.Fatalf("expected low command to rerun after recovery, got %v", got)
	}
}

func TestStepChargingIsIdempotent(t *testing.T) {
	eng, dispatcher := newEngine(t, "10", "Charging", testPolicy())
	eng.SetAllowExecute(false)
	for range 2 {
		eng.Step(t.Context())
	}
	if eng.AllowExecute() {
		t.Fatal("charging must not touch the gate")
	}
	if len(dispatcher.Notifications())+len(dispatcher.Commands())+dispatcher.Sounds() != 0 {
		t.Fatal("charging must not alert")
	}
}

func TestStepReadFailureIsUnknown(t *testing.T) {
	eng, dispatcher := newEngine(t, "garbage", "Discharging", testPolicy())
	sleep := eng.Step(t.Context())
	if sleep != engine.UnknownSleep+engine.SettleDelay {
		t.Fatalf("unexpected sleep %s", sleep)
	}
	if len(dispatcher.Notifications()) != 0 {
		t.Fatal("read failure must not alert")
	}
}

func TestStepFailedCommandStillClosesGate(t *testing.T) {
	policy := testPolicy()
	policy.CriticalCommand = "cmd-a"
	eng, dispatcher := newEngine(t, "20", "Discharging", policy)
	dispatcher.ExecuteErr = errors.New("exec: not found")
	dispatcher.NotifyErr = errors.New("no notification daemon")

	eng.Step(t.Context())
	if eng.AllowExecute() {
		t.Fatal("expected gate closed even though the command failed")
	}
}

func TestStepNearDeadImmediate(t *testing.T) {
	policy := testPolicy()
	policy.NearDeadCommand = "systemctl hibernate"
	eng, dispatcher := newEngine(t, "5", "Discharging", policy)

	eng.Step(t.Context())
	eng.Step(t.Context())

	notes := dispatcher.Notifications()
	if len(notes) != 4 {
		t.Fatalf("expected critical and near-dead notices each cycle, got %d", len(notes))
	}
	want := "Battery is less than 10% The system will run systemctl hibernate in 0 seconds from now..."
	if notes[1].Summary != want {
		t.Fatalf("unexpected near-dead message %q", notes[1].Summary)
	}
	if got := dispatcher.Commands(); !slices.Equal(got, []string{"systemctl hibernate", "systemctl hibernate"}) {
		t.Fatalf("expected ungated near-dead command every cycle, got %v", got)
	}
}

type triggerRecorder struct {
	metrics.NoopRecorder
	triggers []string
}

func (r *triggerRecorder) IncCommand(trigger string, _ bool) {
	r.triggers = append(r.triggers, trigger)
}

func TestStepNearDeadLabelsEachCommandByItsBand(t *testing.T) {
	policy := testPolicy()
	policy.CriticalCommand = "crit-cmd"
	policy.NearDeadCommand = "nd-cmd"
	cfg := testsupport.NewConfig(t, testsupport.WithBattery("5", "Discharging"))
	reader := battery.NewReader(cfg.Battery.CapacityPath, cfg.Battery.StatusPath)
	dispatcher := &testsupport.RecordingDispatcher{}
	recorder := &triggerRecorder{}
	eng := engine.New(reader, dispatcher, policy, recorder, logging.NewNop())

	eng.Step(t.Context())

	if got := dispatcher.Commands(); !slices.Equal(got, []string{"nd-cmd", "crit-cmd"}) {
		t.Fatalf("unexpected commands %v", got)
	}
	if !slices.Equal(recorder.triggers, []string{"near_dead", "critical"}) {
		t.Fatalf("expected near_dead and critical triggers, got %v", recorder.triggers)
	}
}

func TestDecideNearDeadKeepsCriticalCommandTier(t *testing.T) {
	policy := testPolicy()
	policy.CriticalCommand = "crit-cmd"
	policy.NearDeadCommand = "nd-cmd"

	d := engine.Decide(battery.Reading{Percentage: 5, Status: battery.Discharging}, true, policy)
	if d.Tier != engine.TierNearDead || d.CommandTier != engine.TierCritical {
		t.Fatalf("tier = %s, command tier = %s", d.Tier, d.CommandTier)
	}
	low := engine.Decide(battery.Reading{Percentage: 40, Status: battery.Discharging}, true, policy)
	if low.CommandTier != engine.TierLow {
		t.Fatalf("low band command tier = %s", low.CommandTier)
	}
}

func TestStepNearDeadDelayed(t *testing.T) {
	policy := testPolicy()
	policy.NearDeadCommand = "poweroff"
	policy.NearDeadDelay = 20 * time.Millisecond
	eng, dispatcher := newEngine(t, "3", "Discharging", policy)

	eng.Step(t.Context())
	if len(dispatcher.Commands()) != 0 {
		t.Fatal("expected near-dead command to wait for the delay")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(dispatcher.Commands()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := dispatcher.Commands(); !slices.Equal(got, []string{"poweroff"}) {
		t.Fatalf("expected delayed poweroff, got %v", got)
	}
}

func TestRunStopsOnCancelAndDropsPendingCommand(t *testing.T) {
	policy := testPolicy()
	policy.NearDeadCommand = "poweroff"
	policy.NearDeadDelay = time.Hour
	eng, dispatcher := newEngine(t, "3", "Discharging", policy)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- eng.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(dispatcher.Notifications()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if len(dispatcher.Commands()) != 0 {
		t.Fatalf("expected scheduled command dropped on shutdown, got %v", dispatcher.Commands())
	}
}
