package shutdown_test

import (
	"context"
	"errors"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"battreminder/internal/logging"
	"battreminder/internal/shutdown"
)

type countingReleaser struct {
	calls atomic.Int32
	err   error
}

func (r *countingReleaser) Release() error {
	r.calls.Add(1)
	return r.err
}

func TestWaitReleasesOnceAfterTrigger(t *testing.T) {
	releaser := &countingReleaser{}
	coord := shutdown.New(5*time.Millisecond, releaser, logging.NewNop())

	done := make(chan error, 1)
	go func() { done <- coord.Wait(t.Context()) }()

	coord.Trigger()
	coord.Trigger()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not observe the flag")
	}
	if err := coord.Wait(t.Context()); err != nil {
		t.Fatalf("second Wait returned %v", err)
	}
	if got := releaser.calls.Load(); got != 1 {
		t.Fatalf("expected exactly one release, got %d", got)
	}
}

func TestWaitReturnsReleaseError(t *testing.T) {
	releaser := &countingReleaser{err: errors.New("permission denied")}
	coord := shutdown.New(time.Millisecond, releaser, logging.NewNop())
	coord.Trigger()
	if err := coord.Wait(t.Context()); err == nil {
		t.Fatal("expected release error to surface")
	}
}

func TestWaitReleasesOnContextCancel(t *testing.T) {
	releaser := &countingReleaser{}
	coord := shutdown.New(time.Hour, releaser, logging.NewNop())
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	if err := coord.Wait(ctx); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if releaser.calls.Load() != 1 {
		t.Fatal("expected release on context cancel")
	}
	if coord.Requested() {
		t.Fatal("flag must only be set by signals or Trigger")
	}
}

func TestRegisterHandlesSignal(t *testing.T) {
	releaser := &countingReleaser{}
	coord := shutdown.New(5*time.Millisecond, releaser, logging.NewNop())
	coord.Register()

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	if err := coord.Wait(ctx); err != nil {
		t.Fatalf("Wait returned %v", err)
	}
	if !coord.Requested() {
		t.Fatal("expected SIGTERM to set the flag")
	}
	if releaser.calls.Load() != 1 {
		t.Fatal("expected one release")
	}
}
