package testsupport

import (
	"context"
	"sync"

	"battreminder/internal/alert"
)

// RecordingDispatcher is an alert.Dispatcher that records every call.
type RecordingDispatcher struct {
	mu            sync.Mutex
	notifications []alert.Notification
	commands      []string
	sounds        int

	NotifyErr  error
	SoundErr   error
	ExecuteErr error
}

var _ alert.Dispatcher = (*RecordingDispatcher)(nil)

func (r *RecordingDispatcher) Notify(_ context.Context, n alert.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, n)
	return r.NotifyErr
}

func (r *RecordingDispatcher) PlaySound(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds++
	return r.SoundErr
}

func (r *RecordingDispatcher) Execute(_ context.Context, command string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, command)
	return r.ExecuteErr
}

// Notifications returns a copy of the recorded notifications.
func (r *RecordingDispatcher) Notifications() []alert.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]alert.Notification(nil), r.notifications...)
}

// Commands returns a copy of the recorded command lines.
func (r *RecordingDispatcher) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

// Sounds returns how many times PlaySound was called.
func (r *RecordingDispatcher) Sounds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sounds
}

// Reset clears recorded calls.
func (r *RecordingDispatcher) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = nil
	r.commands = nil
	r.sounds = 0
}
