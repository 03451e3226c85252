package alert_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"battreminder/internal/alert"
	"battreminder/internal/config"
	"battreminder/internal/logging"
)

type recordingNotifier struct {
	mu    sync.Mutex
	notes []alert.Notification
	err   error
}

func (r *recordingNotifier) Notify(_ context.Context, n alert.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return r.err
}

func TestExecNotifierArgs(t *testing.T) {
	n := alert.NewExecNotifier("notify-send", "batt-reminder", 2592, 10000)

	got := n.Args(alert.Notification{Summary: "25% Battery remaining, please plug in the charger.", Progress: 25})
	want := []string{
		"--app-name=batt-reminder",
		"--replace-id=2592",
		"--urgency=critical",
		"--expire-time=10000",
		"--hint=int:value:25",
		"25% Battery remaining, please plug in the charger.",
	}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected args:\n got %q\nwant %q", got, want)
	}

	got = n.Args(alert.Notification{Summary: "plain", Body: "body", Progress: alert.NoProgress})
	if slices.ContainsFunc(got, func(s string) bool { return strings.HasPrefix(s, "--hint") }) {
		t.Fatalf("expected no progress hint, got %q", got)
	}
	if got[len(got)-2] != "plain" || got[len(got)-1] != "body" {
		t.Fatalf("expected summary then body at the end, got %q", got)
	}
}

func TestExecNotifierRunsBinary(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "args")
	script := filepath.Join(dir, "fake-notify")
	body := "#!/bin/sh\nprintf '%s\\n' \"$@\" > " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}

	n := alert.NewExecNotifier(script, "app", 7, 500)
	if err := n.Notify(t.Context(), alert.Notification{Summary: "hello", Progress: alert.NoProgress}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	if !strings.Contains(string(data), "--replace-id=7") || !strings.HasSuffix(strings.TrimSpace(string(data)), "hello") {
		t.Fatalf("unexpected args recorded: %q", data)
	}
}

func TestExecNotifierReportsFailure(t *testing.T) {
	n := alert.NewExecNotifier(filepath.Join(t.TempDir(), "missing"), "app", 1, 1)
	if err := n.Notify(t.Context(), alert.Notification{Summary: "x"}); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestServiceNotifyMirrorFailureIsNotFatal(t *testing.T) {
	primary := &recordingNotifier{}
	mirror := &recordingNotifier{err: errors.New("offline")}
	svc := alert.NewServiceWith(primary, mirror, nil, "", "", logging.NewNop())

	if err := svc.Notify(t.Context(), alert.Notification{Summary: "low"}); err != nil {
		t.Fatalf("expected mirror failure to be swallowed, got %v", err)
	}
	if len(primary.notes) != 1 || len(mirror.notes) != 1 {
		t.Fatalf("expected both transports called, got %d and %d", len(primary.notes), len(mirror.notes))
	}
}

type closingNotifier struct {
	recordingNotifier
	closed int
}

func (c *closingNotifier) Close() error {
	c.closed++
	return nil
}

func TestServiceCloseReleasesNotifier(t *testing.T) {
	primary := &closingNotifier{}
	svc := alert.NewServiceWith(primary, nil, nil, "", "", logging.NewNop())
	if err := svc.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if primary.closed != 1 {
		t.Fatalf("expected notifier closed once, got %d", primary.closed)
	}

	plain := alert.NewServiceWith(nil, nil, nil, "", "", logging.NewNop())
	if err := plain.Close(); err != nil {
		t.Fatalf("Close without closable notifier: %v", err)
	}
}

func TestServiceNotifyPropagatesPrimaryFailure(t *testing.T) {
	primary := &recordingNotifier{err: errors.New("no daemon")}
	svc := alert.NewServiceWith(primary, nil, nil, "", "", logging.NewNop())
	if err := svc.Notify(t.Context(), alert.Notification{Summary: "low"}); err == nil {
		t.Fatal("expected primary failure to propagate")
	}
}

func TestServiceExecute(t *testing.T) {
	dir := t.TempDir()
	marker := filepath.Join(dir, "ran")
	runner := alert.NewRunner(logging.NewNop())
	svc := alert.NewServiceWith(nil, nil, runner, "", "", logging.NewNop())

	if err := svc.Execute(t.Context(), "touch "+marker); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	runner.Wait()
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("expected command to run: %v", err)
	}

	if err := svc.Execute(t.Context(), "   "); !errors.Is(err, alert.ErrEmptyCommand) {
		t.Fatalf("expected ErrEmptyCommand, got %v", err)
	}
	if err := svc.Execute(t.Context(), filepath.Join(dir, "does-not-exist")); err == nil {
		t.Fatal("expected start failure for missing executable")
	}
}

func TestServicePlaySound(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "played")
	player := filepath.Join(dir, "player")
	if err := os.WriteFile(player, []byte("#!/bin/sh\necho \"$1\" > "+out+"\n"), 0o755); err != nil {
		t.Fatalf("write player: %v", err)
	}
	runner := alert.NewRunner(logging.NewNop())

	silent := alert.NewServiceWith(nil, nil, runner, player, "", logging.NewNop())
	if err := silent.PlaySound(t.Context()); err != nil {
		t.Fatalf("disabled audio should be a no-op: %v", err)
	}

	svc := alert.NewServiceWith(nil, nil, runner, player, "/tmp/alert.ogg", logging.NewNop())
	if err := svc.PlaySound(t.Context()); err != nil {
		t.Fatalf("PlaySound: %v", err)
	}
	runner.Wait()
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read player output: %v", err)
	}
	if strings.TrimSpace(string(data)) != "/tmp/alert.ogg" {
		t.Fatalf("unexpected sound path passed to player: %q", data)
	}
}

func TestRunnerRespectsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runner := alert.NewRunner(nil)
	if err := runner.Start(ctx, "command", []string{"true"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestNtfyNotifier(t *testing.T) {
	var gotBody, gotTitle, gotPriority string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody = string(data)
		gotTitle = r.Header.Get("Title")
		gotPriority = r.Header.Get("Priority")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := alert.NewNtfyNotifier(server.URL, &http.Client{Timeout: time.Second})
	if err := n.Notify(t.Context(), alert.Notification{Summary: "12% Battery remaining"}); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if gotBody != "12% Battery remaining" || gotTitle != "batt-reminder" || gotPriority != "high" {
		t.Fatalf("unexpected request: body=%q title=%q priority=%q", gotBody, gotTitle, gotPriority)
	}
}

func TestNtfyNotifierReportsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "topic blocked", http.StatusForbidden)
	}))
	defer server.Close()

	n := alert.NewNtfyNotifier(server.URL, nil)
	err := n.Notify(t.Context(), alert.Notification{Summary: "x"})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}

func TestNewServiceBackends(t *testing.T) {
	for _, backend := range []string{config.BackendDBus, config.BackendExec, config.BackendNone} {
		cfg := config.Default()
		cfg.Notifications.Backend = backend
		if _, err := alert.NewService(&cfg, logging.NewNop()); err != nil {
			t.Fatalf("backend %s: %v", backend, err)
		}
	}

	cfg := config.Default()
	cfg.Notifications.Backend = "smoke-signal"
	if _, err := alert.NewService(&cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
