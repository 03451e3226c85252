package alert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"battreminder/internal/config"
)

const userAgent = "battreminder/0.1.0"

// newNtfyMirror returns nil when no ntfy topic is configured.
func newNtfyMirror(cfg *config.Config) Notifier {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return nil
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return NewNtfyNotifier(topic, &http.Client{Timeout: timeout})
}

// NtfyNotifier publishes notifications to an ntfy topic URL.
type NtfyNotifier struct {
	endpoint string
	client   *http.Client
}

// NewNtfyNotifier posts to endpoint using client.
func NewNtfyNotifier(endpoint string, client *http.Client) *NtfyNotifier {
	if client == nil {
		client = http.DefaultClient
	}
	return &NtfyNotifier{endpoint: endpoint, client: client}
}

func (n *NtfyNotifier) Notify(ctx context.Context, note Notification) error {
	message := note.Summary
	if note.Body != "" {
		message = note.Summary + "\n" + note.Body
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", "batt-reminder")
	req.Header.Set("Tags", "battery")
	req.Header.Set("Priority", "high")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
