package alert

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// ExecNotifier shells out to a notify-send compatible binary.
type ExecNotifier struct {
	binary    string
	appName   string
	replaceID uint32
	expire    int
}

// NewExecNotifier returns a notifier that runs binary for every alert.
func NewExecNotifier(binary, appName string, replaceID uint32, expireMillis int) *ExecNotifier {
	return &ExecNotifier{binary: binary, appName: appName, replaceID: replaceID, expire: expireMillis}
}

// Notify runs the binary and waits for it; notify-send returns immediately.
func (e *ExecNotifier) Notify(ctx context.Context, n Notification) error {
	cmd := exec.CommandContext(ctx, e.binary, e.Args(n)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", e.binary, err, msg)
		}
		return fmt.Errorf("%s: %w", e.binary, err)
	}
	return nil
}

// Args returns the command line arguments for n.
func (e *ExecNotifier) Args(n Notification) []string {
	args := []string{
		"--app-name=" + e.appName,
		"--replace-id=" + strconv.FormatUint(uint64(e.replaceID), 10),
		"--urgency=critical",
		"--expire-time=" + strconv.Itoa(e.expire),
	}
	if n.Progress >= 0 {
		args = append(args, "--hint=int:value:"+strconv.Itoa(n.Progress))
	}
	args = append(args, n.Summary)
	if n.Body != "" {
		args = append(args, n.Body)
	}
	return args
}
