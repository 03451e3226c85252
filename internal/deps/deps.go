// Package deps checks that the external programs named in the configuration
// can be found on PATH.
package deps

import (
	"fmt"
	"os/exec"
	"strings"

	"battreminder/internal/config"
)

// Requirement defines an external program the daemon may start.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Requirements lists the programs cfg refers to: the notification binary
// when the exec backend is selected, the audio player when a sound is set,
// and the executable of every configured user command.
func Requirements(cfg *config.Config) []Requirement {
	var reqs []Requirement
	if cfg.Notifications.Backend == config.BackendExec {
		reqs = append(reqs, Requirement{
			Name:        "Notifier",
			Command:     cfg.Notifications.Binary,
			Description: "Desktop notifications (exec backend)",
		})
	}
	if cfg.AudioEnabled() {
		reqs = append(reqs, Requirement{
			Name:        "Audio player",
			Command:     executable(cfg.Audio.Player),
			Description: "Alert sound",
			Optional:    true,
		})
	}
	commands := []struct {
		name  string
		value string
	}{
		{"Low command", cfg.Commands.Low},
		{"Critical command", cfg.Commands.Critical},
		{"Near-dead command", cfg.Commands.NearDead},
		{"Plug-in command", cfg.Commands.PlugIn},
		{"Plug-out command", cfg.Commands.PlugOut},
	}
	for _, c := range commands {
		if c.value == "" {
			continue
		}
		reqs = append(reqs, Requirement{
			Name:        c.name,
			Command:     executable(c.value),
			Description: c.value,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

func executable(commandLine string) string {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
