package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"battreminder/internal/battery"
	"battreminder/internal/config"
	"battreminder/internal/deps"
	"battreminder/internal/engine"
	"battreminder/internal/instance"
	"battreminder/internal/session"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the battery reading, alert tier, and daemon state",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			reader := battery.NewReader(cfg.Battery.CapacityPath, cfg.Battery.StatusPath)
			reading, readErr := reader.Read()
			fmt.Fprintln(out, renderTable(
				[]tableColumn{{header: "Battery"}, {header: "Charge", numeric: true}, {header: "Status"}, {header: "Tier"}},
				[][]string{batteryRow(cfg, reading, readErr)},
			))

			var report statusReport
			report.add("Sensor", sensorKind(readErr), sensorMessage(readErr))
			daemonKind, daemonMsg := daemonStatus(cfg)
			report.add("Daemon", daemonKind, daemonMsg)
			sessionKind, sessionMsg := sessionStatus(cfg)
			report.add("Session", sessionKind, sessionMsg)
			report.add("Plug watch", statusInfo, yesNo(cfg.Plug.Enabled))
			report.add("Audio", statusInfo, yesNo(cfg.AudioEnabled()))
			report.write(out, colorize)

			if statuses := deps.CheckBinaries(deps.Requirements(cfg)); len(statuses) > 0 {
				rows := make([][]string, 0, len(statuses))
				for _, st := range statuses {
					detail := st.Detail
					if st.Available {
						detail = st.Description
					}
					rows = append(rows, []string{st.Name, st.Command, yesNo(st.Available), detail})
				}
				fmt.Fprintln(out, renderTable(
					[]tableColumn{{header: "Program"}, {header: "Command"}, {header: "Found"}, {header: "Detail"}},
					rows,
				))
			}
			return nil
		},
	}
}

func batteryRow(cfg *config.Config, reading battery.Reading, readErr error) []string {
	charge := "?"
	if readErr == nil {
		charge = strconv.Itoa(reading.Percentage) + "%"
	}
	tier := engine.Decide(reading, true, engine.PolicyFromConfig(cfg)).Tier
	if readErr != nil {
		tier = engine.TierUnknown
	}
	return []string{cfg.Battery.CapacityPath, charge, reading.Status.String(), tier.String()}
}

func sensorKind(err error) statusKind {
	if err != nil {
		return statusError
	}
	return statusOK
}

func sensorMessage(err error) string {
	if err != nil {
		return err.Error()
	}
	return "readable"
}

func daemonStatus(cfg *config.Config) (statusKind, string) {
	pid, alive, err := instance.Inspect(cfg.Daemon.LockPath)
	switch {
	case err != nil:
		return statusWarn, fmt.Sprintf("unreadable lock %s: %v", cfg.Daemon.LockPath, err)
	case pid == 0:
		return statusInfo, "not running"
	case alive:
		return statusOK, fmt.Sprintf("running (pid %d)", pid)
	default:
		return statusWarn, fmt.Sprintf("stale lock for pid %d at %s", pid, cfg.Daemon.LockPath)
	}
}

func sessionStatus(cfg *config.Config) (statusKind, string) {
	current, set := session.Current()
	if err := session.Check(current, set, cfg.Session.Targets); err != nil {
		return statusWarn, err.Error()
	}
	if !set {
		return statusOK, "allowed (any)"
	}
	return statusOK, fmt.Sprintf("%s allowed by %s", current, strings.Join(cfg.Session.Targets, ", "))
}
