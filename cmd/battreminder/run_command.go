package main

import (
	"github.com/spf13/cobra"

	"battreminder/internal/daemonrun"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the battery monitor in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd, ctx)
		},
	}
}

func runDaemon(cmd *cobra.Command, ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
		LogLevel:   ctx.logLevel(),
		ConfigPath: ctx.configPath,
	})
}
