package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"battreminder/internal/alert"
	"battreminder/internal/logging"
)

func newTestNotifyCommand(ctx *commandContext) *cobra.Command {
	var withSound bool

	cmd := &cobra.Command{
		Use:   "test-notify",
		Short: "Send a test notification through the configured backends",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg, ctx.logLevel())
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			svc, err := alert.NewService(cfg, logger)
			if err != nil {
				return err
			}
			if err := svc.TestNotification(cmd.Context()); err != nil {
				return fmt.Errorf("send test notification: %w", err)
			}
			if withSound {
				if err := svc.PlaySound(cmd.Context()); err != nil {
					return fmt.Errorf("play alert sound: %w", err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent via %s backend\n", cfg.Notifications.Backend)
			return nil
		},
	}
	cmd.Flags().BoolVar(&withSound, "sound", false, "Also play the configured alert sound")
	return cmd
}
