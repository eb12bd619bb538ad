package cmd

import (
	"clutch-review/config"
	"clutch-review/constant"
	"clutch-review/server"
	"clutch-review/service"
	"context"
	"fmt"
	"github.com/spf13/cobra"
)

func moderate(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:       "moderate [check|warn|suspend]",
		Short:     "scan violation counters and warn or suspend users",
		Long:      "check only reports. warn and suspend each apply one transition and must be run separately.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"check", "warn", "suspend"},
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := constant.ModerationModeCheck
			if len(args) == 1 {
				mode = constant.ModerationMode(args[0])
			}
			if !mode.Valid() {
				return fmt.Errorf("%w: %q", service.ErrInvalidMode, mode)
			}

			return withApp(cfg, func(ctx context.Context, app *server.App) error {
				report, err := app.Moderation.Run(ctx, mode)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
}
