package cmd

import (
	"clutch-review/config"
	"clutch-review/server"
	"context"
	"github.com/spf13/cobra"
)

func deleteInactive(cfg *config.Config) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "delete-inactive",
		Short: "delete accounts with no activity during the inactivity period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfg, func(ctx context.Context, app *server.App) error {
				report, err := app.Deletion.Run(ctx, dryRun)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the accounts without deleting them")
	return cmd
}

func viewInactive(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "view-inactive",
		Short: "list accounts that delete-inactive would remove",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfg, func(ctx context.Context, app *server.App) error {
				inactive, err := app.Deletion.FindInactive(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), inactive)
			})
		},
	}
}

func disableUser(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "disable-user <userId> [reason]",
		Short: "disable and suspend one account",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := ""
			if len(args) == 2 {
				reason = args[1]
			}
			return withApp(cfg, func(ctx context.Context, app *server.App) error {
				user, err := app.Accounts.DisableUser(ctx, args[0], reason)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"userId":    user.ID,
					"suspended": user.Suspended,
					"reason":    user.SuspensionReason,
				})
			})
		},
	}
}
