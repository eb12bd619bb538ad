package cmd

import (
	"clutch-review/config"
	"clutch-review/server"
	"context"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func migrate(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "create or update database tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cfg, func(ctx context.Context, app *server.App) error {
				if err := app.Repo.Migrate(ctx); err != nil {
					return err
				}
				zerolog.Ctx(ctx).Info().Msg("migration finished")
				return nil
			})
		},
	}
}
