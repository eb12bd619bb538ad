package cmd

import (
	"clutch-review/config"
	"clutch-review/server"
	"context"
	"encoding/json"
	"github.com/spf13/cobra"
	"io"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "clutch-review",
		Short:         "peer review and moderation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serverCmd(config),
		migrate(config),
		moderate(config),
		deleteInactive(config),
		viewInactive(config),
		disableUser(config),
	)
	return rootCmd
}

// withApp runs one batch job against a freshly wired app.
func withApp(cfg *config.Config, run func(ctx context.Context, app *server.App) error) error {
	ctx := server.SetupLogger(cfg)
	batch := *cfg
	if cfg.Queue != nil {
		batch.Queue = cfg.Queue.ForBatch()
	}
	app, err := server.NewApp(ctx, &batch)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	return run(ctx, app)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
