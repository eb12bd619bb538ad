package cmd

import (
	"clutch-review/config"
	server2 "clutch-review/server"
	"github.com/spf13/cobra"
)

func serverCmd(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start http server and upload consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server2.RunHttp(config)
		},
	}
}
