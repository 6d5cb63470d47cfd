package main

import (
	"github.com/spf13/cobra"

	"github.com/dinotail/dinotail/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the proxy's configuration, cache size and blocklist count",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd)
		defer cancel()
		return app.Status(ctx, flags.options(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
