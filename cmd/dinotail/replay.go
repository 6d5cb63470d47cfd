package main

import (
	"github.com/spf13/cobra"

	"github.com/dinotail/dinotail/internal/app"
)

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Browse a captured query log stream",
	Long: "Load the newest records of a captured event stream, for example\n" +
		"  curl -N http://127.0.0.1:8553/log > capture.txt\n" +
		"and open them without a live feed. Lines may keep or drop the \"data:\" prefix.",
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(cmd)
		defer cancel()
		opts := flags.options(cmd)
		opts.ReplayPath = args[0]
		return app.Run(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
}
