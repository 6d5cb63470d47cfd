package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dinotail",
	Short: "dinotail -- live tail of a DNS proxy's query log",
	Long: "dinotail follows the query log of a dinosaur DNS proxy in the terminal.\n" +
		"Space pauses the view, b/f page through older records, / edits filters.",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runLive,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dinotail: %v\n", err)
		os.Exit(1)
	}
}
