package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "yt-categorizer",
	Short: "Fetch YouTube channel uploads and group them by category",
	Long: `yt-categorizer fetches every upload of one or more YouTube channels,
stores them without duplicates and serves them grouped by category over a
JSON HTTP API. Running it without a subcommand starts the server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func Execute() error {
	return rootCmd.Execute()
}
