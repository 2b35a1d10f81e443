package cli

import (
	"fmt"

	"github.com/grvbrk/yt-categorizer/internal/app"
	"github.com/grvbrk/yt-categorizer/internal/config"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every stored video",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	logger.SetOutput(cmd.ErrOrStderr())

	videoStore, err := app.OpenVideoStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer videoStore.Close()

	n, err := videoStore.ClearVideos(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d videos.\n", n)
	return nil
}
