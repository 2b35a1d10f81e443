package cli

import (
	"encoding/json"

	"github.com/grvbrk/yt-categorizer/internal/app"
	"github.com/grvbrk/yt-categorizer/internal/config"
	"github.com/grvbrk/yt-categorizer/internal/youtube"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <channel-url>...",
	Short: "Fetch and store the uploads of one or more channels",
	Long: `Runs the same pipeline as the HTTP API: every channel URL is resolved,
its uploads are fetched and stored, and the stored videos are printed as JSON
grouped by category.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func channelIdentifiers(urls []string) ([]string, error) {
	identifiers := make([]string, 0, len(urls))
	for _, u := range urls {
		identifier, ok := youtube.ExtractChannelIdentifier(u)
		if !ok {
			return nil, errors.Errorf("invalid YouTube channel URL: %s", u)
		}
		identifiers = append(identifiers, identifier)
	}
	return identifiers, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	identifiers, err := channelIdentifiers(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)
	logger.SetOutput(cmd.ErrOrStderr())

	application, err := app.NewApplication(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.IngestionService.IngestChannels(cmd.Context(), identifiers)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"channels":   result.Channels,
		"categories": result.Categories,
	})
}
