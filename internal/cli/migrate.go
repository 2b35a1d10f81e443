package cli

import (
	"fmt"

	"github.com/grvbrk/yt-categorizer/internal/app"
	"github.com/grvbrk/yt-categorizer/internal/config"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `Brings the configured video store up to date and, when CLICKHOUSE_URL
is set, the ingestion analytics database.`,
	RunE: runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := app.NewLogger(cfg)

	videoStore, err := app.OpenVideoStore(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer videoStore.Close()
	fmt.Fprintf(cmd.OutOrStdout(), "Video store (%s) migrated.\n", cfg.StoreDriver)

	if cfg.AnalyticsEnabled() {
		if err := app.MigrateAnalytics(cfg); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Analytics database migrated.")
	}

	return nil
}
