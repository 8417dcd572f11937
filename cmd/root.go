package main

import (
	"context"
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
	"github.com/gazette-evn/colorado-snow-conditions/internal/monitoring"
)

var (
	cfg   *config.Config
	runID string
)

var rootCmd = &cobra.Command{
	Use:   "snowcli",
	Short: "Colorado ski resort snow conditions aggregator",
	Long:  "Scrapes resort snow reports from several sources, reconciles them into one table, builds a 7-day snowfall forecast, and publishes to Google Sheets and Datawrapper.",
	// Failures are already logged with context; usage text adds nothing.
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		runID = uuid.NewString()
		zap.ReplaceGlobals(zap.L().With(zap.String("run_id", runID)))

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newCollector starts the metrics for one command run.
func newCollector() *monitoring.Collector {
	return monitoring.NewCollector(runID, nil)
}

// report writes the run metrics and raises any alerts they warrant.
func report(ctx context.Context, col *monitoring.Collector) {
	col.Flush(cfg.Monitoring.MetricsFile)
	monitoring.NewAlerter(cfg.Monitoring).Check(context.WithoutCancel(ctx), col.Snapshot())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		zap.L().Error("command failed", zap.Error(err))
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
