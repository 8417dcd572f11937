package main

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
	"github.com/gazette-evn/colorado-snow-conditions/internal/monitoring"
	"github.com/gazette-evn/colorado-snow-conditions/internal/stage"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Run scrape, sheets, and (when configured) charts in order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		col := newCollector()
		defer report(ctx, col)

		runner := stage.NewRunner(cfg.Stage.Timeout(), stage.WithObserver(col.ObserveStage))
		return runUpdate(ctx, runner, updateStages(cfg, col))
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
}

// updateStages lists the stages of a scheduled update. Charts are included
// only when Datawrapper is configured.
func updateStages(c *config.Config, col *monitoring.Collector) []stage.Stage {
	stages := []stage.Stage{
		{Name: "scrape", Run: func(ctx context.Context) error {
			return runScrape(ctx, c, col)
		}},
		{Name: "sheets", Run: func(ctx context.Context) error {
			if err := c.Validate("sheets"); err != nil {
				return err
			}
			p, err := newSheetPublisher(ctx, c)
			if err != nil {
				return err
			}
			return runSheets(ctx, c, p)
		}},
	}
	if c.Datawrapper.Enabled() {
		stages = append(stages, stage.Stage{Name: "charts", Run: func(ctx context.Context) error {
			return runCharts(ctx, c, newChartPublisher(c))
		}})
	} else {
		zap.L().Info("update: datawrapper not configured, charts stage skipped")
	}
	return stages
}

func runUpdate(ctx context.Context, runner *stage.Runner, stages []stage.Stage) error {
	sum := runner.Run(ctx, stages)
	sum.Log()
	if !sum.OK() {
		return eris.Errorf("update: stages failed: %s", strings.Join(sum.Failed(), ", "))
	}
	return nil
}
