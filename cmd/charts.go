package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
	"github.com/gazette-evn/colorado-snow-conditions/internal/export"
	"github.com/gazette-evn/colorado-snow-conditions/internal/publish"
)

var chartsCmd = &cobra.Command{
	Use:   "charts",
	Short: "Refresh the Datawrapper snow map and table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("charts"); err != nil {
			return err
		}
		return runCharts(ctx, cfg, newChartPublisher(cfg))
	},
}

func init() {
	rootCmd.AddCommand(chartsCmd)
}

func runCharts(ctx context.Context, c *config.Config, p *publish.ChartPublisher) error {
	recs, err := export.ReadCSV(c.Output.ConditionsCSV)
	if err != nil {
		return eris.Wrap(err, "charts: read consolidated table")
	}
	if len(recs) == 0 {
		return eris.Errorf("charts: %s has no resorts", c.Output.ConditionsCSV)
	}
	return p.Publish(ctx, recs)
}
