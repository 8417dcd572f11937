package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
	"github.com/gazette-evn/colorado-snow-conditions/internal/export"
	"github.com/gazette-evn/colorado-snow-conditions/internal/monitoring"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reconcile"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect resort conditions from every source and write the consolidated table",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		col := newCollector()
		defer report(ctx, col)

		return runScrape(ctx, cfg, col)
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

// runScrape runs the adapters, reconciles their output, and writes the
// consolidated CSV (and XLSX when configured).
func runScrape(ctx context.Context, c *config.Config, col *monitoring.Collector) error {
	ref, err := loadReference(c)
	if err != nil {
		return eris.Wrap(err, "scrape: reference table")
	}

	results := reconcile.Collect(ctx, newAdapters(c), c.Reconcile.AdapterTimeout())
	col.ObserveSources(results)

	res, err := newReconciler(c, ref).Reconcile(results)
	col.ObserveReconcile(res.Summary)
	res.Summary.Log()
	if err != nil {
		return eris.Wrap(err, "scrape")
	}

	if err := export.WriteCSV(c.Output.ConditionsCSV, res.Records); err != nil {
		return err
	}
	if c.Output.ConditionsXLSX != "" {
		if err := export.WriteXLSX(c.Output.ConditionsXLSX, res.Records); err != nil {
			return err
		}
	}

	zap.L().Info("scrape: consolidated table written",
		zap.String("csv", c.Output.ConditionsCSV),
		zap.String("xlsx", c.Output.ConditionsXLSX),
		zap.Int("resorts", len(res.Records)),
	)
	return nil
}
