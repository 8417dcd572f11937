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
	"github.com/gazette-evn/colorado-snow-conditions/internal/forecast"
	"github.com/gazette-evn/colorado-snow-conditions/internal/monitoring"
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Build the 7-day snowfall forecast for each enabled region",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		col := newCollector()
		defer report(ctx, col)

		return runForecast(ctx, cfg, newForecastBuilder(cfg), col)
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
}

// runForecast builds every enabled region. A failed region does not stop the
// others; the error names all that failed.
func runForecast(ctx context.Context, c *config.Config, b *forecast.Builder, col *monitoring.Collector) error {
	if err := c.Validate("forecast"); err != nil {
		return err
	}
	tz, err := timezone(c)
	if err != nil {
		return err
	}

	var failed []string
	for _, r := range forecastRegions(c) {
		res, err := b.Run(ctx, r, tz)
		col.ObserveForecast(res)
		if err != nil {
			zap.L().Error("forecast: region failed", zap.String("region", r.Label), zap.Error(err))
			failed = append(failed, r.Label)
		}
	}
	if len(failed) > 0 {
		return eris.Errorf("forecast: regions failed: %s", strings.Join(failed, ", "))
	}
	return nil
}
