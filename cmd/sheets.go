package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
	"github.com/gazette-evn/colorado-snow-conditions/internal/export"
	"github.com/gazette-evn/colorado-snow-conditions/internal/publish"
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "Upload the consolidated table to the conditions spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("sheets"); err != nil {
			return err
		}
		p, err := newSheetPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		return runSheets(ctx, cfg, p)
	},
}

var forecastSheetsCmd = &cobra.Command{
	Use:   "forecast-sheets",
	Short: "Upload the Colorado forecast table to the forecast spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("forecast-sheets"); err != nil {
			return err
		}
		p, err := newSheetPublisher(ctx, cfg)
		if err != nil {
			return err
		}
		return runForecastSheets(ctx, cfg, p)
	},
}

func init() {
	rootCmd.AddCommand(sheetsCmd)
	rootCmd.AddCommand(forecastSheetsCmd)
}

// runSheets replaces the conditions tab with the consolidated CSV and
// formats its header.
func runSheets(ctx context.Context, c *config.Config, p *publish.SheetPublisher) error {
	tz, err := timezone(c)
	if err != nil {
		return err
	}
	recs, err := export.ReadCSV(c.Output.ConditionsCSV)
	if err != nil {
		return eris.Wrap(err, "sheets: read consolidated table")
	}
	if len(recs) == 0 {
		return eris.Errorf("sheets: %s has no resorts", c.Output.ConditionsCSV)
	}

	values := publish.ConditionsValues(recs, time.Now(), tz)
	err = p.Publish(ctx, publish.SheetTarget{
		SpreadsheetID: c.Sheets.SpreadsheetID,
		SheetName:     c.Sheets.SheetName,
		FormatHeader:  true,
	}, values)
	if err != nil {
		return err
	}
	zap.L().Info("sheets: conditions uploaded", zap.Int("resorts", len(recs)))
	return nil
}

// runForecastSheets copies the Colorado forecast CSV into the forecast
// spreadsheet as-is.
func runForecastSheets(ctx context.Context, c *config.Config, p *publish.SheetPublisher) error {
	values, err := publish.CSVValues(c.Output.ForecastCO)
	if err != nil {
		return eris.Wrap(err, "forecast-sheets: read forecast")
	}
	if len(values) < 2 {
		return eris.Errorf("forecast-sheets: %s has no rows", c.Output.ForecastCO)
	}

	err = p.Publish(ctx, publish.SheetTarget{
		SpreadsheetID: c.Sheets.ForecastID,
		SheetName:     c.Sheets.SheetName,
	}, values)
	if err != nil {
		return err
	}
	zap.L().Info("forecast-sheets: forecast uploaded", zap.Int("rows", len(values)-1))
	return nil
}
