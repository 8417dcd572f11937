package forecast

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/export"
)

// Region pairs a consolidated resort CSV with the forecast CSV built from it.
type Region struct {
	Label  string
	Input  string
	Output string
	// Optional regions are skipped when their input file does not exist.
	Optional bool
}

// RegionResult reports one region run.
type RegionResult struct {
	Region  Region
	Skipped bool
	Resorts int
	Failed  int
}

// Run builds and writes the forecast for one region.
func (b *Builder) Run(ctx context.Context, r Region, tz *time.Location) (RegionResult, error) {
	res := RegionResult{Region: r}
	log := zap.L().With(zap.String("region", r.Label))

	recs, err := export.ReadCSV(r.Input)
	if err != nil {
		if r.Optional && errors.Is(err, fs.ErrNotExist) {
			log.Info("forecast: input missing, skipping region", zap.String("input", r.Input))
			res.Skipped = true
			return res, nil
		}
		return res, eris.Wrapf(err, "forecast: load %s resorts", r.Label)
	}

	locs := Locations(recs)
	if len(locs) < len(recs) {
		log.Warn("forecast: resorts without coordinates skipped", zap.Int("skipped", len(recs)-len(locs)))
	}

	table, err := b.Build(ctx, locs)
	if err != nil {
		return res, err
	}
	if err := WriteCSV(r.Output, table, tz); err != nil {
		return res, err
	}

	res.Resorts = len(table.Rows)
	res.Failed = table.Failed()
	log.Info("forecast: region written",
		zap.String("output", r.Output),
		zap.Int("resorts", res.Resorts),
		zap.Int("failed", res.Failed),
	)
	return res, nil
}
