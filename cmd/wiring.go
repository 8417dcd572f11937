package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
	"github.com/gazette-evn/colorado-snow-conditions/internal/fetcher"
	"github.com/gazette-evn/colorado-snow-conditions/internal/forecast"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/publish"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reconcile"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reference"
	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
	"github.com/gazette-evn/colorado-snow-conditions/internal/source"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/datawrapper"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/openmeteo"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/sheets"
)

func retryPolicy(attempts int) resilience.Policy {
	p := resilience.DefaultPolicy()
	if attempts > 0 {
		p.Attempts = attempts
	}
	return p
}

// timezone resolves the zone used for timestamps in published output.
func timezone(c *config.Config) (*time.Location, error) {
	loc, err := time.LoadLocation(c.Sheets.Timezone)
	if err != nil {
		return nil, eris.Wrapf(err, "load timezone %q", c.Sheets.Timezone)
	}
	return loc, nil
}

// loadReference returns the override file when one is configured and the
// built-in Colorado table otherwise.
func loadReference(c *config.Config) (*reference.Table, error) {
	if c.Reconcile.ReferenceFile == "" {
		return reference.Colorado(), nil
	}
	ref, err := reference.LoadYAML(c.Reconcile.ReferenceFile)
	if err != nil {
		return nil, err
	}
	zap.L().Info("using reference override",
		zap.String("file", c.Reconcile.ReferenceFile),
		zap.Int("resorts", ref.Len()),
	)
	return ref, nil
}

func newReconciler(c *config.Config, ref *reference.Table) *reconcile.Reconciler {
	priority := make([]model.SourceLabel, len(c.Reconcile.Priority))
	for i, p := range c.Reconcile.Priority {
		priority[i] = model.SourceLabel(p)
	}
	return reconcile.New(ref, reconcile.Options{
		Max24hSnowfall: c.Reconcile.Max24hSnowfall,
		Priority:       priority,
		Authoritative:  model.SourceLabel(c.Reconcile.Authoritative),
		MustInclude:    c.Reconcile.MustInclude,
	})
}

// newAdapters builds the three source adapters over one shared fetcher, so
// per-host limits hold across all of them.
func newAdapters(c *config.Config) []source.Adapter {
	f := fetcher.New(fetcher.Options{
		UserAgent:  c.Sources.UserAgent,
		Timeout:    c.Sources.Timeout(),
		RatePerSec: c.Sources.RatePerSec,
		Retry:      retryPolicy(c.Sources.MaxRetries),
	})

	var otsOpts []source.OnTheSnowOption
	if !c.Sources.SkipDetailPages {
		otsOpts = append(otsOpts, source.WithDetailPages())
	}

	return []source.Adapter{
		source.NewOnTheSnow(f, c.Sources.OnTheSnowURL, nil, otsOpts...),
		source.NewColoradoSki(f, c.Sources.ColoradoSkiURL, nil),
		source.NewOfficial(f, c.Sources.OfficialURL, source.AspenSnowmass, nil),
	}
}

func newForecastBuilder(c *config.Config) *forecast.Builder {
	client := openmeteo.NewClient(
		openmeteo.WithBaseURL(c.Forecast.BaseURL),
		openmeteo.WithHTTPClient(&http.Client{Timeout: time.Duration(c.Forecast.TimeoutSecs) * time.Second}),
	)
	return forecast.NewBuilder(client, forecast.Options{
		Concurrency: c.Forecast.Concurrency,
		RatePerSec:  c.Forecast.RatePerSec,
		Retry:       retryPolicy(c.Forecast.MaxAttempts),
	})
}

// forecastRegions lists the enabled regions. California is optional: its
// consolidated CSV is produced outside this tool and may be absent.
func forecastRegions(c *config.Config) []forecast.Region {
	var regions []forecast.Region
	if c.Forecast.RunCO {
		regions = append(regions, forecast.Region{
			Label:  "CO",
			Input:  c.Output.ConditionsCSV,
			Output: c.Output.ForecastCO,
		})
	}
	if c.Forecast.RunCA && c.Output.CaliforniaCSV != "" && c.Output.ForecastCA != "" {
		regions = append(regions, forecast.Region{
			Label:    "CA",
			Input:    c.Output.CaliforniaCSV,
			Output:   c.Output.ForecastCA,
			Optional: true,
		})
	}
	return regions
}

func newSheetPublisher(ctx context.Context, c *config.Config) (*publish.SheetPublisher, error) {
	client, err := sheets.NewServiceAccountClient(ctx, c.Sheets.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	return publish.NewSheetPublisher(client, resilience.DefaultPolicy()), nil
}

func newChartPublisher(c *config.Config) *publish.ChartPublisher {
	client := datawrapper.NewClient(c.Datawrapper.APIKey, datawrapper.WithBaseURL(c.Datawrapper.BaseURL))
	return publish.NewChartPublisher(client, publish.ChartIDs{
		Map:   c.Datawrapper.MapChartID,
		Table: c.Datawrapper.TableChartID,
	}, resilience.DefaultPolicy())
}
