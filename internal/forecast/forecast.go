// Package forecast builds the wide 7-day snowfall table for resorts with
// coordinates.
package forecast

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/openmeteo"
)

// Days is the forecast horizon.
const Days = 7

const cmPerInch = 2.54

// Location is one resort to forecast.
type Location struct {
	Name string
	Lat  float64
	Lng  float64
}

// Locations returns the records that have coordinates, in order.
func Locations(recs []model.ResortRecord) []Location {
	var out []Location
	for _, r := range recs {
		if !r.HasCoordinates() {
			continue
		}
		out = append(out, Location{Name: r.Name, Lat: *r.Latitude, Lng: *r.Longitude})
	}
	return out
}

// Row is one resort's forecast in inches.
type Row struct {
	Resort       string
	Days         [Days]float64
	Total7Day    float64
	DaysWithSnow int
	// Err is set when the forecast could not be fetched; the row is all zero.
	Err error
}

// Table is the wide forecast: one row per resort, one column per day.
type Table struct {
	Labels    [Days]string
	Rows      []Row
	UpdatedAt time.Time
}

// Failed counts rows that fell back to zeros.
func (t Table) Failed() int {
	var n int
	for _, r := range t.Rows {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Options configures a Builder.
type Options struct {
	// Concurrency bounds in-flight requests. Default 4.
	Concurrency int
	// RatePerSec is shared by all requests. Zero or less disables limiting.
	RatePerSec float64
	// Retry applies to each location on its own.
	Retry resilience.Policy
	Clock clockwork.Clock
}

// Builder fetches forecasts. One Builder shares its limiter across every
// Build call.
type Builder struct {
	client  openmeteo.Client
	opts    Options
	limiter *rate.Limiter
}

// NewBuilder creates a Builder over client.
func NewBuilder(client openmeteo.Client, opts Options) *Builder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Retry.Attempts <= 0 {
		opts.Retry = resilience.DefaultPolicy()
	}
	if opts.Retry.Notify == nil {
		opts.Retry.Notify = resilience.LogRetries("open-meteo", "daily snowfall")
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	return &Builder{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Build forecasts every location. A location that fails after retries gets
// an all-zero row; Build itself only fails when ctx ends.
func (b *Builder) Build(ctx context.Context, locs []Location) (Table, error) {
	rows := make([]Row, len(locs))
	dates := make([][]string, len(locs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Concurrency)

	for i, loc := range locs {
		g.Go(func() error {
			rows[i], dates[i] = b.forecast(gctx, loc)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return Table{}, eris.Wrap(err, "forecast: build")
	}

	t := Table{Rows: rows, UpdatedAt: b.opts.Clock.Now()}
	for d := range Days {
		t.Labels[d] = fmt.Sprintf("Day%d", d+1)
	}
	// Input order, not completion order, decides whose dates label the columns.
	for _, ds := range dates {
		if ds == nil {
			continue
		}
		for d := 0; d < Days && d < len(ds); d++ {
			t.Labels[d] = ds[d]
		}
		break
	}

	if n := t.Failed(); n > 0 {
		zap.L().Warn("forecast: some resorts fell back to zero",
			zap.Int("failed", n),
			zap.Int("total", len(rows)),
		)
	}
	return t, nil
}

func (b *Builder) forecast(ctx context.Context, loc Location) (Row, []string) {
	resp, err := resilience.Retry(ctx, b.opts.Retry, func(ctx context.Context) (*openmeteo.DailyResponse, error) {
		if err := b.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return b.client.DailySnowfall(ctx, loc.Lat, loc.Lng, Days)
	})
	if err != nil {
		zap.L().Warn("forecast: fetch failed, using zeros",
			zap.String("resort", loc.Name),
			zap.Error(err),
		)
		return Row{Resort: loc.Name, Err: eris.Wrapf(err, "forecast: %s", loc.Name)}, nil
	}
	if resp == nil {
		return Row{Resort: loc.Name}, nil
	}
	return rowFromSnowfall(loc.Name, resp.Daily.SnowfallSum), resp.Daily.Time
}

func rowFromSnowfall(name string, cm []*float64) Row {
	row := Row{Resort: name}
	var total float64
	for d := 0; d < Days && d < len(cm); d++ {
		if cm[d] == nil {
			continue
		}
		in := round2(*cm[d] / cmPerInch)
		row.Days[d] = in
		total += in
		if in > 0 {
			row.DaysWithSnow++
		}
	}
	row.Total7Day = round2(total)
	return row
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
