package monitoring

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/forecast"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reconcile"
	"github.com/gazette-evn/colorado-snow-conditions/internal/stage"
)

// RunSnapshot is what one update run did, in the shape the alerter checks.
type RunSnapshot struct {
	RunID           string    `json:"run_id"`
	SourcesTotal    int       `json:"sources_total"`
	FailedSources   []string  `json:"failed_sources,omitempty"`
	Resorts         int       `json:"resorts"`
	Clamped         int       `json:"clamped"`
	Placeholders    []string  `json:"placeholders,omitempty"`
	ForecastResorts int       `json:"forecast_resorts"`
	ForecastFailed  int       `json:"forecast_failed"`
	StagesTotal     int       `json:"stages_total"`
	FailedStages    []string  `json:"failed_stages,omitempty"`
	CollectedAt     time.Time `json:"collected_at"`
}

// AllSourcesFailed reports whether no source contributed a record.
func (s RunSnapshot) AllSourcesFailed() bool {
	return s.SourcesTotal > 0 && len(s.FailedSources) == s.SourcesTotal
}

// ForecastFailRate is the share of forecast lookups that failed.
func (s RunSnapshot) ForecastFailRate() float64 {
	if s.ForecastResorts == 0 {
		return 0
	}
	return float64(s.ForecastFailed) / float64(s.ForecastResorts)
}

// Collector records a run's outcomes into both the Prometheus gauges and a
// RunSnapshot. It is safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	metrics *Metrics
	snap    RunSnapshot
	clock   clockwork.Clock
}

// NewCollector creates a Collector for the given run. A nil clock means the
// real clock.
func NewCollector(runID string, clock clockwork.Clock) *Collector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Collector{
		metrics: NewMetrics(),
		snap:    RunSnapshot{RunID: runID},
		clock:   clock,
	}
}

// Metrics returns the underlying gauges.
func (c *Collector) Metrics() *Metrics { return c.metrics }

// ObserveSources records each adapter's outcome.
func (c *Collector) ObserveSources(results []reconcile.SourceResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range results {
		src := string(r.Source)
		c.metrics.SourceRecords.WithLabelValues(src).Set(float64(len(r.Records)))
		c.metrics.SourceUp.WithLabelValues(src).Set(boolGauge(r.OK()))
		c.metrics.SourceDuration.WithLabelValues(src).Set(r.Elapsed.Seconds())

		c.snap.SourcesTotal++
		if !r.OK() {
			c.snap.FailedSources = append(c.snap.FailedSources, src)
		}
	}
}

// ObserveReconcile records the reconcile summary.
func (c *Collector) ObserveReconcile(sum reconcile.Summary) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.Resorts.Set(float64(sum.Total))
	c.metrics.Clamped.Set(float64(sum.Clamped))
	c.metrics.Duplicates.Set(float64(sum.Duplicates))
	c.metrics.Placeholders.Set(float64(len(sum.Placeholders)))
	c.metrics.Unmatched.Set(float64(len(sum.Unmatched)))

	c.snap.Resorts = sum.Total
	c.snap.Clamped = sum.Clamped
	c.snap.Placeholders = append([]string(nil), sum.Placeholders...)
}

// ObserveForecast records one forecast region. Skipped regions are ignored.
func (c *Collector) ObserveForecast(res forecast.RegionResult) {
	if res.Skipped {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.ForecastResorts.WithLabelValues(res.Region.Label).Set(float64(res.Resorts))
	c.metrics.ForecastFailures.WithLabelValues(res.Region.Label).Set(float64(res.Failed))

	c.snap.ForecastResorts += res.Resorts
	c.snap.ForecastFailed += res.Failed
}

// ObserveStage records one stage result. Its signature fits
// stage.WithObserver.
func (c *Collector) ObserveStage(res stage.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.metrics.StageDuration.WithLabelValues(res.Name).Set(res.Elapsed.Seconds())
	c.metrics.StageSuccess.WithLabelValues(res.Name).Set(boolGauge(res.OK()))

	c.snap.StagesTotal++
	if !res.OK() {
		c.snap.FailedStages = append(c.snap.FailedStages, res.Name)
	}
}

// Snapshot stamps and returns a copy of what has been observed so far.
func (c *Collector) Snapshot() RunSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now().UTC()
	c.metrics.LastRun.Set(float64(now.Unix()))

	snap := c.snap
	snap.CollectedAt = now
	snap.FailedSources = append([]string(nil), c.snap.FailedSources...)
	snap.Placeholders = append([]string(nil), c.snap.Placeholders...)
	snap.FailedStages = append([]string(nil), c.snap.FailedStages...)
	return snap
}

// Flush writes the metrics textfile when path is set. A write failure is
// logged, never returned: metrics must not fail a run.
func (c *Collector) Flush(path string) {
	if path == "" {
		return
	}
	c.Snapshot()
	if err := c.metrics.WriteTextfile(path); err != nil {
		zap.L().Warn("monitoring: metrics not written", zap.Error(err))
		return
	}
	zap.L().Debug("monitoring: metrics written", zap.String("path", path))
}
