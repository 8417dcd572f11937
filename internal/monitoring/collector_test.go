package monitoring

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazette-evn/colorado-snow-conditions/internal/forecast"
	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reconcile"
	"github.com/gazette-evn/colorado-snow-conditions/internal/stage"
)

func sampleSources() []reconcile.SourceResult {
	return []reconcile.SourceResult{
		{
			Source:  model.SourceAggregatorA,
			Records: []model.ResortRecord{{Name: "Vail"}, {Name: "Keystone"}},
			Elapsed: 2 * time.Second,
		},
		{
			Source:  model.SourceAggregatorB,
			Err:     errors.New("blocked"),
			Elapsed: 500 * time.Millisecond,
		},
	}
}

func TestCollector_ObserveSources(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.ObserveSources(sampleSources())

	m := c.Metrics()
	assert.InDelta(t, 2, testutil.ToFloat64(m.SourceRecords.WithLabelValues("AggregatorA")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SourceUp.WithLabelValues("AggregatorA")), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(m.SourceUp.WithLabelValues("AggregatorB")), 1e-9)
	assert.InDelta(t, 0.5, testutil.ToFloat64(m.SourceDuration.WithLabelValues("AggregatorB")), 1e-9)

	snap := c.Snapshot()
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, 2, snap.SourcesTotal)
	assert.Equal(t, []string{"AggregatorB"}, snap.FailedSources)
	assert.False(t, snap.AllSourcesFailed())
}

func TestCollector_ObserveReconcile(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.ObserveReconcile(reconcile.Summary{
		Total:        27,
		Clamped:      1,
		Duplicates:   9,
		Placeholders: []string{"Wolf Creek", "Loveland"},
		Unmatched:    []string{"Bluebird Backcountry"},
	})

	m := c.Metrics()
	assert.InDelta(t, 27, testutil.ToFloat64(m.Resorts), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Clamped), 1e-9)
	assert.InDelta(t, 9, testutil.ToFloat64(m.Duplicates), 1e-9)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Placeholders), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Unmatched), 1e-9)

	snap := c.Snapshot()
	assert.Equal(t, 27, snap.Resorts)
	assert.Equal(t, []string{"Wolf Creek", "Loveland"}, snap.Placeholders)
}

func TestCollector_ObserveForecast(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.ObserveForecast(forecast.RegionResult{Region: forecast.Region{Label: "CO"}, Resorts: 28, Failed: 3})
	c.ObserveForecast(forecast.RegionResult{Region: forecast.Region{Label: "CA"}, Skipped: true})

	m := c.Metrics()
	assert.InDelta(t, 28, testutil.ToFloat64(m.ForecastResorts.WithLabelValues("CO")), 1e-9)
	assert.InDelta(t, 3, testutil.ToFloat64(m.ForecastFailures.WithLabelValues("CO")), 1e-9)
	assert.Equal(t, 1, testutil.CollectAndCount(m.ForecastResorts))

	snap := c.Snapshot()
	assert.Equal(t, 28, snap.ForecastResorts)
	assert.Equal(t, 3, snap.ForecastFailed)
	assert.InDelta(t, 3.0/28.0, snap.ForecastFailRate(), 1e-9)
}

func TestCollector_ObserveStageViaRunner(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.ObserveStage(stage.Result{Name: "scrape", Elapsed: 3 * time.Second})
	c.ObserveStage(stage.Result{Name: "sheets", Err: errors.New("quota")})

	m := c.Metrics()
	assert.InDelta(t, 3, testutil.ToFloat64(m.StageDuration.WithLabelValues("scrape")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StageSuccess.WithLabelValues("scrape")), 1e-9)
	assert.InDelta(t, 0, testutil.ToFloat64(m.StageSuccess.WithLabelValues("sheets")), 1e-9)

	snap := c.Snapshot()
	assert.Equal(t, 2, snap.StagesTotal)
	assert.Equal(t, []string{"sheets"}, snap.FailedStages)
}

func TestCollector_SnapshotStampsClock(t *testing.T) {
	at := time.Date(2026, 1, 15, 13, 0, 0, 0, time.UTC)
	c := NewCollector("run-1", clockwork.NewFakeClockAt(at))

	snap := c.Snapshot()
	assert.Equal(t, at, snap.CollectedAt)
	assert.InDelta(t, float64(at.Unix()), testutil.ToFloat64(c.Metrics().LastRun), 1e-9)
}

func TestCollector_SnapshotIsACopy(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.ObserveSources(sampleSources())

	snap := c.Snapshot()
	snap.FailedSources[0] = "mutated"

	assert.Equal(t, []string{"AggregatorB"}, c.Snapshot().FailedSources)
}

func TestRunSnapshot_AllSourcesFailed(t *testing.T) {
	assert.False(t, RunSnapshot{}.AllSourcesFailed())
	assert.True(t, RunSnapshot{SourcesTotal: 1, FailedSources: []string{"Official"}}.AllSourcesFailed())
	assert.Zero(t, RunSnapshot{}.ForecastFailRate())
}

func TestCollector_FlushWritesTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snow.prom")
	c := NewCollector("run-1", nil)
	c.ObserveSources(sampleSources())
	c.ObserveStage(stage.Result{Name: "scrape"})

	c.Flush(path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	body := string(data)
	assert.Contains(t, body, `snow_source_up{source="AggregatorA"} 1`)
	assert.Contains(t, body, `snow_stage_success{stage="scrape"} 1`)
	assert.Contains(t, body, "snow_last_run_timestamp_seconds")
}

func TestCollector_FlushWithoutPathIsNoop(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.Flush("")
}

func TestCollector_FlushBadPathDoesNotPanic(t *testing.T) {
	c := NewCollector("run-1", nil)
	c.Flush(filepath.Join(t.TempDir(), "missing", "dir", "snow.prom"))
}
