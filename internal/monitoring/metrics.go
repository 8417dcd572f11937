package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rotisserie/eris"
)

const namespace = "snow"

// Metrics holds the Prometheus gauges describing one update run. Each
// instance owns its registry so a run can be written out as a textfile for
// the node exporter to pick up.
type Metrics struct {
	reg *prometheus.Registry

	SourceRecords  *prometheus.GaugeVec // labels: source
	SourceUp       *prometheus.GaugeVec // labels: source
	SourceDuration *prometheus.GaugeVec // labels: source

	Resorts      prometheus.Gauge
	Clamped      prometheus.Gauge
	Duplicates   prometheus.Gauge
	Placeholders prometheus.Gauge
	Unmatched    prometheus.Gauge

	ForecastResorts  *prometheus.GaugeVec // labels: region
	ForecastFailures *prometheus.GaugeVec // labels: region

	StageDuration *prometheus.GaugeVec // labels: stage
	StageSuccess  *prometheus.GaugeVec // labels: stage

	LastRun prometheus.Gauge
}

// NewMetrics creates the run metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		SourceRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_records",
			Help:      "Raw records returned by each source adapter.",
		}, []string{"source"}),
		SourceUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_up",
			Help:      "1 when the source contributed records, 0 when it failed or returned nothing.",
		}, []string{"source"}),
		SourceDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_duration_seconds",
			Help:      "Wall time spent in each source adapter.",
		}, []string{"source"}),
		Resorts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "resorts",
			Help:      "Resorts in the consolidated table.",
		}),
		Clamped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snowfall_clamped",
			Help:      "Snowfall figures capped as outliers.",
		}),
		Duplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicates_dropped",
			Help:      "Lower-priority records dropped as duplicates.",
		}),
		Placeholders: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "placeholders",
			Help:      "Must-include resorts filled with a closed placeholder.",
		}),
		Unmatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reference_unmatched",
			Help:      "Resorts the reference table could not resolve.",
		}),
		ForecastResorts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_resorts",
			Help:      "Resorts a forecast was requested for.",
		}, []string{"region"}),
		ForecastFailures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forecast_failures",
			Help:      "Forecast lookups that failed after retries.",
		}, []string{"region"}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each update stage.",
		}, []string{"stage"}),
		StageSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stage_success",
			Help:      "1 when the stage succeeded, 0 otherwise.",
		}, []string{"stage"}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the run finished.",
		}),
	}

	m.reg.MustRegister(
		m.SourceRecords,
		m.SourceUp,
		m.SourceDuration,
		m.Resorts,
		m.Clamped,
		m.Duplicates,
		m.Placeholders,
		m.Unmatched,
		m.ForecastResorts,
		m.ForecastFailures,
		m.StageDuration,
		m.StageSuccess,
		m.LastRun,
	)

	return m
}

// Registry exposes the registry the metrics live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile writes every metric in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return eris.Wrapf(err, "monitoring: write metrics %s", path)
	}
	return nil
}

func boolGauge(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}
