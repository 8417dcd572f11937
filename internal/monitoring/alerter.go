package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/config"
)

// AlertType identifies the kind of alert.
type AlertType string

const (
	AlertAllSourcesFailed AlertType = "all_sources_failed"
	AlertSourceFailure    AlertType = "source_failure"
	AlertPlaceholders     AlertType = "placeholders"
	AlertForecastFailures AlertType = "forecast_failures"
	AlertStageFailure     AlertType = "stage_failure"
)

// Alert represents a single alert to be sent.
type Alert struct {
	Type      AlertType      `json:"type"`
	Severity  string         `json:"severity"`
	RunID     string         `json:"run_id,omitempty"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Alerter evaluates a RunSnapshot against configured thresholds
// and sends alerts via webhook when thresholds are breached.
type Alerter struct {
	cfg    config.MonitoringConfig
	client *http.Client
}

// NewAlerter creates a new Alerter with the given monitoring config.
func NewAlerter(cfg config.MonitoringConfig) *Alerter {
	return &Alerter{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Evaluate checks the snapshot against thresholds and returns any alerts.
func (a *Alerter) Evaluate(snap RunSnapshot) []Alert {
	var alerts []Alert
	now := snap.CollectedAt
	if now.IsZero() {
		now = time.Now().UTC()
	}
	add := func(t AlertType, severity, msg string, details map[string]any) {
		alerts = append(alerts, Alert{
			Type:      t,
			Severity:  severity,
			RunID:     snap.RunID,
			Message:   msg,
			Details:   details,
			Timestamp: now,
		})
	}

	// Source health.
	switch {
	case snap.AllSourcesFailed():
		add(AlertAllSourcesFailed, "critical",
			fmt.Sprintf("All %d sources failed; no conditions were published", snap.SourcesTotal),
			map[string]any{"failed_sources": snap.FailedSources},
		)
	case len(snap.FailedSources) > 0:
		add(AlertSourceFailure, "warning",
			fmt.Sprintf("%d of %d sources failed: %s",
				len(snap.FailedSources), snap.SourcesTotal, strings.Join(snap.FailedSources, ", "),
			),
			map[string]any{"failed_sources": snap.FailedSources},
		)
	}

	// Placeholder surge usually means a source silently dropped resorts.
	if a.cfg.PlaceholderThreshold > 0 && len(snap.Placeholders) > a.cfg.PlaceholderThreshold {
		add(AlertPlaceholders, "warning",
			fmt.Sprintf("%d resorts filled with placeholders (threshold %d)",
				len(snap.Placeholders), a.cfg.PlaceholderThreshold,
			),
			map[string]any{
				"placeholders": snap.Placeholders,
				"threshold":    a.cfg.PlaceholderThreshold,
			},
		)
	}

	// Forecast failure rate.
	if rate := snap.ForecastFailRate(); snap.ForecastResorts > 0 && rate > a.cfg.ForecastFailureThreshold {
		add(AlertForecastFailures, "high",
			fmt.Sprintf("Forecast failure rate %.1f%% exceeds threshold %.1f%% (%d of %d resorts)",
				rate*100, a.cfg.ForecastFailureThreshold*100, snap.ForecastFailed, snap.ForecastResorts,
			),
			map[string]any{
				"failure_rate": rate,
				"threshold":    a.cfg.ForecastFailureThreshold,
				"failed":       snap.ForecastFailed,
				"resorts":      snap.ForecastResorts,
			},
		)
	}

	// Stage failures.
	if len(snap.FailedStages) > 0 {
		add(AlertStageFailure, "high",
			fmt.Sprintf("%d of %d stages failed: %s",
				len(snap.FailedStages), snap.StagesTotal, strings.Join(snap.FailedStages, ", "),
			),
			map[string]any{"failed_stages": snap.FailedStages},
		)
	}

	return alerts
}

// SendAlerts delivers alerts to the configured webhook URL.
// Returns the number of alerts successfully sent.
func (a *Alerter) SendAlerts(ctx context.Context, alerts []Alert) int {
	if a.cfg.WebhookURL == "" || len(alerts) == 0 {
		return 0
	}

	sent := 0
	for _, alert := range alerts {
		if err := a.sendWebhook(ctx, alert); err != nil {
			zap.L().Error("monitoring: failed to send alert",
				zap.String("type", string(alert.Type)),
				zap.Error(err),
			)
			continue
		}
		zap.L().Info("monitoring: alert sent",
			zap.String("type", string(alert.Type)),
			zap.String("severity", alert.Severity),
		)
		sent++
	}
	return sent
}

// Check evaluates the snapshot, logs every alert, and sends them.
func (a *Alerter) Check(ctx context.Context, snap RunSnapshot) []Alert {
	alerts := a.Evaluate(snap)
	for _, al := range alerts {
		zap.L().Warn("monitoring: alert",
			zap.String("type", string(al.Type)),
			zap.String("severity", al.Severity),
			zap.String("message", al.Message),
		)
	}
	a.SendAlerts(ctx, alerts)
	return alerts
}

// sendWebhook posts a single alert to the webhook URL.
func (a *Alerter) sendWebhook(ctx context.Context, alert Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return eris.Wrap(err, "monitoring: marshal alert")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "monitoring: create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "monitoring: webhook request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		return eris.Errorf("monitoring: webhook returned status %d", resp.StatusCode)
	}
	return nil
}
