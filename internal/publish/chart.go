package publish

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/datawrapper"
)

// ChartIDs names the Datawrapper charts to refresh. An empty ID is skipped.
type ChartIDs struct {
	Map   string
	Table string
}

// ChartPublisher uploads the consolidated table to Datawrapper charts.
type ChartPublisher struct {
	client datawrapper.Client
	ids    ChartIDs
	retry  resilience.Policy
}

// NewChartPublisher creates a ChartPublisher.
func NewChartPublisher(client datawrapper.Client, ids ChartIDs, policy resilience.Policy) *ChartPublisher {
	if policy.Notify == nil {
		policy.Notify = resilience.LogRetries("datawrapper", "publish")
	}
	return &ChartPublisher{client: client, ids: ids, retry: policy}
}

// Publish refreshes every configured chart. It stops at the first chart that
// fails.
func (p *ChartPublisher) Publish(ctx context.Context, recs []model.ResortRecord) error {
	if p.ids.Map == "" && p.ids.Table == "" {
		zap.L().Info("publish: no chart ids configured, skipping charts")
		return nil
	}

	if p.ids.Map != "" {
		data, err := MarshalCSV(MapRows(recs))
		if err != nil {
			return err
		}
		if err := p.refresh(ctx, "map", p.ids.Map, data); err != nil {
			return err
		}
	}
	if p.ids.Table != "" {
		data, err := MarshalCSV(TableRows(recs))
		if err != nil {
			return err
		}
		if err := p.refresh(ctx, "table", p.ids.Table, data); err != nil {
			return err
		}
	}
	return nil
}

func (p *ChartPublisher) refresh(ctx context.Context, kind, chartID string, data []byte) error {
	err := resilience.RetryErr(ctx, p.retry, func(ctx context.Context) error {
		return p.client.UploadCSV(ctx, chartID, data)
	})
	if err != nil {
		return eris.Wrapf(err, "publish: upload %s chart", kind)
	}

	resp, err := resilience.Retry(ctx, p.retry, func(ctx context.Context) (*datawrapper.PublishResponse, error) {
		return p.client.Publish(ctx, chartID)
	})
	if err != nil {
		return eris.Wrapf(err, "publish: publish %s chart", kind)
	}

	fields := []zap.Field{zap.String("chart", chartID), zap.String("kind", kind), zap.Int("bytes", len(data))}
	if resp != nil && resp.Data.PublicURL != "" {
		fields = append(fields, zap.String("url", resp.Data.PublicURL))
	}
	zap.L().Info("publish: chart published", fields...)
	return nil
}
