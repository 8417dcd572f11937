package publish

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/resilience"
	"github.com/gazette-evn/colorado-snow-conditions/pkg/sheets"
)

// SheetTarget is one spreadsheet tab to overwrite.
type SheetTarget struct {
	SpreadsheetID string
	SheetName     string
	// FormatHeader freezes, bolds, and auto-sizes the header after writing.
	FormatHeader bool
}

// SheetPublisher replaces a tab's contents with a fresh table.
type SheetPublisher struct {
	client sheets.Client
	retry  resilience.Policy
}

// NewSheetPublisher creates a SheetPublisher. Writes are retried on
// transient API errors with policy.
func NewSheetPublisher(client sheets.Client, policy resilience.Policy) *SheetPublisher {
	if policy.Notify == nil {
		policy.Notify = resilience.LogRetries("sheets", "write")
	}
	return &SheetPublisher{client: client, retry: policy}
}

// Publish clears the tab and writes values from A1. Header formatting is
// cosmetic, so its failure is logged and not returned.
func (p *SheetPublisher) Publish(ctx context.Context, t SheetTarget, values [][]any) error {
	if t.SpreadsheetID == "" {
		return eris.New("publish: spreadsheet id is empty")
	}
	name := t.SheetName
	if name == "" {
		name = "Sheet1"
	}
	log := zap.L().With(zap.String("spreadsheet", t.SpreadsheetID), zap.String("sheet", name))

	err := resilience.RetryErr(ctx, p.retry, func(ctx context.Context) error {
		return p.client.Clear(ctx, t.SpreadsheetID, name+"!A:Z")
	})
	if err != nil {
		return eris.Wrap(err, "publish: clear sheet")
	}

	resp, err := resilience.Retry(ctx, p.retry, func(ctx context.Context) (*sheets.UpdateResponse, error) {
		return p.client.Update(ctx, t.SpreadsheetID, name+"!A1", values)
	})
	if err != nil {
		return eris.Wrap(err, "publish: write sheet")
	}
	var cells int
	if resp != nil {
		cells = resp.UpdatedCells
	}
	log.Info("publish: sheet updated", zap.Int("rows", len(values)), zap.Int("cells", cells))

	if !t.FormatHeader || len(values) == 0 {
		return nil
	}
	if err := p.formatHeader(ctx, t.SpreadsheetID, name, len(values[0])); err != nil {
		log.Warn("publish: header formatting failed", zap.Error(err))
	}
	return nil
}

func (p *SheetPublisher) formatHeader(ctx context.Context, spreadsheetID, name string, columns int) error {
	id, err := p.client.SheetID(ctx, spreadsheetID, name)
	if err != nil {
		return err
	}
	return p.client.FormatHeader(ctx, spreadsheetID, id, columns)
}
