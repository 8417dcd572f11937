// Package source holds the adapters that turn each upstream snow report into
// model.ResortRecord rows.
package source

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

var (
	// ErrNoRecords is returned when a source answered but yielded no resorts.
	ErrNoRecords = eris.New("source: no records")
	// ErrBlocked is returned when a source served an anti-bot page.
	ErrBlocked = eris.New("source: blocked")
)

// Adapter fetches one upstream source and coerces it into records. Fields
// the source does not report are left at their zero value or nil.
type Adapter interface {
	Name() model.SourceLabel
	Fetch(ctx context.Context) ([]model.ResortRecord, error)
}
