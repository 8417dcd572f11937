// Package export writes the consolidated resort table to flat files.
package export

import (
	"time"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// Row is the on-disk shape of one resort. Columns follow the record's field
// order; a nil total is written as an empty cell.
type Row struct {
	Name              string            `csv:"name"`
	Status            model.Status      `csv:"status"`
	NewSnow24h        int               `csv:"new_snow_24h"`
	NewSnow48h        int               `csv:"new_snow_48h"`
	BaseDepth         int               `csv:"base_depth"`
	MidMountainDepth  int               `csv:"mid_mountain_depth"`
	SurfaceConditions string            `csv:"surface_conditions"`
	OpenLifts         int               `csv:"open_lifts"`
	TotalLifts        *int              `csv:"total_lifts"`
	OpenTrails        int               `csv:"open_trails"`
	TotalTrails       *int              `csv:"total_trails"`
	LiftsOpenPct      float64           `csv:"lifts_open_pct"`
	TrailsOpenPct     float64           `csv:"trails_open_pct"`
	Latitude          *float64          `csv:"latitude"`
	Longitude         *float64          `csv:"longitude"`
	Source            model.SourceLabel `csv:"source"`
	FetchedAt         time.Time         `csv:"fetched_at"`
}

// FromRecord converts a record to its row form.
func FromRecord(r model.ResortRecord) Row {
	r = r.Clone()
	return Row{
		Name:              r.Name,
		Status:            r.Status,
		NewSnow24h:        r.NewSnow24h,
		NewSnow48h:        r.NewSnow48h,
		BaseDepth:         r.BaseDepth,
		MidMountainDepth:  r.MidMountainDepth,
		SurfaceConditions: r.SurfaceConditions,
		OpenLifts:         r.OpenLifts,
		TotalLifts:        r.TotalLifts,
		OpenTrails:        r.OpenTrails,
		TotalTrails:       r.TotalTrails,
		LiftsOpenPct:      r.LiftsOpenPct,
		TrailsOpenPct:     r.TrailsOpenPct,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Source:            r.Source,
		FetchedAt:         r.FetchedAt,
	}
}

// Record converts the row back to a record.
func (r Row) Record() model.ResortRecord {
	return model.ResortRecord{
		Name:              r.Name,
		Status:            r.Status,
		NewSnow24h:        r.NewSnow24h,
		NewSnow48h:        r.NewSnow48h,
		BaseDepth:         r.BaseDepth,
		MidMountainDepth:  r.MidMountainDepth,
		SurfaceConditions: r.SurfaceConditions,
		OpenLifts:         r.OpenLifts,
		TotalLifts:        r.TotalLifts,
		OpenTrails:        r.OpenTrails,
		TotalTrails:       r.TotalTrails,
		LiftsOpenPct:      r.LiftsOpenPct,
		TrailsOpenPct:     r.TrailsOpenPct,
		Latitude:          r.Latitude,
		Longitude:         r.Longitude,
		Source:            r.Source,
		FetchedAt:         r.FetchedAt,
	}.Clone()
}

// values returns the row's cells in column order. Nil pointers come back as
// nil so sinks can leave the cell empty.
func (r Row) values() []any {
	return []any{
		r.Name,
		string(r.Status),
		r.NewSnow24h,
		r.NewSnow48h,
		r.BaseDepth,
		r.MidMountainDepth,
		r.SurfaceConditions,
		r.OpenLifts,
		intOrNil(r.TotalLifts),
		r.OpenTrails,
		intOrNil(r.TotalTrails),
		r.LiftsOpenPct,
		r.TrailsOpenPct,
		floatOrNil(r.Latitude),
		floatOrNil(r.Longitude),
		string(r.Source),
		r.FetchedAt.UTC().Format(time.RFC3339),
	}
}

func intOrNil(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

func floatOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func toRows(recs []model.ResortRecord) []Row {
	rows := make([]Row, len(recs))
	for i, r := range recs {
		rows[i] = FromRecord(r)
	}
	return rows
}
