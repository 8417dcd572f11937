// Package publish shapes the consolidated table for spreadsheets and charts
// and pushes it there.
package publish

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// UpdatedLayout formats the "Last Updated" column.
const UpdatedLayout = "2006-01-02 15:04"

// ConditionsHeader is the conditions sheet header row.
var ConditionsHeader = []string{
	"Resort Name",
	"Latitude",
	"Longitude",
	"Status",
	"24h Snowfall (in)",
	"48h Snowfall (in)",
	"Base Depth (in)",
	"Mid-Mtn Depth (in)",
	"Surface Conditions",
	"Total Trails",
	"Open Trails",
	"Trails Open %",
	"Total Lifts",
	"Open Lifts",
	"Lifts Open %",
	"Data Source",
	"Last Updated",
}

// ConditionsValues maps records to sheet rows, header first. Unreported
// totals and coordinates become empty cells. Every row is stamped with now
// in tz.
func ConditionsValues(recs []model.ResortRecord, now time.Time, tz *time.Location) [][]any {
	if tz == nil {
		tz = time.UTC
	}
	stamp := now.In(tz).Format(UpdatedLayout)

	header := make([]any, len(ConditionsHeader))
	for i, h := range ConditionsHeader {
		header[i] = h
	}
	values := [][]any{header}

	for _, r := range recs {
		status := string(r.Status)
		if status == "" {
			status = string(model.StatusUnknown)
		}
		values = append(values, []any{
			r.Name,
			floatCell(r.Latitude),
			floatCell(r.Longitude),
			status,
			r.NewSnow24h,
			r.NewSnow48h,
			r.BaseDepth,
			r.MidMountainDepth,
			r.SurfaceConditions,
			intCell(r.TotalTrails),
			r.OpenTrails,
			r.TrailsOpenPct,
			intCell(r.TotalLifts),
			r.OpenLifts,
			r.LiftsOpenPct,
			string(r.Source),
			stamp,
		})
	}
	return values
}

// CSVValues reads any CSV file into sheet rows. Cells that parse as numbers
// are sent as numbers so the sheet can chart them.
func CSVValues(path string) ([][]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "publish: open csv")
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var values [][]any
	for first := true; ; first = false {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "publish: read %s", path)
		}
		row := make([]any, len(rec))
		for i, cell := range rec {
			row[i] = cell
			if first {
				continue
			}
			if n, err := strconv.ParseFloat(cell, 64); err == nil {
				row[i] = n
			}
		}
		values = append(values, row)
	}
	return values, nil
}

func intCell(p *int) any {
	if p == nil {
		return ""
	}
	return *p
}

func floatCell(p *float64) any {
	if p == nil {
		return ""
	}
	return *p
}
