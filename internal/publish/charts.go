package publish

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"slices"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// MapRow is one marker on the snow map.
type MapRow struct {
	Lat           float64 `csv:"lat"`
	Lng           float64 `csv:"lng"`
	Resort        string  `csv:"resort_name"`
	BaseDepth     string  `csv:"base_depth_display"`
	MidMtnDepth   string  `csv:"mid_mtn_depth_display"`
	NewSnow24h    string  `csv:"new_snow_24h_display"`
	NewSnow48h    string  `csv:"new_snow_48h_display"`
	LiftsStatus   string  `csv:"lifts_status"`
	RunsStatus    string  `csv:"runs_status"`
	StatusDisplay string  `csv:"status_display"`
	Conditions    string  `csv:"conditions"`
}

// TableRow is one line of the snow table chart.
type TableRow struct {
	Resort      string `csv:"Resort"`
	NewSnow24h  int    `csv:"24h Snow (in)"`
	NewSnow48h  int    `csv:"48h Snow (in)"`
	BaseDepth   int    `csv:"Base Depth (in)"`
	MidMtnDepth int    `csv:"Mid-Mtn Depth (in)"`
	LiftsOpen   int    `csv:"Lifts Open"`
	TotalLifts  int    `csv:"Total Lifts"`
	LiftsPct    int    `csv:"Lifts (%)"`
	RunsOpen    int    `csv:"Runs Open"`
	TotalRuns   int    `csv:"Total Runs"`
	RunsPct     int    `csv:"Runs (%)"`
	Status      string `csv:"Status"`
	Conditions  string `csv:"Conditions"`
}

var statusDisplay = map[model.Status]string{
	model.StatusOpen:    "🟢 Open",
	model.StatusClosed:  "🔴 Closed",
	model.StatusLimited: "🟡 Limited",
}

// MapRows builds map markers. Resorts without coordinates cannot be placed
// and are left out.
func MapRows(recs []model.ResortRecord) []MapRow {
	var rows []MapRow
	for _, r := range recs {
		if !r.HasCoordinates() {
			continue
		}
		status, ok := statusDisplay[r.Status]
		if !ok {
			status = string(model.StatusUnknown)
		}
		rows = append(rows, MapRow{
			Lat:           *r.Latitude,
			Lng:           *r.Longitude,
			Resort:        r.Name,
			BaseDepth:     depthOrNA(r.BaseDepth),
			MidMtnDepth:   depthOrNA(r.MidMountainDepth),
			NewSnow24h:    inches(r.NewSnow24h),
			NewSnow48h:    inches(r.NewSnow48h),
			LiftsStatus:   ratio(r.OpenLifts, r.TotalLifts),
			RunsStatus:    ratio(r.OpenTrails, r.TotalTrails),
			StatusDisplay: status,
			Conditions:    r.SurfaceConditions,
		})
	}
	return rows
}

// TableRows builds the table chart, most new snow first. Ties keep the
// incoming order.
func TableRows(recs []model.ResortRecord) []TableRow {
	rows := make([]TableRow, 0, len(recs))
	for _, r := range recs {
		status := string(r.Status)
		if status == "" {
			status = string(model.StatusUnknown)
		}
		cond := r.SurfaceConditions
		if cond == "" {
			cond = "-"
		}
		rows = append(rows, TableRow{
			Resort:      r.Name,
			NewSnow24h:  r.NewSnow24h,
			NewSnow48h:  r.NewSnow48h,
			BaseDepth:   r.BaseDepth,
			MidMtnDepth: r.MidMountainDepth,
			LiftsOpen:   r.OpenLifts,
			TotalLifts:  model.IntValue(r.TotalLifts),
			LiftsPct:    int(r.LiftsOpenPct),
			RunsOpen:    r.OpenTrails,
			TotalRuns:   model.IntValue(r.TotalTrails),
			RunsPct:     int(r.TrailsOpenPct),
			Status:      status,
			Conditions:  cond,
		})
	}
	slices.SortStableFunc(rows, func(a, b TableRow) int {
		return cmp.Compare(b.NewSnow24h, a.NewSnow24h)
	})
	return rows
}

// MarshalCSV encodes rows with a header. An empty slice still yields the
// header so the chart keeps its columns.
func MarshalCSV[T any](rows []T) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	enc := csvutil.NewEncoder(w)

	if len(rows) == 0 {
		var zero T
		if err := enc.EncodeHeader(zero); err != nil {
			return nil, eris.Wrap(err, "publish: encode header")
		}
	} else if err := enc.Encode(rows); err != nil {
		return nil, eris.Wrap(err, "publish: encode rows")
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, eris.Wrap(err, "publish: flush csv")
	}
	return buf.Bytes(), nil
}

func depthOrNA(v int) string {
	if v <= 0 {
		return "N/A"
	}
	return inches(v)
}

func inches(v int) string {
	if v < 0 {
		v = 0
	}
	return fmt.Sprintf("%d\"", v)
}

func ratio(open int, total *int) string {
	if total == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d/%d", open, *total)
}
