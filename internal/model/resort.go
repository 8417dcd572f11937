package model

import (
	"math"
	"time"
)

// Status is the operating state a source reports for a resort.
type Status string

const (
	StatusOpen    Status = "Open"
	StatusClosed  Status = "Closed"
	StatusLimited Status = "Limited"
	StatusUnknown Status = "Unknown"
)

// ParseStatus maps free-form source text onto a Status. Anything that is not
// recognizably open, closed, or limited is Unknown.
func ParseStatus(s string) Status {
	switch normalizeStatus(s) {
	case "open", "opened", "operating":
		return StatusOpen
	case "closed", "close", "closedforseason", "seasonclosed":
		return StatusClosed
	case "limited", "partial", "partiallyopen", "limitedoperations":
		return StatusLimited
	default:
		return StatusUnknown
	}
}

func normalizeStatus(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		case r >= 'a' && r <= 'z':
			out = append(out, r)
		}
	}
	return string(out)
}

// SourceLabel identifies which adapter produced a record.
type SourceLabel string

const (
	SourceOfficial    SourceLabel = "Official"
	SourceAggregatorA SourceLabel = "AggregatorA"
	SourceAggregatorB SourceLabel = "AggregatorB"
	SourceManualEntry SourceLabel = "ManualEntry"
)

// ResortRecord is one row of the consolidated snow report. Optional values
// are pointers; nil means the source did not report the value at all, which
// is distinct from a reported zero.
type ResortRecord struct {
	Name              string      `json:"name"`
	Status            Status      `json:"status"`
	NewSnow24h        int         `json:"new_snow_24h"`
	NewSnow48h        int         `json:"new_snow_48h"`
	BaseDepth         int         `json:"base_depth"`
	MidMountainDepth  int         `json:"mid_mountain_depth"`
	SurfaceConditions string      `json:"surface_conditions,omitempty"`
	OpenLifts         int         `json:"open_lifts"`
	TotalLifts        *int        `json:"total_lifts,omitempty"`
	OpenTrails        int         `json:"open_trails"`
	TotalTrails       *int        `json:"total_trails,omitempty"`
	LiftsOpenPct      float64     `json:"lifts_open_pct"`
	TrailsOpenPct     float64     `json:"trails_open_pct"`
	Latitude          *float64    `json:"latitude,omitempty"`
	Longitude         *float64    `json:"longitude,omitempty"`
	Source            SourceLabel `json:"source"`
	FetchedAt         time.Time   `json:"fetched_at"`
}

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }

// IntValue dereferences p, returning 0 for nil.
func IntValue(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// OpenPct returns 100*open/total rounded to one decimal. It returns 0 when
// total is nil or not positive, so the result is never Inf or NaN.
func OpenPct(open int, total *int) float64 {
	if total == nil || *total <= 0 {
		return 0
	}
	return math.Round(1000*float64(open)/float64(*total)) / 10
}

// HasCoordinates reports whether both latitude and longitude are set.
func (r ResortRecord) HasCoordinates() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Clone returns a deep copy so pointer fields are not shared between records.
func (r ResortRecord) Clone() ResortRecord {
	c := r
	if r.TotalLifts != nil {
		c.TotalLifts = Int(*r.TotalLifts)
	}
	if r.TotalTrails != nil {
		c.TotalTrails = Int(*r.TotalTrails)
	}
	if r.Latitude != nil {
		c.Latitude = Float(*r.Latitude)
	}
	if r.Longitude != nil {
		c.Longitude = Float(*r.Longitude)
	}
	return c
}
