// Package reconcile merges per-source resort tables into one consolidated
// table: outlier guard, priority dedup, authoritative patch, reference
// backfill, must-include placeholders, and a final sort by name.
package reconcile

import (
	"slices"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
	"github.com/gazette-evn/colorado-snow-conditions/internal/names"
	"github.com/gazette-evn/colorado-snow-conditions/internal/reference"
)

// ErrNoData is returned when no source contributed a single record.
var ErrNoData = eris.New("reconcile: no source returned data")

// SourceResult is the outcome of one adapter run.
type SourceResult struct {
	Source  model.SourceLabel
	Records []model.ResortRecord
	Err     error
	Elapsed time.Duration
}

// OK reports whether the source contributed anything.
func (r SourceResult) OK() bool {
	return r.Err == nil && len(r.Records) > 0
}

// Options configures a Reconciler.
type Options struct {
	// Max24hSnowfall caps new snow figures; larger values are treated as
	// source glitches.
	Max24hSnowfall int
	// Priority orders sources, highest first. Sources not listed rank after
	// every listed one, in the order they were passed.
	Priority []model.SourceLabel
	// Authoritative names the source whose records replace merged ones
	// outright. Empty disables the patch.
	Authoritative model.SourceLabel
	// MustInclude lists resorts that always appear in the output.
	MustInclude []string
	// Clock stamps placeholder records. Nil means the real clock.
	Clock clockwork.Clock
}

// Reconciler merges source results. It holds no mutable state and is safe to
// reuse.
type Reconciler struct {
	ref  *reference.Table
	opts Options
}

// New creates a Reconciler over the given reference table.
func New(ref *reference.Table, opts Options) *Reconciler {
	if ref == nil {
		ref = reference.NewTable(nil)
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Reconciler{ref: ref, opts: opts}
}

// Result is the consolidated table and what it took to build it.
type Result struct {
	Records []model.ResortRecord
	Summary Summary
}

// Reconcile merges results. Failed or empty sources contribute nothing; when
// every source is failed or empty it returns ErrNoData and no records.
func (r *Reconciler) Reconcile(results []SourceResult) (Result, error) {
	sum := newSummary()
	ordered := r.byPriority(results)

	var usable int
	for i := range ordered {
		res := &ordered[i]
		sum.Fetched[res.Source] += len(res.Records)
		if !res.OK() {
			sum.Failed = append(sum.Failed, res.Source)
			zap.L().Warn("reconcile: source contributed nothing",
				zap.String("source", string(res.Source)),
				zap.Int("records", len(res.Records)),
				zap.Error(res.Err),
			)
			continue
		}
		usable++
		res.Records = r.guard(res.Records, &sum)
	}
	if usable == 0 {
		return Result{Summary: sum}, ErrNoData
	}

	merged := r.merge(ordered, &sum)
	merged = r.patchAuthoritative(merged, ordered, &sum)
	r.backfill(merged, &sum)
	merged = r.addPlaceholders(merged, &sum)

	slices.SortStableFunc(merged, func(a, b model.ResortRecord) int {
		return strings.Compare(a.Name, b.Name)
	})

	for _, rec := range merged {
		sum.Kept[rec.Source]++
	}
	sum.Total = len(merged)
	return Result{Records: merged, Summary: sum}, nil
}

// byPriority returns a copy of results ordered by the configured priority.
func (r *Reconciler) byPriority(results []SourceResult) []SourceResult {
	rank := func(s model.SourceLabel) int {
		if i := slices.Index(r.opts.Priority, s); i >= 0 {
			return i
		}
		return len(r.opts.Priority)
	}
	out := slices.Clone(results)
	slices.SortStableFunc(out, func(a, b SourceResult) int {
		return rank(a.Source) - rank(b.Source)
	})
	return out
}

// guard caps snow figures and floors negative counts. It works on copies so
// callers' slices are left untouched.
func (r *Reconciler) guard(recs []model.ResortRecord, sum *Summary) []model.ResortRecord {
	out := make([]model.ResortRecord, 0, len(recs))
	limit := r.opts.Max24hSnowfall
	for _, rec := range recs {
		rec = rec.Clone()
		if limit > 0 && rec.NewSnow24h > limit {
			zap.L().Warn("reconcile: clamping 24h snowfall outlier",
				zap.String("resort", rec.Name),
				zap.String("source", string(rec.Source)),
				zap.Int("reported", rec.NewSnow24h),
				zap.Int("cap", limit),
			)
			rec.NewSnow24h = limit
			sum.Clamped++
		}
		if limit > 0 && rec.NewSnow48h > limit {
			zap.L().Warn("reconcile: clamping 48h snowfall outlier",
				zap.String("resort", rec.Name),
				zap.Int("reported", rec.NewSnow48h),
				zap.Int("cap", limit),
			)
			rec.NewSnow48h = limit
			sum.Clamped++
		}
		floorZero(&rec.NewSnow24h, &rec.NewSnow48h, &rec.BaseDepth, &rec.MidMountainDepth, &rec.OpenLifts, &rec.OpenTrails)
		out = append(out, rec)
	}
	return out
}

func floorZero(vals ...*int) {
	for _, v := range vals {
		if *v < 0 {
			*v = 0
		}
	}
}

// merge concatenates sources in priority order and keeps the first record per
// normalized name.
func (r *Reconciler) merge(ordered []SourceResult, sum *Summary) []model.ResortRecord {
	seen := make(map[string]bool)
	var out []model.ResortRecord
	for _, res := range ordered {
		if !res.OK() {
			continue
		}
		for _, rec := range res.Records {
			key := names.Normalize(rec.Name)
			if key == "" {
				sum.Dropped++
				zap.L().Warn("reconcile: dropping record without a usable name",
					zap.String("name", rec.Name),
					zap.String("source", string(res.Source)),
				)
				continue
			}
			if seen[key] {
				sum.Duplicates++
				continue
			}
			seen[key] = true
			rec.Source = res.Source
			out = append(out, rec)
		}
	}
	return out
}

// patchAuthoritative replaces merged records with the authoritative source's
// record for the same resort. An authoritative resort missing from the merge
// is appended.
func (r *Reconciler) patchAuthoritative(merged []model.ResortRecord, ordered []SourceResult, sum *Summary) []model.ResortRecord {
	if r.opts.Authoritative == "" {
		return merged
	}
	for _, res := range ordered {
		if res.Source != r.opts.Authoritative || !res.OK() {
			continue
		}
		for _, auth := range res.Records {
			key := names.Normalize(auth.Name)
			if key == "" {
				continue
			}
			patch := auth.Clone()
			patch.Source = r.opts.Authoritative

			i := slices.IndexFunc(merged, func(m model.ResortRecord) bool {
				return m.Name == auth.Name || names.Normalize(m.Name) == key
			})
			if i < 0 {
				merged = append(merged, patch)
				sum.Patched++
				continue
			}
			if merged[i].Source != r.opts.Authoritative {
				zap.L().Debug("reconcile: authoritative replace",
					zap.String("resort", auth.Name),
					zap.String("replaced", string(merged[i].Source)),
				)
			}
			merged[i] = patch
			sum.Patched++
		}
	}
	return merged
}

// backfill fills coordinates and missing totals from the reference table,
// derives unknown statuses, and computes open percentages. The authoritative
// source's status is kept as reported, Unknown included.
func (r *Reconciler) backfill(recs []model.ResortRecord, sum *Summary) {
	for i := range recs {
		rec := &recs[i]
		if e, ok := r.ref.Lookup(rec.Name); ok {
			rec.Latitude = model.Float(e.Lat)
			rec.Longitude = model.Float(e.Lng)
			if rec.TotalTrails == nil && e.TotalTrails > 0 {
				rec.TotalTrails = model.Int(e.TotalTrails)
			}
			if rec.TotalLifts == nil && e.TotalLifts > 0 {
				rec.TotalLifts = model.Int(e.TotalLifts)
			}
		} else {
			sum.Unmatched = append(sum.Unmatched, rec.Name)
			zap.L().Warn("reconcile: no reference data", zap.String("resort", rec.Name))
		}

		if rec.Source != r.opts.Authoritative && (rec.Status == model.StatusUnknown || rec.Status == "") {
			rec.Status = deriveStatus(*rec)
		}

		warnOverTotal(rec.Name, "trails", rec.OpenTrails, rec.TotalTrails)
		warnOverTotal(rec.Name, "lifts", rec.OpenLifts, rec.TotalLifts)
		rec.TrailsOpenPct = model.OpenPct(rec.OpenTrails, rec.TotalTrails)
		rec.LiftsOpenPct = model.OpenPct(rec.OpenLifts, rec.TotalLifts)
	}
}

// LimitedThreshold is the open-terrain percentage below which an operating
// resort is reported as Limited.
const LimitedThreshold = 25.0

// deriveStatus infers a status from terrain counts: trails when the total is
// known, lifts otherwise.
func deriveStatus(rec model.ResortRecord) model.Status {
	open, total := rec.OpenTrails, rec.TotalTrails
	if model.IntValue(total) <= 0 {
		open, total = rec.OpenLifts, rec.TotalLifts
	}
	switch {
	case open <= 0:
		return model.StatusClosed
	case model.IntValue(total) > 0 && model.OpenPct(open, total) < LimitedThreshold:
		return model.StatusLimited
	default:
		return model.StatusOpen
	}
}

func warnOverTotal(name, what string, open int, total *int) {
	if total != nil && open > *total {
		zap.L().Warn("reconcile: more open than total",
			zap.String("resort", name),
			zap.String("kind", what),
			zap.Int("open", open),
			zap.Int("total", *total),
		)
	}
}

// addPlaceholders appends a Closed record for each must-include resort no
// current record matches.
func (r *Reconciler) addPlaceholders(recs []model.ResortRecord, sum *Summary) []model.ResortRecord {
	now := r.opts.Clock.Now()
	for _, want := range r.opts.MustInclude {
		if names.Normalize(want) == "" {
			continue
		}
		if r.present(recs, want) {
			continue
		}

		ph := model.ResortRecord{
			Name:      want,
			Status:    model.StatusClosed,
			Source:    model.SourceManualEntry,
			FetchedAt: now,
		}
		if e, ok := r.ref.Lookup(want); ok {
			ph.Latitude = model.Float(e.Lat)
			ph.Longitude = model.Float(e.Lng)
			if e.TotalTrails > 0 {
				ph.TotalTrails = model.Int(e.TotalTrails)
			}
			if e.TotalLifts > 0 {
				ph.TotalLifts = model.Int(e.TotalLifts)
			}
		} else {
			sum.Unmatched = append(sum.Unmatched, want)
			zap.L().Warn("reconcile: placeholder has no reference data", zap.String("resort", want))
		}

		zap.L().Info("reconcile: adding placeholder", zap.String("resort", want))
		recs = append(recs, ph)
		sum.Placeholders = append(sum.Placeholders, want)
	}
	return recs
}

// present reports whether any record already stands for want. Names the
// reference table knows are compared by the entry they resolve to, so
// "Aspen Mountain" does not count as "Aspen Highlands". Other names fall back
// to normalized containment.
func (r *Reconciler) present(recs []model.ResortRecord, want string) bool {
	wantEntry, known := r.ref.Lookup(want)
	for _, rec := range recs {
		if names.Equal(rec.Name, want) {
			return true
		}
		if !known {
			if names.Contains(rec.Name, want) {
				return true
			}
			continue
		}
		if e, ok := r.ref.Lookup(rec.Name); ok && e.CanonicalName == wantEntry.CanonicalName {
			return true
		}
	}
	return false
}
