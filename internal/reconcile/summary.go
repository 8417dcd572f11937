package reconcile

import (
	"go.uber.org/zap"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

// Summary describes one reconcile run.
type Summary struct {
	// Fetched counts raw records per source before dedup.
	Fetched map[model.SourceLabel]int
	// Kept counts records per source label in the final table.
	Kept         map[model.SourceLabel]int
	Failed       []model.SourceLabel
	Clamped      int
	Duplicates   int
	Dropped      int
	Patched      int
	Placeholders []string
	// Unmatched lists resorts the reference table could not resolve.
	Unmatched []string
	Total     int
}

func newSummary() Summary {
	return Summary{
		Fetched: make(map[model.SourceLabel]int),
		Kept:    make(map[model.SourceLabel]int),
	}
}

// Log writes the summary as one structured line.
func (s Summary) Log() {
	fields := []zap.Field{
		zap.Int("total", s.Total),
		zap.Int("clamped", s.Clamped),
		zap.Int("duplicates", s.Duplicates),
		zap.Int("dropped", s.Dropped),
		zap.Int("patched", s.Patched),
		zap.Strings("placeholders", s.Placeholders),
		zap.Strings("unmatched", s.Unmatched),
	}
	for src, n := range s.Kept {
		fields = append(fields, zap.Int("kept_"+string(src), n))
	}
	failed := make([]string, len(s.Failed))
	for i, f := range s.Failed {
		failed[i] = string(f)
	}
	fields = append(fields, zap.Strings("failed_sources", failed))

	zap.L().Info("reconcile: summary", fields...)
}
