// Package reference holds the static per-resort facts (coordinates and
// lift/trail totals) used to backfill what live sources leave out.
package reference

import (
	"os"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/gazette-evn/colorado-snow-conditions/internal/names"
)

// MinContainmentLen is the shortest normalized key that may take part in a
// substring match. Shorter keys only match exactly.
const MinContainmentLen = 4

// Entry is the reference data for one resort. Every alias resolves to the
// same values as the canonical name.
type Entry struct {
	CanonicalName string   `yaml:"name"`
	Aliases       []string `yaml:"aliases,omitempty"`
	Lat           float64  `yaml:"lat"`
	Lng           float64  `yaml:"lng"`
	TotalTrails   int      `yaml:"total_trails"`
	TotalLifts    int      `yaml:"total_lifts"`
}

type key struct {
	norm  string
	entry int
}

// Table is an immutable lookup of reference entries. It is safe for
// concurrent use.
type Table struct {
	entries []Entry
	keys    []key
}

// NewTable builds a table from entries. Order matters: it breaks ties between
// equally good matches.
func NewTable(entries []Entry) *Table {
	t := &Table{entries: make([]Entry, len(entries))}
	copy(t.entries, entries)

	for i, e := range t.entries {
		for _, n := range append([]string{e.CanonicalName}, e.Aliases...) {
			if nk := names.Normalize(n); nk != "" {
				t.keys = append(t.keys, key{norm: nk, entry: i})
			}
		}
	}
	return t
}

// Len returns the number of resorts in the table.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns a copy of the table's entries in order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup resolves a raw resort name. An exact normalized match on the
// canonical name or any alias wins. Otherwise a key at least
// MinContainmentLen long that contains, or is contained in, the normalized
// name matches; the longest such key wins and table order breaks ties.
func (t *Table) Lookup(name string) (Entry, bool) {
	nk := names.Normalize(name)
	if nk == "" {
		return Entry{}, false
	}

	for _, k := range t.keys {
		if k.norm == nk {
			return t.entries[k.entry], true
		}
	}

	best, bestLen := -1, 0
	for _, k := range t.keys {
		kl := utf8.RuneCountInString(k.norm)
		if kl < MinContainmentLen || utf8.RuneCountInString(nk) < MinContainmentLen {
			continue
		}
		if !strings.Contains(nk, k.norm) && !strings.Contains(k.norm, nk) {
			continue
		}
		if kl > bestLen {
			best, bestLen = k.entry, kl
		}
	}
	if best < 0 {
		return Entry{}, false
	}
	return t.entries[best], true
}

type file struct {
	Resorts []Entry `yaml:"resorts"`
}

// LoadYAML reads a reference table from a YAML file of the form
// `resorts: [{name, aliases, lat, lng, total_trails, total_lifts}]`.
func LoadYAML(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "reference: read file")
	}

	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "reference: parse yaml")
	}
	if len(f.Resorts) == 0 {
		return nil, eris.Errorf("reference: %s has no resorts", path)
	}
	for i, e := range f.Resorts {
		if strings.TrimSpace(e.CanonicalName) == "" {
			return nil, eris.Errorf("reference: entry %d has no name", i)
		}
	}

	return NewTable(f.Resorts), nil
}
