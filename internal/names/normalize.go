// Package names canonicalizes resort names so the same resort reported by
// different sources ("Keystone", "Keystone Resort") compares equal.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// suffixes are stripped from the end of a name, repeatedly and in any order.
// Longer phrases come first so "mountain resort" is removed as one unit.
var suffixes = []string{
	"mountain resort",
	"ski resort",
	"ski area",
	"resort",
	"mountain",
}

// Normalize maps a raw resort name to its comparison key: accents folded,
// lower-cased, whitespace collapsed, and trailing suffix phrases removed.
// It never fails and is idempotent.
func Normalize(raw string) string {
	s := strings.ToLower(foldAccents(raw))
	s = strings.Join(strings.Fields(s), " ")

	for {
		trimmed := stripSuffix(s)
		if trimmed == s {
			return s
		}
		s = trimmed
	}
}

func stripSuffix(s string) string {
	for _, suf := range suffixes {
		if s == suf {
			return ""
		}
		if strings.HasSuffix(s, " "+suf) {
			return strings.TrimSpace(strings.TrimSuffix(s, suf))
		}
	}
	return s
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Equal reports whether two raw names normalize to the same key.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// Contains reports whether either normalized name contains the other. Empty
// keys never match.
func Contains(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
