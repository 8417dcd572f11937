package source

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gazette-evn/colorado-snow-conditions/internal/model"
)

var (
	rangeRe  = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	numberRe = regexp.MustCompile(`\d+`)
	inchesRe = regexp.MustCompile(`(\d+)\s*"`)
	ratioRe  = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
)

// parseMeasurement reads an inch value such as `5"`, `18 in`, or `0-1"`.
// Ranges take the higher number. Text without digits is 0.
func parseMeasurement(text string) int {
	if m := rangeRe.FindStringSubmatch(text); m != nil {
		return atoi(m[2])
	}
	if m := numberRe.FindString(text); m != "" {
		return atoi(m)
	}
	return 0
}

// parseInches reads the number immediately before an inch mark, so labels
// like `24-hour snow total: 5"` yield 5.
func parseInches(text string) int {
	if m := inchesRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	return 0
}

// parseRatio reads an "open/total" pair. A missing or zero total is reported
// as nil so reference data can fill it in later.
func parseRatio(text string) (open int, total *int, ok bool) {
	m := ratioRe.FindStringSubmatch(text)
	if m == nil {
		return 0, nil, false
	}
	return atoi(m[1]), positive(atoi(m[2])), true
}

// positive returns a pointer to n, or nil when n is not positive.
func positive(n int) *int {
	if n <= 0 {
		return nil
	}
	return model.Int(n)
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
