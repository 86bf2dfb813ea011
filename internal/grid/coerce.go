package grid

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the storage format of date cells.
const DateLayout = "2006-01-02"

var dateInputLayouts = []string{
	DateLayout,
	"02/01/2006",
	"2006/01/02",
	"02.01.2006",
}

// Coerce converts raw user input into the stored value for col. It never
// fails: malformed numbers become 0 and malformed dates are kept verbatim.
func Coerce(col Column, raw string) any {
	switch col.ValueKind() {
	case KindNumber:
		return ParseNumber(raw)
	case KindDate:
		return NormalizeDate(raw)
	default:
		return raw
	}
}

// ParseNumber parses a number typed by a user. Spaces and currency or percent
// signs are ignored. A decimal comma is accepted, and "1.234,56" and
// "1,234.56" both read as 1234.56. Anything that still does not parse, or
// parses to NaN or an infinity, is 0.
func ParseNumber(raw string) float64 {
	f, ok := parseNumber(raw)
	if !ok {
		return 0
	}
	return f
}

func parseNumber(raw string) (float64, bool) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\u00a0', '\u202f', '€', '$', '%':
			return -1
		}
		return r
	}, raw)
	if s == "" {
		return 0, false
	}

	// With both separators present the last one is the decimal mark.
	dot, comma := strings.LastIndex(s, "."), strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NormalizeDate rewrites a recognizable date into YYYY-MM-DD and returns
// anything else trimmed but otherwise untouched.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	return s
}
