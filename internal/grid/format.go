package grid

import (
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Money formats a monetary value with two decimals. Rounding happens here and
// nowhere else. Totals that overflowed render as Placeholder.
func Money(v any) string {
	f, ok := ToFloat(v)
	if !ok {
		return ToString(v)
	}
	if !finite(f) {
		return Placeholder
	}
	return decimal.NewFromFloat(f).StringFixed(2)
}

// Percent formats a plain percentage (19 means 19%).
func Percent(v any) string {
	f, ok := ToFloat(v)
	if !ok {
		return ToString(v)
	}
	if !finite(f) {
		return Placeholder
	}
	return decimal.NewFromFloat(f).Round(2).String() + "%"
}

// Display renders a cell for col using its formatter when it has one.
func Display(col Column, v any) string {
	if col.Formatter != nil {
		return col.Formatter(v)
	}
	if v == nil {
		return ""
	}
	if col.Numeric() {
		if f, ok := ToFloat(v); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ToString(v)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
