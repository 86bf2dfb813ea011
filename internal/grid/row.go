package grid

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Row is a flat mapping from column key to value with a stable identity.
// Numbers are stored as float64, everything else as string.
type Row struct {
	Values map[string]any
	ID     string
}

// NewRowID generates a row identity.
func NewRowID() string {
	return uuid.NewString()
}

// NewRow creates a row with a fresh ID holding a copy of values.
func NewRow(values map[string]any) Row {
	row := Row{ID: NewRowID(), Values: make(map[string]any, len(values))}
	for k, v := range values {
		row.Values[k] = v
	}
	return row
}

// Get returns the raw value stored under key.
func (r Row) Get(key string) any {
	if r.Values == nil {
		return nil
	}
	return r.Values[key]
}

// Number returns the value under key as a number, or 0.
func (r Row) Number(key string) float64 {
	f, _ := ToFloat(r.Get(key))
	return f
}

// Text returns the value under key as a string.
func (r Row) Text(key string) string {
	return ToString(r.Get(key))
}

// Clone returns a deep copy of the row's value map.
func (r Row) Clone() Row {
	out := Row{ID: r.ID, Values: make(map[string]any, len(r.Values))}
	for k, v := range r.Values {
		out.Values[k] = v
	}
	return out
}

// ToFloat converts a stored value to float64.
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// ToString converts a stored value to its raw string form.
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	}
	if f, ok := ToFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// hostValue stores a value handed in by the host. Strings go through Coerce
// so a Number column never holds text.
func hostValue(col Column, v any) any {
	if raw, ok := v.(string); ok {
		return Coerce(col, raw)
	}
	return normalizeValue(v)
}

// normalizeValue keeps the storage representation uniform: every number is a
// float64.
func normalizeValue(v any) any {
	switch v.(type) {
	case nil, string, float64, bool:
		return v
	}
	if f, ok := ToFloat(v); ok {
		return f
	}
	return v
}
