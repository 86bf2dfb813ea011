package grid

import (
	"math"
	"strconv"
	"strings"
)

// AllValues is the categorical filter value that matches every row.
const AllValues = "all"

// FilterPanel is the filter shape of one view: which fields the free-text
// search looks at, which fields get a categorical select, and which fields
// the date and amount ranges apply to. Empty keys disable that filter.
type FilterPanel struct {
	DateKey      string
	AmountKey    string
	SearchKeys   []string
	CategoryKeys []string
}

// FilterState holds the user's current filter input. Empty values never
// constrain.
type FilterState struct {
	Categories map[string]string
	Search     string
	DateFrom   string
	DateTo     string
	AmountMin  string
	AmountMax  string
}

// WithCategory returns a copy of the state with a categorical filter set.
func (f FilterState) WithCategory(key, value string) FilterState {
	out := f
	out.Categories = make(map[string]string, len(f.Categories)+1)
	for k, v := range f.Categories {
		out.Categories[k] = v
	}
	out.Categories[key] = value
	return out
}

// IsZero reports whether no filter is active.
func (f FilterState) IsZero() bool {
	if f.Search != "" || f.DateFrom != "" || f.DateTo != "" || f.AmountMin != "" || f.AmountMax != "" {
		return false
	}
	for _, v := range f.Categories {
		if !unconstrained(v) {
			return false
		}
	}
	return true
}

// Predicate decides whether a row is shown.
type Predicate func(Row) bool

// Predicates returns the active predicates for state. A row is shown iff it
// satisfies all of them.
func (p FilterPanel) Predicates(state FilterState) []Predicate {
	var preds []Predicate

	if term := strings.ToLower(strings.TrimSpace(state.Search)); term != "" && len(p.SearchKeys) > 0 {
		keys := p.SearchKeys
		preds = append(preds, func(r Row) bool {
			for _, key := range keys {
				if strings.Contains(strings.ToLower(r.Text(key)), term) {
					return true
				}
			}
			return false
		})
	}

	for _, key := range p.CategoryKeys {
		want, ok := state.Categories[key]
		if !ok || unconstrained(want) {
			continue
		}
		preds = append(preds, func(r Row) bool {
			return r.Text(key) == want
		})
	}

	if p.DateKey != "" {
		key := p.DateKey
		if from := strings.TrimSpace(state.DateFrom); from != "" {
			preds = append(preds, func(r Row) bool {
				return r.Text(key) >= from
			})
		}
		if to := strings.TrimSpace(state.DateTo); to != "" {
			preds = append(preds, func(r Row) bool {
				return r.Text(key) <= to
			})
		}
	}

	if p.AmountKey != "" {
		key := p.AmountKey
		if lo, ok := parseBound(state.AmountMin); ok {
			preds = append(preds, func(r Row) bool {
				return r.Number(key) >= lo
			})
		}
		if hi, ok := parseBound(state.AmountMax); ok {
			preds = append(preds, func(r Row) bool {
				return r.Number(key) <= hi
			})
		}
	}

	return preds
}

// Apply returns the rows that satisfy every active predicate, in store order.
func Apply(rows []Row, panel FilterPanel, state FilterState) []Row {
	preds := panel.Predicates(state)
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if matchesAll(row, preds) {
			out = append(out, row)
		}
	}
	return out
}

func matchesAll(row Row, preds []Predicate) bool {
	for _, pred := range preds {
		if !pred(row) {
			return false
		}
	}
	return true
}

func unconstrained(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, AllValues)
}

// parseBound parses a numeric range bound. Empty, malformed and NaN bounds
// are unconstrained.
func parseBound(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}
