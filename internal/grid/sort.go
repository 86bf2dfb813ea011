package grid

import (
	"cmp"
	"slices"
	"strings"
)

// SortState is the display order of a grid. An empty Key keeps store order.
type SortState struct {
	Key  string
	Desc bool
}

// Toggle returns the state after clicking on key: a new key sorts
// ascending, the current key flips direction.
func (s SortState) Toggle(key string) SortState {
	if s.Key != key {
		return SortState{Key: key}
	}
	return SortState{Key: key, Desc: !s.Desc}
}

// SortRows returns a sorted copy of rows. The sort is stable, so equal cells
// keep their relative order.
func SortRows(cols *ColumnSet, rows []Row, state SortState) []Row {
	out := make([]Row, len(rows))
	copy(out, rows)

	col, ok := cols.Column(state.Key)
	if !ok {
		return out
	}

	compare := func(a, b Row) int {
		return strings.Compare(strings.ToLower(a.Text(col.Key)), strings.ToLower(b.Text(col.Key)))
	}
	if col.Numeric() {
		compare = func(a, b Row) int {
			return cmp.Compare(a.Number(col.Key), b.Number(col.Key))
		}
	}

	slices.SortStableFunc(out, func(a, b Row) int {
		if state.Desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
	return out
}
