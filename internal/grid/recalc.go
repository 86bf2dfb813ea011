package grid

import (
	"math"
)

// Recalculate returns a copy of row with every calculated column re-derived
// in evaluation order. rows is handed to aggregate formulas and should
// already contain the updated row.
func Recalculate(cols *ColumnSet, row Row, rows []Row) Row {
	out := row.Clone()
	for _, idx := range cols.order {
		col := cols.columns[idx]
		out.Values[col.Key] = cols.evaluate(col, out, rows)
	}
	return out
}

// RecalculateAll re-derives every calculated column of every row. Row-local
// formulas run first; aggregate formulas then run column by column against
// the updated collection.
func RecalculateAll(cols *ColumnSet, rows []Row) []Row {
	out := make([]Row, len(rows))
	for i, row := range rows {
		out[i] = recalculateLocal(cols, row)
	}
	recalculateAggregates(cols, out)
	return out
}

func recalculateLocal(cols *ColumnSet, row Row) Row {
	out := row.Clone()
	for _, idx := range cols.order {
		col := cols.columns[idx]
		if col.Aggregate {
			continue
		}
		out.Values[col.Key] = cols.evaluate(col, out, nil)
	}
	return out
}

// recalculateAggregates updates rows in place. Each aggregate column sees the
// values of aggregate columns evaluated before it.
func recalculateAggregates(cols *ColumnSet, rows []Row) {
	for _, idx := range cols.order {
		col := cols.columns[idx]
		if !col.Aggregate {
			continue
		}
		values := make([]any, len(rows))
		for i, row := range rows {
			values[i] = cols.evaluate(col, row, rows)
		}
		for i := range rows {
			rows[i].Values[col.Key] = values[i]
		}
	}
}

// evaluate invokes a formula and substitutes the column's sentinel when the
// formula panics or yields a non-finite number.
func (s *ColumnSet) evaluate(col Column, row Row, rows []Row) (value any) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("formula failed",
				"column", col.Key,
				"row", row.ID,
				"panic", r)
			value = col.sentinel()
		}
	}()

	value = normalizeValue(col.Formula(row, rows))
	if f, ok := value.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
		s.logger.Warn("formula produced a non-finite number",
			"column", col.Key,
			"row", row.ID)
		return col.sentinel()
	}
	return value
}
