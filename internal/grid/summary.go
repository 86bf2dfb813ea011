package grid

// Summary is the totals footer of a grid.
type Summary struct {
	Totals map[string]float64
	Keys   []string
	Count  int
}

// Summarize totals every summable column over rows.
func Summarize(cols *ColumnSet, rows []Row) Summary {
	sum := Summary{
		Totals: make(map[string]float64),
		Count:  len(rows),
	}
	for _, col := range cols.columns {
		if !col.Summable() {
			continue
		}
		total := 0.0
		for _, row := range rows {
			total += row.Number(col.Key)
		}
		sum.Keys = append(sum.Keys, col.Key)
		sum.Totals[col.Key] = total
	}
	return sum
}

// Total returns the footer total of key and whether the column is summed.
func (s Summary) Total(key string) (float64, bool) {
	total, ok := s.Totals[key]
	return total, ok
}
