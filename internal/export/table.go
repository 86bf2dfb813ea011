package export

import (
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/service"
)

// Table builds the typed table of rows for remote spreadsheet writers.
func Table(title string, cols *grid.ColumnSet, rows []grid.Row) service.Table {
	columns := cols.Columns()
	t := service.Table{
		Title:   title,
		Header:  Header(cols),
		Rows:    make([][]any, len(rows)),
		Numeric: make([]bool, len(columns)),
		Summed:  make([]bool, len(columns)),
	}
	for i, col := range columns {
		t.Numeric[i] = col.Numeric()
		t.Summed[i] = col.Summable()
	}
	for i, row := range rows {
		t.Rows[i] = Values(cols, row)
	}
	return t
}
