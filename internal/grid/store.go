package grid

import (
	"fmt"
)

// InsertRow returns rows with a new row appended. values holds input for
// non-calculated columns; missing columns get their defaults and calculated
// columns are derived.
func InsertRow(cols *ColumnSet, rows []Row, values map[string]any) ([]Row, Row) {
	row := NewRow(nil)
	for _, col := range cols.columns {
		if col.IsCalculated() {
			continue
		}
		if v, ok := values[col.Key]; ok {
			row.Values[col.Key] = hostValue(col, v)
			continue
		}
		row.Values[col.Key] = col.defaultValue()
	}

	out := make([]Row, len(rows), len(rows)+1)
	copy(out, rows)
	out = append(out, Recalculate(cols, row, append(rows[:len(rows):len(rows)], row)))
	if cols.HasAggregate() {
		out = RecalculateAll(cols, out)
	}
	return out, out[len(out)-1]
}

// AddRow returns rows with a blank row appended.
func AddRow(cols *ColumnSet, rows []Row) ([]Row, Row) {
	return InsertRow(cols, rows, nil)
}

// ApplyEdit coerces raw for the column key, assigns it to the row with the
// given id and recalculates. The input slice is left untouched.
func ApplyEdit(cols *ColumnSet, rows []Row, id, key, raw string) ([]Row, Row, error) {
	col, ok := cols.Column(key)
	if !ok {
		return rows, Row{}, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if !col.Editable || col.IsCalculated() {
		return rows, Row{}, fmt.Errorf("%w: %s", ErrNotEditable, key)
	}
	i := indexOf(rows, id)
	if i < 0 {
		return rows, Row{}, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}

	out := make([]Row, len(rows))
	copy(out, rows)

	edited := out[i].Clone()
	edited.Values[key] = Coerce(col, raw)
	out[i] = edited
	out[i] = Recalculate(cols, edited, out)

	if cols.HasAggregate() {
		out = RecalculateAll(cols, out)
	}
	return out, out[i], nil
}

// DeleteRow returns rows without the row with the given id.
func DeleteRow(rows []Row, id string) ([]Row, error) {
	i := indexOf(rows, id)
	if i < 0 {
		return rows, fmt.Errorf("%w: %s", ErrRowNotFound, id)
	}
	out := make([]Row, 0, len(rows)-1)
	out = append(out, rows[:i]...)
	out = append(out, rows[i+1:]...)
	return out, nil
}

func indexOf(rows []Row, id string) int {
	for i, row := range rows {
		if row.ID == id {
			return i
		}
	}
	return -1
}

// Store is the canonical, unfiltered, unsorted row collection of one view.
// It is not safe for concurrent use.
type Store struct {
	cols     *ColumnSet
	onChange func([]Row)
	rows     []Row
}

// NewStore builds a store from initial rows. Rows without an ID get one,
// string values are coerced like edits, missing columns get their defaults
// and every calculated column is re-derived.
func NewStore(cols *ColumnSet, rows []Row) *Store {
	prepared := make([]Row, len(rows))
	for i, row := range rows {
		row = row.Clone()
		if row.ID == "" {
			row.ID = NewRowID()
		}
		for _, col := range cols.columns {
			if col.IsCalculated() {
				continue
			}
			if v, ok := row.Values[col.Key]; ok {
				row.Values[col.Key] = hostValue(col, v)
				continue
			}
			row.Values[col.Key] = col.defaultValue()
		}
		prepared[i] = row
	}
	return &Store{
		cols: cols,
		rows: RecalculateAll(cols, prepared),
	}
}

// OnChange registers a callback invoked with the full row list after every
// mutation.
func (s *Store) OnChange(fn func([]Row)) {
	s.onChange = fn
}

func (s *Store) commit(rows []Row) {
	s.rows = rows
	if s.onChange != nil {
		s.onChange(s.Rows())
	}
}

// Columns returns the store's column set.
func (s *Store) Columns() *ColumnSet {
	return s.cols
}

// Len returns the number of rows.
func (s *Store) Len() int {
	return len(s.rows)
}

// Rows returns a copy of the rows in store order.
func (s *Store) Rows() []Row {
	out := make([]Row, len(s.rows))
	for i, row := range s.rows {
		out[i] = row.Clone()
	}
	return out
}

// Row returns the row with the given id.
func (s *Store) Row(id string) (Row, bool) {
	i := indexOf(s.rows, id)
	if i < 0 {
		return Row{}, false
	}
	return s.rows[i].Clone(), true
}

// Add appends a blank row.
func (s *Store) Add() Row {
	rows, row := AddRow(s.cols, s.rows)
	s.commit(rows)
	return row.Clone()
}

// Insert appends a row holding values.
func (s *Store) Insert(values map[string]any) Row {
	rows, row := InsertRow(s.cols, s.rows, values)
	s.commit(rows)
	return row.Clone()
}

// Edit applies user input to one cell.
func (s *Store) Edit(id, key, raw string) (Row, error) {
	rows, row, err := ApplyEdit(s.cols, s.rows, id, key, raw)
	if err != nil {
		return Row{}, err
	}
	s.commit(rows)
	return row.Clone(), nil
}

// Delete removes the row with the given id.
func (s *Store) Delete(id string) error {
	rows, err := DeleteRow(s.rows, id)
	if err != nil {
		return err
	}
	s.commit(RecalculateAll(s.cols, rows))
	return nil
}

// AddChoice appends a value to a choice column.
func (s *Store) AddChoice(key, value string) error {
	return s.cols.AddChoice(key, value)
}

// RemoveChoice deletes a value from a choice column.
func (s *Store) RemoveChoice(key, value string) error {
	return s.cols.RemoveChoice(key, value)
}

// RenameChoice renames a choice and rewrites the rows that held it. It
// returns the number of rewritten rows.
func (s *Store) RenameChoice(key, from, to string) (int, error) {
	if err := s.cols.RenameChoice(key, from, to); err != nil {
		return 0, err
	}

	rows := make([]Row, len(s.rows))
	changed := 0
	for i, row := range s.rows {
		if row.Text(key) == from {
			row = row.Clone()
			row.Values[key] = to
			changed++
		}
		rows[i] = row
	}
	if changed == 0 {
		return 0, nil
	}
	s.commit(RecalculateAll(s.cols, rows))
	return changed, nil
}
