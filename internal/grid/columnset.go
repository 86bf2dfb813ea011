package grid

import (
	"fmt"
	"log/slog"
)

// ColumnSet is the validated, ordered schema of one grid. It owns the
// evaluation order of calculated columns and the amendable choice lists.
type ColumnSet struct {
	logger  *slog.Logger
	index   map[string]int
	columns []Column
	order   []int
	status  int
}

// NewColumnSet validates and normalizes column declarations.
//
// A column with a formula is always calculated and never editable. Calculated
// columns are evaluated in a topological order over their declared reads so
// a formula never sees a stale value from another calculated column.
func NewColumnSet(columns ...Column) (*ColumnSet, error) {
	s := &ColumnSet{
		logger:  slog.Default(),
		index:   make(map[string]int, len(columns)),
		columns: make([]Column, 0, len(columns)),
		status:  -1,
	}

	for i, col := range columns {
		if col.Key == "" {
			return nil, fmt.Errorf("%w: column %d", ErrEmptyKey, i)
		}
		if _, exists := s.index[col.Key]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Key)
		}

		col = normalizeColumn(col, s.logger)
		if col.IsCalculated() && col.Formula == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingFormula, col.Key)
		}
		if col.Status {
			if !col.IsCalculated() {
				return nil, fmt.Errorf("%w: %s must be calculated", ErrStatusColumn, col.Key)
			}
			if s.status >= 0 {
				return nil, fmt.Errorf("%w: %s and %s are both marked as status",
					ErrStatusColumn, s.columns[s.status].Key, col.Key)
			}
			s.status = len(s.columns)
		}
		if col.Label == "" {
			col.Label = col.Key
		}

		s.index[col.Key] = len(s.columns)
		s.columns = append(s.columns, col)
	}

	for _, col := range s.columns {
		for _, key := range col.Reads {
			if _, ok := s.index[key]; !ok {
				return nil, fmt.Errorf("%w: %s reads %s", ErrUnknownColumn, col.Key, key)
			}
		}
	}

	order, err := s.evaluationOrder()
	if err != nil {
		return nil, err
	}
	s.order = order

	return s, nil
}

func normalizeColumn(col Column, logger *slog.Logger) Column {
	if col.Formula != nil && col.Kind != KindCalculated {
		if col.Kind != 0 {
			logger.Debug("column has a formula, treating it as calculated",
				"column", col.Key, "declared_kind", col.Kind.String())
		}
		col.Kind = KindCalculated
	}
	if col.Kind == 0 {
		col.Kind = KindText
	}
	if col.IsCalculated() {
		if col.Editable {
			logger.Debug("calculated column cannot be editable", "column", col.Key)
		}
		col.Editable = false
		if col.Result == 0 {
			col.Result = KindNumber
			if col.Status {
				col.Result = KindText
			}
		}
	} else {
		col.Result = col.Kind
		col.Aggregate = false
	}
	col.Choices = append([]string(nil), col.Choices...)
	col.Reads = append([]string(nil), col.Reads...)
	return col
}

// evaluationOrder sorts calculated columns so every column comes after the
// calculated columns it depends on. Ties keep declaration order.
func (s *ColumnSet) evaluationOrder() ([]int, error) {
	var calculated []int
	for i, col := range s.columns {
		if col.IsCalculated() {
			calculated = append(calculated, i)
		}
	}

	deps := make(map[int]map[int]bool, len(calculated))
	for _, i := range calculated {
		col := s.columns[i]
		deps[i] = make(map[int]bool)

		if len(col.Reads) == 0 {
			for _, j := range calculated {
				if j >= i {
					break
				}
				if s.columns[j].Aggregate && !col.Aggregate {
					continue
				}
				deps[i][j] = true
			}
			continue
		}

		for _, key := range col.Reads {
			j := s.index[key]
			dep := s.columns[j]
			if !dep.IsCalculated() {
				continue
			}
			if j == i {
				return nil, fmt.Errorf("%w: %s reads itself", ErrFormulaCycle, col.Key)
			}
			if dep.Aggregate && !col.Aggregate {
				return nil, fmt.Errorf("%w: row formula %s cannot read aggregate column %s",
					ErrFormulaCycle, col.Key, dep.Key)
			}
			deps[i][j] = true
		}
	}

	order := make([]int, 0, len(calculated))
	done := make(map[int]bool, len(calculated))
	for len(order) < len(calculated) {
		next := -1
		for _, i := range calculated {
			if done[i] {
				continue
			}
			ready := true
			for j := range deps[i] {
				if !done[j] {
					ready = false
					break
				}
			}
			if ready {
				next = i
				break
			}
		}
		if next < 0 {
			var pending []string
			for _, i := range calculated {
				if !done[i] {
					pending = append(pending, s.columns[i].Key)
				}
			}
			return nil, fmt.Errorf("%w: %v", ErrFormulaCycle, pending)
		}
		done[next] = true
		order = append(order, next)
	}

	return order, nil
}

// SetLogger sets the logger used to report formula faults.
func (s *ColumnSet) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Len returns the number of columns.
func (s *ColumnSet) Len() int {
	return len(s.columns)
}

// Columns returns the columns in declaration order.
func (s *ColumnSet) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by key.
func (s *ColumnSet) Column(key string) (Column, bool) {
	i, ok := s.index[key]
	if !ok {
		return Column{}, false
	}
	return s.columns[i], true
}

// Keys returns the column keys in declaration order.
func (s *ColumnSet) Keys() []string {
	keys := make([]string, len(s.columns))
	for i, col := range s.columns {
		keys[i] = col.Key
	}
	return keys
}

// Labels returns the column labels in declaration order.
func (s *ColumnSet) Labels() []string {
	labels := make([]string, len(s.columns))
	for i, col := range s.columns {
		labels[i] = col.Label
	}
	return labels
}

// StatusColumn returns the designated status column, if any.
func (s *ColumnSet) StatusColumn() (Column, bool) {
	if s.status < 0 {
		return Column{}, false
	}
	return s.columns[s.status], true
}

// EvaluationOrder returns the keys of calculated columns in the order the
// recalculation engine evaluates them.
func (s *ColumnSet) EvaluationOrder() []string {
	keys := make([]string, len(s.order))
	for i, idx := range s.order {
		keys[i] = s.columns[idx].Key
	}
	return keys
}

// HasAggregate reports whether any calculated column reads the full row set.
func (s *ColumnSet) HasAggregate() bool {
	for _, idx := range s.order {
		if s.columns[idx].Aggregate {
			return true
		}
	}
	return false
}

// Unsatisfied returns the keys of required columns that are empty in row.
func (s *ColumnSet) Unsatisfied(row Row) []string {
	var keys []string
	for _, col := range s.columns {
		if col.Unsatisfied(row) {
			keys = append(keys, col.Key)
		}
	}
	return keys
}

func (s *ColumnSet) choiceColumn(key string) (*Column, error) {
	i, ok := s.index[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if s.columns[i].Kind != KindChoice {
		return nil, fmt.Errorf("%w: %s", ErrNotChoiceColumn, key)
	}
	return &s.columns[i], nil
}

// AddChoice appends a value to a choice column.
func (s *ColumnSet) AddChoice(key, value string) error {
	col, err := s.choiceColumn(key)
	if err != nil {
		return err
	}
	if value == "" {
		return fmt.Errorf("%w: empty choice", ErrInvalidInput)
	}
	if col.HasChoice(value) {
		return fmt.Errorf("%w: %s", ErrChoiceExists, value)
	}
	col.Choices = append(col.Choices, value)
	return nil
}

// RenameChoice renames a value of a choice column in place.
func (s *ColumnSet) RenameChoice(key, from, to string) error {
	col, err := s.choiceColumn(key)
	if err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("%w: empty choice", ErrInvalidInput)
	}
	if from != to && col.HasChoice(to) {
		return fmt.Errorf("%w: %s", ErrChoiceExists, to)
	}
	for i, choice := range col.Choices {
		if choice == from {
			col.Choices[i] = to
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrChoiceNotFound, from)
}

// RemoveChoice deletes a value from a choice column. Rows holding the value
// keep it.
func (s *ColumnSet) RemoveChoice(key, value string) error {
	col, err := s.choiceColumn(key)
	if err != nil {
		return err
	}
	for i, choice := range col.Choices {
		if choice == value {
			col.Choices = append(col.Choices[:i], col.Choices[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrChoiceNotFound, value)
}

// SetChoices replaces the choice list of a column, e.g. when restoring an
// amended list from storage.
func (s *ColumnSet) SetChoices(key string, choices []string) error {
	col, err := s.choiceColumn(key)
	if err != nil {
		return err
	}
	col.Choices = append([]string(nil), choices...)
	return nil
}
