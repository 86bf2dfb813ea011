package grid

import (
	"fmt"
)

// Grid is the editable projection of a store: filters and sort narrow and
// reorder what is displayed while every mutation goes to the store.
type Grid struct {
	store  *Store
	panel  FilterPanel
	filter FilterState
	sort   SortState
}

// New creates a grid over store with the view's filter panel.
func New(store *Store, panel FilterPanel) *Grid {
	return &Grid{
		store: store,
		panel: panel,
	}
}

// Store returns the canonical row store.
func (g *Grid) Store() *Store {
	return g.store
}

// Columns returns the grid's column set.
func (g *Grid) Columns() *ColumnSet {
	return g.store.cols
}

// Panel returns the filter panel of the view.
func (g *Grid) Panel() FilterPanel {
	return g.panel
}

// Filter returns the current filter state.
func (g *Grid) Filter() FilterState {
	return g.filter
}

// SetFilter replaces the filter state.
func (g *Grid) SetFilter(state FilterState) {
	g.filter = state
}

// Sort returns the current sort state.
func (g *Grid) Sort() SortState {
	return g.sort
}

// SetSort replaces the sort state.
func (g *Grid) SetSort(state SortState) error {
	if state.Key != "" {
		if _, ok := g.Columns().Column(state.Key); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownColumn, state.Key)
		}
	}
	g.sort = state
	return nil
}

// ToggleSort sorts by key, flipping direction when key is already sorted.
func (g *Grid) ToggleSort(key string) error {
	return g.SetSort(g.sort.Toggle(key))
}

// Filtered returns the store rows that pass the current filter, in store
// order. It is recomputed on every call.
func (g *Grid) Filtered() []Row {
	return Apply(g.store.Rows(), g.panel, g.filter)
}

// Visible returns the filtered rows in display order.
func (g *Grid) Visible() []Row {
	return SortRows(g.Columns(), g.Filtered(), g.sort)
}

// AddRow appends a blank row to the store.
func (g *Grid) AddRow() Row {
	return g.store.Add()
}

// Edit routes a cell edit through the store.
func (g *Grid) Edit(id, key, raw string) (Row, error) {
	return g.store.Edit(id, key, raw)
}

// DeleteVisible removes the row displayed at position i from the store.
func (g *Grid) DeleteVisible(i int) (Row, error) {
	visible := g.Visible()
	if i < 0 || i >= len(visible) {
		return Row{}, fmt.Errorf("%w: %d of %d", ErrOutOfRange, i, len(visible))
	}
	row := visible[i]
	if err := g.store.Delete(row.ID); err != nil {
		return Row{}, err
	}
	return row, nil
}

// Footer totals the filtered rows.
func (g *Grid) Footer() Summary {
	return Summarize(g.Columns(), g.Filtered())
}

// Display renders one cell.
func (g *Grid) Display(row Row, key string) string {
	col, ok := g.Columns().Column(key)
	if !ok {
		return ""
	}
	return Display(col, row.Get(key))
}

// Unsatisfied returns the required keys that are empty in row.
func (g *Grid) Unsatisfied(row Row) []string {
	return g.Columns().Unsatisfied(row)
}
