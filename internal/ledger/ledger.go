// Package ledger declares the accounting views of the practice: their
// columns and formulas, filter panels, export naming and chart defaults.
package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// ErrUnknownView is returned when no view matches a name.
var ErrUnknownView = errors.New("unknown view")

// View is one accounting screen.
type View struct {
	columns         func() []grid.Column
	ID              string
	Title           string
	DistributionKey string
	AmountKey       string
	Naming          export.Naming
	Panel           grid.FilterPanel
}

// Columns returns a fresh copy of the view's column declarations.
func (v View) Columns() []grid.Column {
	return v.columns()
}

// ColumnSet validates the view's columns. Formula faults are logged with the
// view ID.
func (v View) ColumnSet(logger *slog.Logger) (*grid.ColumnSet, error) {
	cols, err := grid.NewColumnSet(v.Columns()...)
	if err != nil {
		return nil, fmt.Errorf("view %s: %w", v.ID, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	cols.SetLogger(logger.With("view", v.ID))
	return cols, nil
}

// NewGrid builds a grid over rows with the view's columns and filter panel.
func (v View) NewGrid(rows []grid.Row, logger *slog.Logger) (*grid.Grid, error) {
	cols, err := v.ColumnSet(logger)
	if err != nil {
		return nil, err
	}
	return v.GridFor(cols, rows), nil
}

// GridFor builds a grid over rows with an already amended column set.
func (v View) GridFor(cols *grid.ColumnSet, rows []grid.Row) *grid.Grid {
	return grid.New(grid.NewStore(cols, rows), v.Panel)
}

var registry = []View{
	Receipts,
	Expenses,
	Debts,
	Taxes,
	Invoices,
	Social,
	Retrocessions,
	Assets,
}

// All returns every view in menu order.
func All() []View {
	out := make([]View, len(registry))
	copy(out, registry)
	return out
}

// Lookup finds a view by ID or by its export base name.
func Lookup(name string) (View, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, v := range registry {
		if v.ID == name || v.Naming.Base == name {
			return v, nil
		}
	}
	return View{}, fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// IDs returns the view IDs in menu order.
func IDs() []string {
	ids := make([]string, len(registry))
	for i, v := range registry {
		ids[i] = v.ID
	}
	return ids
}
