package tui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) startEdit() tea.Cmd {
	row, col, ok := m.current()
	if !ok {
		return nil
	}
	if !col.Editable || col.IsCalculated() {
		m.setStatus(fmt.Sprintf("%s est calculé, non modifiable", col.Label))
		return nil
	}

	m.mode = ModeEdit
	m.editID = row.ID
	m.editKey = col.Key
	m.input.SetValue(grid.ToString(row.Get(col.Key)))
	m.input.CursorEnd()
	return m.input.Focus()
}

// cycleChoice sets the cell under the cursor to the next value of its
// choice list, wrapping around.
func (m *Model) cycleChoice() {
	row, col, ok := m.current()
	if !ok {
		return
	}
	if col.Kind != grid.KindChoice || !col.Editable {
		m.setStatus(fmt.Sprintf("%s n'est pas une liste de choix", col.Label))
		return
	}
	if len(col.Choices) == 0 {
		m.setStatus(fmt.Sprintf("%s n'a aucun choix", col.Label))
		return
	}

	next := col.Choices[0]
	if i := slices.Index(col.Choices, row.Text(col.Key)); i >= 0 {
		next = col.Choices[(i+1)%len(col.Choices)]
	}
	if _, err := m.grid.Edit(row.ID, col.Key, next); err != nil {
		m.setError(err)
		return
	}
	m.follow(row.ID)
}

func (m *Model) toggleSort() {
	row, col, ok := m.current()
	if !ok {
		columns := m.grid.Columns().Columns()
		if m.col >= len(columns) {
			return
		}
		col = columns[m.col]
	}
	if err := m.grid.ToggleSort(col.Key); err != nil {
		m.setError(err)
		return
	}
	state := m.grid.Sort()
	direction := "croissant"
	if state.Desc {
		direction = "décroissant"
	}
	m.setStatus(fmt.Sprintf("Tri par %s (%s)", col.Label, direction))
	if ok {
		m.follow(row.ID)
	}
}

func (m *Model) addRow() {
	row := m.grid.AddRow()
	for i, visible := range m.grid.Visible() {
		if visible.ID == row.ID {
			m.row = i
			m.col = 0
			m.setStatus("Ligne ajoutée")
			return
		}
	}
	m.setStatus("Ligne ajoutée, masquée par les filtres")
}

// cycleFilter steps the categorical filter of the current column, or of the
// view's first categorical field, through all of its values and back to
// unconstrained.
func (m *Model) cycleFilter() {
	panel := m.grid.Panel()
	if len(panel.CategoryKeys) == 0 {
		m.setStatus("Aucun filtre par catégorie")
		return
	}

	filterKey := panel.CategoryKeys[0]
	columns := m.grid.Columns().Columns()
	if m.col < len(columns) && slices.Contains(panel.CategoryKeys, columns[m.col].Key) {
		filterKey = columns[m.col].Key
	}

	state := m.grid.Filter()
	next := nextCategory(m.categoryValues(filterKey), state.Categories[filterKey])
	m.grid.SetFilter(state.WithCategory(filterKey, next))

	label := filterKey
	if col, ok := m.grid.Columns().Column(filterKey); ok {
		label = col.Label
	}
	if next == grid.AllValues {
		m.setStatus(label + " : tous")
	} else {
		m.setStatus(label + " = " + next)
	}
	m.row = 0
}

// categoryValues lists the declared choices of key followed by any other
// value found in the rows, in first-occurrence order.
func (m *Model) categoryValues(key string) []string {
	var values []string
	seen := make(map[string]bool)
	add := func(v string) {
		if strings.TrimSpace(v) == "" || seen[v] {
			return
		}
		seen[v] = true
		values = append(values, v)
	}

	if col, ok := m.grid.Columns().Column(key); ok {
		for _, choice := range col.Choices {
			add(choice)
		}
	}
	for _, row := range m.grid.Store().Rows() {
		add(row.Text(key))
	}
	return values
}

func nextCategory(values []string, current string) string {
	if strings.TrimSpace(current) == "" || strings.EqualFold(current, grid.AllValues) {
		if len(values) == 0 {
			return grid.AllValues
		}
		return values[0]
	}
	i := slices.Index(values, current)
	if i < 0 || i == len(values)-1 {
		return grid.AllValues
	}
	return values[i+1]
}

// export snapshots the displayed rows and writes them in the background.
func (m *Model) export() tea.Cmd {
	if m.config.Exporter == nil {
		m.setStatus("Export indisponible")
		return nil
	}
	fn := m.config.Exporter
	cols := m.grid.Columns()
	rows := m.grid.Visible()
	return func() tea.Msg {
		path, err := fn(cols, rows)
		return exportedMsg{path: path, err: err}
	}
}
