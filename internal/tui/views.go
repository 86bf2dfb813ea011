package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/distribution"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	cellSeparator = " │ "
	minCellWidth  = 3
	sortAscending = " ▲"
	sortDesc      = " ▼"
)

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	visible := m.grid.Visible()
	widths := m.columnWidths(visible)
	end := m.lastColumn(widths, len(visible))
	lead := leadWidth(len(visible))

	lines := []string{
		m.renderTitle(len(visible)),
		m.renderFilters(),
		m.renderHeader(widths, end, lead),
		m.theme.Separator.Render(strings.Repeat("─", m.tableWidth(widths, end, lead))),
	}

	body := m.bodyHeight()
	for i := m.rowOffset; i < len(visible) && i < m.rowOffset+body; i++ {
		lines = append(lines, m.renderRow(i, visible[i], widths, end, lead))
	}
	if len(visible) == 0 {
		lines = append(lines, m.theme.Subtitle.Render("Aucune ligne. Appuyez sur a pour en ajouter une."))
	}

	lines = append(lines,
		m.theme.Separator.Render(strings.Repeat("─", m.tableWidth(widths, end, lead))),
		m.renderFooter(widths, end, lead, len(visible) > 0),
		m.renderStatus(len(visible)),
		m.help.View(m.keymap),
	)
	return strings.Join(lines, "\n")
}

func (m Model) renderTitle(shown int) string {
	total := m.grid.Store().Len()
	count := fmt.Sprintf("%d ligne(s)", total)
	if shown != total {
		count = fmt.Sprintf("%d / %d ligne(s)", shown, total)
	}
	return m.theme.Title.Render(m.config.Title) + "  " + m.theme.Subtitle.Render(count)
}

func (m Model) renderFilters() string {
	state := m.grid.Filter()
	if state.IsZero() {
		return m.theme.Subtitle.Render("Aucun filtre")
	}

	var parts []string
	if state.Search != "" {
		parts = append(parts, fmt.Sprintf("recherche « %s »", state.Search))
	}
	for _, key := range m.grid.Panel().CategoryKeys {
		v := state.Categories[key]
		if v == "" || strings.EqualFold(v, grid.AllValues) {
			continue
		}
		label := key
		if col, ok := m.grid.Columns().Column(key); ok {
			label = col.Label
		}
		parts = append(parts, label+" = "+v)
	}
	if state.DateFrom != "" || state.DateTo != "" {
		parts = append(parts, fmt.Sprintf("dates %s → %s", state.DateFrom, state.DateTo))
	}
	if state.AmountMin != "" || state.AmountMax != "" {
		parts = append(parts, fmt.Sprintf("montants %s → %s", state.AmountMin, state.AmountMax))
	}
	return m.theme.Subtitle.Render("Filtres : " + strings.Join(parts, " · "))
}

func (m Model) renderHeader(widths []int, end, lead int) string {
	columns := m.grid.Columns().Columns()
	sortState := m.grid.Sort()

	cells := []string{cell("#", lead, m.theme.Header, false)}
	for c := m.colOffset; c < end; c++ {
		label := columns[c].Label
		if columns[c].Key == sortState.Key {
			if sortState.Desc {
				label += sortDesc
			} else {
				label += sortAscending
			}
		}
		cells = append(cells, cell(label, widths[c], m.theme.Header, columns[c].Numeric()))
	}
	return strings.Join(cells, m.theme.Separator.Render(cellSeparator))
}

func (m Model) renderRow(i int, row grid.Row, widths []int, end, lead int) string {
	columns := m.grid.Columns().Columns()
	onCursorRow := i == m.row

	pos := strconv.Itoa(i + 1)
	if len(m.grid.Unsatisfied(row)) > 0 {
		pos += "!"
	}
	leadStyle := m.theme.Cell
	if onCursorRow {
		leadStyle = m.theme.Highlighted
	}
	cells := []string{cell(pos, lead, leadStyle, true)}

	for c := m.colOffset; c < end; c++ {
		col := columns[c]
		text := m.grid.Display(row, col.Key)

		style := m.theme.Cell
		switch {
		case onCursorRow && c == m.col:
			style = m.theme.Selected
			if m.mode == ModeEdit {
				text = m.input.Value()
			}
		case col.Unsatisfied(row):
			style = m.theme.Missing
		case onCursorRow:
			style = m.theme.Highlighted
		}
		if col.Status && text != "" && !(onCursorRow && c == m.col) {
			style = style.Foreground(lipgloss.Color(distribution.DefaultPalette.Color(text)))
		}
		cells = append(cells, cell(text, widths[c], style, col.Numeric()))
	}
	return strings.Join(cells, m.theme.Separator.Render(cellSeparator))
}

func (m Model) renderFooter(widths []int, end, lead int, hasRows bool) string {
	columns := m.grid.Columns().Columns()
	summary := m.grid.Footer()

	cells := []string{cell("Σ", lead, m.theme.Footer, true)}
	for c := m.colOffset; c < end; c++ {
		text := ""
		if hasRows {
			if total, ok := summary.Total(columns[c].Key); ok {
				text = grid.Display(columns[c], total)
			}
		}
		cells = append(cells, cell(text, widths[c], m.theme.Footer, true))
	}
	return strings.Join(cells, m.theme.Separator.Render(cellSeparator))
}

func (m Model) renderStatus(shown int) string {
	switch m.mode {
	case ModeEdit:
		label := m.editKey
		if col, ok := m.grid.Columns().Column(m.editKey); ok {
			label = col.Label
		}
		return m.theme.Prompt.Render(label+" : ") + m.input.View()
	case ModeSearch:
		return m.theme.Prompt.Render("/ ") + m.input.View()
	case ModeConfirmDelete:
		return m.theme.Prompt.Render(fmt.Sprintf("Supprimer la ligne %d ? (o/n)", m.row+1))
	}

	if m.lastErr != nil {
		return m.theme.StatusError.Render(m.lastErr.Error())
	}
	if m.status != "" {
		return m.theme.StatusBar.Render(m.status)
	}
	if shown == 0 {
		return m.theme.StatusBar.Render("")
	}
	label := ""
	if columns := m.grid.Columns().Columns(); m.col < len(columns) {
		label = columns[m.col].Label
	}
	return m.theme.StatusBar.Render(fmt.Sprintf("Ligne %d/%d · %s", m.row+1, shown, label))
}

// columnWidths sizes every column to its widest header, cell or total,
// capped by MaxCellWidth.
func (m Model) columnWidths(visible []grid.Row) []int {
	columns := m.grid.Columns().Columns()
	summary := m.grid.Footer()
	widths := make([]int, len(columns))

	for c, col := range columns {
		w := lipgloss.Width(col.Label) + lipgloss.Width(sortAscending)
		for _, row := range visible {
			w = max(w, lipgloss.Width(m.grid.Display(row, col.Key)))
		}
		if total, ok := summary.Total(col.Key); ok {
			w = max(w, lipgloss.Width(grid.Display(col, total)))
		}
		if m.config.MaxCellWidth > 0 {
			w = min(w, m.config.MaxCellWidth)
		}
		widths[c] = max(w, minCellWidth)
	}
	return widths
}

// lastColumn returns the end (exclusive) of the columns that fit in the
// terminal from colOffset on. At least one column is always shown.
func (m Model) lastColumn(widths []int, rows int) int {
	avail := m.width - leadWidth(rows)
	used := 0
	end := m.colOffset
	for end < len(widths) {
		w := widths[end] + lipgloss.Width(cellSeparator)
		if used+w > avail && end > m.colOffset {
			break
		}
		used += w
		end++
	}
	return end
}

func (m Model) tableWidth(widths []int, end, lead int) int {
	total := lead
	for c := m.colOffset; c < end; c++ {
		total += lipgloss.Width(cellSeparator) + widths[c]
	}
	return total
}

func leadWidth(rows int) int {
	return max(len(strconv.Itoa(rows))+1, 2)
}

func cell(text string, width int, style lipgloss.Style, right bool) string {
	text = ansi.Truncate(text, width, "…")
	align := lipgloss.Left
	if right {
		align = lipgloss.Right
	}
	return style.Width(width).Align(align).Render(text)
}
