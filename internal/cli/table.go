package cli

import (
	"strconv"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/distribution"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Sort direction markers appended to the sorted column's header.
const (
	AscendingMarker  = " ▲"
	DescendingMarker = " ▼"
)

// MissingMarker flags rows with empty required cells.
const MissingMarker = "!"

// GridOptions tunes RenderGrid.
type GridOptions struct {
	// Keys limits and orders the printed columns; empty prints them all.
	Keys []string
	// ShowIDs adds the shortened row ID after the position.
	ShowIDs bool
	// NoFooter hides the totals line.
	NoFooter bool
}

// RenderGrid prints the visible rows of g with their 1-based display
// position, followed by the totals of the filtered rows.
func RenderGrid(g *grid.Grid, opts GridOptions) string {
	columns := printedColumns(g.Columns(), opts.Keys)
	sortState := g.Sort()

	headers := []string{"#"}
	if opts.ShowIDs {
		headers = append(headers, "ID")
	}
	lead := len(headers)
	for _, col := range columns {
		label := col.Label
		if col.Key == sortState.Key {
			if sortState.Desc {
				label += DescendingMarker
			} else {
				label += AscendingMarker
			}
		}
		headers = append(headers, label)
	}

	visible := g.Visible()
	rows := make([][]string, 0, len(visible)+1)
	for i, row := range visible {
		pos := strconv.Itoa(i + 1)
		if len(g.Unsatisfied(row)) > 0 {
			pos += MissingMarker
		}
		line := []string{pos}
		if opts.ShowIDs {
			line = append(line, ShortID(row.ID))
		}
		for _, col := range columns {
			line = append(line, g.Display(row, col.Key))
		}
		rows = append(rows, line)
	}

	footer := !opts.NoFooter && len(visible) > 0
	if footer {
		summary := g.Footer()
		line := make([]string, lead, lead+len(columns))
		line[0] = "Total"
		for _, col := range columns {
			cell := ""
			if total, ok := summary.Total(col.Key); ok {
				cell = grid.Display(col, total)
			}
			line = append(line, cell)
		}
		rows = append(rows, line)
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return TableHeaderStyle
			}
			style := TableCellStyle
			if footer && r == len(rows)-1 {
				style = TableFooterStyle
			}
			if c < lead {
				return style.Foreground(SubtleColor)
			}
			col := columns[c-lead]
			switch {
			case col.Status && r < len(visible):
				return style.Foreground(lipgloss.Color(distribution.DefaultPalette.Color(rows[r][c])))
			case col.Numeric():
				return style.Align(lipgloss.Right)
			}
			return style
		})

	return t.String()
}

func printedColumns(cols *grid.ColumnSet, keys []string) []grid.Column {
	if len(keys) == 0 {
		return cols.Columns()
	}
	out := make([]grid.Column, 0, len(keys))
	for _, key := range keys {
		if col, ok := cols.Column(key); ok {
			out = append(out, col)
		}
	}
	return out
}

// ShortID abbreviates a row ID for display.
func ShortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

const barWidth = 24

// RenderDistribution prints one line per bucket: a colored swatch, the
// label, a bar proportional to its share, the total, the count and the
// share.
func RenderDistribution(buckets []distribution.Bucket) string {
	rows := make([][]string, 0, len(buckets))
	for _, b := range buckets {
		share := distribution.Share(b, buckets)
		width := int(share / 100 * barWidth)
		if width == 0 && b.TotalAmount > 0 {
			width = 1
		}
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(b.Color))
		rows = append(rows, []string{
			swatch.Render("■") + " " + b.Label,
			swatch.Render(strings.Repeat("█", width)),
			grid.Money(b.TotalAmount),
			strconv.Itoa(b.RowCount),
			grid.Percent(share),
		})
	}

	return table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("Catégorie", "", "Montant", "Lignes", "Part").
		Rows(rows...).
		StyleFunc(func(r, c int) lipgloss.Style {
			if r == table.HeaderRow {
				return TableHeaderStyle
			}
			if c >= 2 {
				return TableCellStyle.Align(lipgloss.Right)
			}
			return TableCellStyle
		}).
		String()
}
