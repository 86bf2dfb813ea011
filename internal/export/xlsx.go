package export

import (
	"fmt"
	"io"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/xuri/excelize/v2"
)

// TotalLabel heads the footer row of spreadsheet exports.
const TotalLabel = "Total"

const moneyFormat = 4 // #,##0.00

// WriteXLSX writes rows as a single-sheet workbook: a bold header, one line
// per row and a SUM footer under every summable column.
func WriteXLSX(w io.Writer, sheet string, cols *grid.ColumnSet, rows []grid.Row) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	numberStyle, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		NumFmt: moneyFormat,
		Border: []excelize.Border{{Type: "top", Color: "#1F2937", Style: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create total style: %w", err)
	}

	columns := cols.Columns()
	header := make([]any, len(columns))
	for i, label := range Header(cols) {
		header[i] = label
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, row := range rows {
		values := Values(cols, row)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	last := len(rows) + 1
	for i, col := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, name+"1", name+"1", headerStyle); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, columnWidth(col)); err != nil {
			return err
		}
		if !col.Numeric() || len(rows) == 0 {
			continue
		}
		if err := f.SetCellStyle(sheet, name+"2", fmt.Sprintf("%s%d", name, last), numberStyle); err != nil {
			return err
		}
		if !col.Summable() {
			continue
		}
		total := fmt.Sprintf("%s%d", name, last+1)
		if err := f.SetCellFormula(sheet, total, fmt.Sprintf("SUM(%s2:%s%d)", name, name, last)); err != nil {
			return fmt.Errorf("failed to write total for %s: %w", col.Key, err)
		}
		if err := f.SetCellStyle(sheet, total, total, totalStyle); err != nil {
			return err
		}
	}

	if len(rows) > 0 && len(columns) > 0 && !columns[0].Summable() {
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", last+1), TotalLabel); err != nil {
			return err
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func columnWidth(col grid.Column) float64 {
	width := float64(len([]rune(col.Label))) + 4
	switch {
	case width < 12:
		return 12
	case width > 40:
		return 40
	}
	return width
}
