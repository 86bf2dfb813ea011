// Package importer seeds view rows from spreadsheets and bank statements.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/export"
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFile is returned for files that are neither CSV nor XLSX.
var ErrUnsupportedFile = errors.New("unsupported file type")

// Progress receives the number of rows processed since the last call.
type Progress interface {
	Add(n int) error
}

// ReadFile reads the records of a .csv or .xlsx file. For workbooks the
// first sheet is read.
func ReadFile(path string) ([][]string, error) {
	f, err := os.Open(path) // #nosec G304 - path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f, "")
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
}

// ReadCSV reads comma or semicolon separated records. The delimiter is
// taken from the header line.
func ReadCSV(r io.Reader) ([][]string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	text := strings.TrimPrefix(string(content), "\ufeff")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	header, _, _ := strings.Cut(text, "\n")
	if strings.Count(header, ";") > strings.Count(header, ",") {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return records, nil
}

// ReadXLSX reads the records of sheet, or of the first sheet when sheet is
// empty.
func ReadXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, common.ErrNoRows
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return records, nil
}

// MapRecords turns records into row values for cols. The first record is
// the header; a header cell matches a column by label or key, ignoring case.
// Calculated columns and unmatched headers are skipped, as are blank lines
// and the footer line of an export.
func MapRecords(cols *grid.ColumnSet, records [][]string) ([]map[string]any, error) {
	if len(records) == 0 {
		return nil, common.ErrNoRows
	}

	targets := make([]*grid.Column, len(records[0]))
	matched := 0
	for i, cell := range records[0] {
		col, ok := matchColumn(cols, cell)
		if !ok {
			slog.Debug("Ignoring import column", "header", cell)
			continue
		}
		targets[i] = &col
		matched++
	}
	if matched == 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownHeaders, strings.Join(records[0], ", "))
	}

	var out []map[string]any
	for _, record := range records[1:] {
		if blank(record) || isFooter(record) {
			continue
		}
		values := make(map[string]any, matched)
		for i, cell := range record {
			if i >= len(targets) || targets[i] == nil {
				continue
			}
			values[targets[i].Key] = grid.Coerce(*targets[i], strings.TrimSpace(cell))
		}
		out = append(out, values)
	}
	if len(out) == 0 {
		return nil, common.ErrNoRows
	}
	return out, nil
}

func matchColumn(cols *grid.ColumnSet, header string) (grid.Column, bool) {
	header = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	if header == "" {
		return grid.Column{}, false
	}
	for _, col := range cols.Columns() {
		if col.IsCalculated() {
			continue
		}
		if strings.EqualFold(col.Label, header) || strings.EqualFold(col.Key, header) {
			return col, true
		}
	}
	return grid.Column{}, false
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func isFooter(record []string) bool {
	return len(record) > 0 && strings.TrimSpace(record[0]) == export.TotalLabel
}

// InsertAll appends every value map to store and returns the number of rows
// added.
func InsertAll(store *grid.Store, values []map[string]any, progress Progress) int {
	for _, v := range values {
		store.Insert(v)
		if progress != nil {
			_ = progress.Add(1)
		}
	}
	return len(values)
}
