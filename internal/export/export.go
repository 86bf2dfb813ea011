// Package export serializes grid rows to CSV and XLSX.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// MIMEType is the content type of CSV exports.
const MIMEType = "text/csv"

const xlsxMIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Format is an export target.
type Format string

// Supported export formats.
const (
	FormatCSV    Format = "csv"
	FormatXLSX   Format = "xlsx"
	FormatSheets Format = "sheets"
)

// ErrUnknownFormat is returned for an unsupported export format.
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat resolves a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatSheets:
		return f, nil
	case "":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// ContentType returns the MIME type of files written in format f. Sheets
// exports have no file and return "".
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return MIMEType
	case FormatXLSX:
		return xlsxMIMEType
	default:
		return ""
	}
}

// Naming is the file naming convention of one view. Dated names carry the
// export day, e.g. encaissements-2024-03-01.csv.
type Naming struct {
	Base  string
	Dated bool
}

// FileName returns the file name of an export in format f made at now.
func FileName(n Naming, f Format, now time.Time) string {
	name := n.Base
	if n.Dated {
		name += "-" + now.Format(grid.DateLayout)
	}
	if f == FormatSheets {
		return name
	}
	return name + "." + string(f)
}

// Header returns the column labels in declaration order.
func Header(cols *grid.ColumnSet) []string {
	return cols.Labels()
}

// Record returns the raw string values of row in column order. Numbers are
// written in full precision and missing values are empty.
func Record(cols *grid.ColumnSet, row grid.Row) []string {
	keys := cols.Keys()
	out := make([]string, len(keys))
	for i, key := range keys {
		out[i] = grid.ToString(row.Get(key))
	}
	return out
}

// Values returns row's cells typed for spreadsheet targets: float64 for
// numeric columns and string otherwise.
func Values(cols *grid.ColumnSet, row grid.Row) []any {
	columns := cols.Columns()
	out := make([]any, len(columns))
	for i, col := range columns {
		v := row.Get(col.Key)
		if col.Numeric() {
			if f, ok := grid.ToFloat(v); ok {
				out[i] = f
				continue
			}
		}
		out[i] = grid.ToString(v)
	}
	return out
}
