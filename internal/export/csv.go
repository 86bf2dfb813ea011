package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// Options controls CSV serialization.
type Options struct {
	// Legacy joins fields with bare commas and newlines without quoting.
	// Values holding a comma, quote or newline corrupt the output.
	Legacy bool
}

// WriteCSV writes a header line of column labels followed by one line per
// row.
func WriteCSV(w io.Writer, cols *grid.ColumnSet, rows []grid.Row, opts Options) error {
	if opts.Legacy {
		return writeLegacy(w, cols, rows)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header(cols)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(Record(cols, row)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func writeLegacy(w io.Writer, cols *grid.ColumnSet, rows []grid.Row) error {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(Header(cols), ","))
	for _, row := range rows {
		lines = append(lines, strings.Join(Record(cols, row), ","))
	}
	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
