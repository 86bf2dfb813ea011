// Package storage provides the SQLite persistence layer for ledger rows,
// amended choice lists and imported bank lines.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrInvalidRow     = errors.New("invalid row")
	ErrInvalidLine    = errors.New("invalid bank line")
	ErrDuplicateRowID = errors.New("duplicate row id")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRows ensures every row has a unique identity.
func validateRows(rows []grid.Row) error {
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.ID) == "" {
			return fmt.Errorf("%w: row at index %d has no id", ErrInvalidRow, i)
		}
		if j, ok := seen[row.ID]; ok {
			return fmt.Errorf("%w: %s at index %d and %d", ErrDuplicateRowID, row.ID, j, i)
		}
		seen[row.ID] = i
	}
	return nil
}

// validateBankLine checks the fields the import ledger records.
func validateBankLine(line model.BankLine) error {
	if line.Hash == "" {
		return fmt.Errorf("%w: missing hash", ErrInvalidLine)
	}
	if line.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidLine)
	}
	switch line.Direction {
	case model.DirectionCredit, model.DirectionDebit:
	default:
		return fmt.Errorf("%w: direction %q", ErrInvalidLine, line.Direction)
	}
	return nil
}
