// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Row operations
	LoadRows(ctx context.Context, view string) ([]grid.Row, error)
	SaveRows(ctx context.Context, view string, rows []grid.Row) error
	CountRows(ctx context.Context, view string) (int, error)

	// Choice list operations
	LoadChoices(ctx context.Context, view string) (map[string][]string, error)
	SaveChoices(ctx context.Context, view, column string, choices []string) error

	// Bank import ledger
	IsImported(ctx context.Context, hash string) (bool, error)
	MarkImported(ctx context.Context, line model.BankLine, view, rowID string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// BankSource fetches bank lines for a date range.
type BankSource interface {
	GetBankLines(ctx context.Context, startDate, endDate time.Time) ([]model.BankLine, error)
}

// Table is one exported view: its title, header labels and typed cells.
type Table struct {
	Title   string
	Header  []string
	Rows    [][]any
	Numeric []bool
	Summed  []bool
}

// ReportWriter publishes a table to an external spreadsheet.
type ReportWriter interface {
	Write(ctx context.Context, table Table) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
