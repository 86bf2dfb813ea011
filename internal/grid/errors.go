// Package grid implements the spreadsheet-like grid engine behind every
// accounting screen: the column model, formula recalculation, row filtering,
// sorting, the totals footer and the owned row store.
package grid

import "errors"

// Column model errors.
var (
	ErrEmptyKey        = errors.New("column key cannot be empty")
	ErrDuplicateColumn = errors.New("duplicate column key")
	ErrUnknownColumn   = errors.New("unknown column")
	ErrMissingFormula  = errors.New("calculated column has no formula")
	ErrStatusColumn    = errors.New("invalid status column")
	ErrFormulaCycle    = errors.New("formula dependency cycle")
	ErrNotChoiceColumn = errors.New("column does not hold choices")
	ErrChoiceExists    = errors.New("choice already exists")
	ErrChoiceNotFound  = errors.New("choice not found")
)

// Row store errors.
var (
	ErrNotEditable  = errors.New("column is not editable")
	ErrRowNotFound  = errors.New("row not found")
	ErrOutOfRange   = errors.New("visible row index out of range")
	ErrInvalidInput = errors.New("invalid input")
)
