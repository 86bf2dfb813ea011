package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/common"
	"github.com/Veraticus/the-books-must-balance/internal/model"
)

// IsImported reports whether a bank line with this hash was already turned
// into a row.
func (s *SQLiteStorage) IsImported(ctx context.Context, hash string) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(hash, "hash"); err != nil {
		return false, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bank_imports WHERE hash = ?`, hash).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up import: %w", err)
	}
	return n > 0, nil
}

// MarkImported records that line became the row rowID of view.
func (s *SQLiteStorage) MarkImported(ctx context.Context, line model.BankLine, view, rowID string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBankLine(line); err != nil {
		return err
	}
	if err := validateString(view, "view"); err != nil {
		return err
	}
	if err := validateString(rowID, "rowID"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO bank_imports (hash, line_id, view, row_id, date, amount, direction, payee, account_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, line.Hash, line.ID, view, rowID, line.Date, line.Amount, string(line.Direction), line.Counterparty(), line.AccountID)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: bank line %s", common.ErrDuplicateEntry, line.Hash)
	}
	return nil
}
