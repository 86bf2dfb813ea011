package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
)

// LoadRows returns the rows of a view in their stored order.
func (s *SQLiteStorage) LoadRows(ctx context.Context, view string) ([]grid.Row, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(view, "view"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM grid_rows WHERE view = ? ORDER BY position`, view)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", "error", err)
		}
	}()

	var out []grid.Row
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		values := make(map[string]any)
		if err := json.Unmarshal([]byte(data), &values); err != nil {
			return nil, fmt.Errorf("failed to decode row %s: %w", id, err)
		}
		out = append(out, grid.Row{ID: id, Values: values})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return out, nil
}

// SaveRows replaces the stored rows of a view with rows, keeping their
// order.
func (s *SQLiteStorage) SaveRows(ctx context.Context, view string, rows []grid.Row) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(view, "view"); err != nil {
		return err
	}
	if err := validateRows(rows); err != nil {
		return err
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM grid_rows WHERE view = ?`, view); err != nil {
			return fmt.Errorf("failed to clear rows: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO grid_rows (id, view, position, data, updated_at) VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for i, row := range rows {
			data, err := json.Marshal(row.Values)
			if err != nil {
				return fmt.Errorf("failed to encode row %s: %w", row.ID, err)
			}
			if _, err := stmt.ExecContext(ctx, row.ID, view, i, string(data)); err != nil {
				return fmt.Errorf("failed to insert row %s: %w", row.ID, err)
			}
		}
		return nil
	})
}

// CountRows returns the number of stored rows of a view.
func (s *SQLiteStorage) CountRows(ctx context.Context, view string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM grid_rows WHERE view = ?`, view).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}
