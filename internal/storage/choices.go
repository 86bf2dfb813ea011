package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// LoadChoices returns the amended choice lists of a view by column key.
// Columns never amended are absent.
func (s *SQLiteStorage) LoadChoices(ctx context.Context, view string) (map[string][]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(view, "view"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT column_key, choices FROM choices WHERE view = ?`, view)
	if err != nil {
		return nil, fmt.Errorf("failed to query choices: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Warn("failed to close rows", "error", err)
		}
	}()

	out := make(map[string][]string)
	for rows.Next() {
		var key, data string
		if err := rows.Scan(&key, &data); err != nil {
			return nil, fmt.Errorf("failed to scan choices: %w", err)
		}
		var choices []string
		if err := json.Unmarshal([]byte(data), &choices); err != nil {
			return nil, fmt.Errorf("failed to decode choices of %s: %w", key, err)
		}
		out[key] = choices
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating choices: %w", err)
	}
	return out, nil
}

// SaveChoices stores the full choice list of one column.
func (s *SQLiteStorage) SaveChoices(ctx context.Context, view, column string, choices []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(view, "view"); err != nil {
		return err
	}
	if err := validateString(column, "column"); err != nil {
		return err
	}
	if choices == nil {
		choices = []string{}
	}

	data, err := json.Marshal(choices)
	if err != nil {
		return fmt.Errorf("failed to encode choices: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO choices (view, column_key, choices, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(view, column_key) DO UPDATE SET
			choices = excluded.choices,
			updated_at = excluded.updated_at
	`, view, column, string(data))
	if err != nil {
		return fmt.Errorf("failed to save choices: %w", err)
	}
	return nil
}
