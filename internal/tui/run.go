package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	tea "github.com/charmbracelet/bubbletea"
)

// Run opens the editor over g and blocks until the user quits or ctx is
// canceled. Edits reach the grid's store as they are made, so persistence
// belongs to the store's change callback.
func Run(ctx context.Context, g *grid.Grid, opts ...Option) error {
	m := New(g, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.config.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("grid editor: %w", err)
	}
	return nil
}
