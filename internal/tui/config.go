package tui

import (
	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/tui/themes"
)

// Exporter writes rows to a file and returns its path.
type Exporter func(cols *grid.ColumnSet, rows []grid.Row) (string, error)

// Config holds TUI configuration.
type Config struct {
	Theme    themes.Theme
	Exporter Exporter
	Title    string
	Width    int
	Height   int
	// MaxCellWidth truncates long cells.
	MaxCellWidth int
	AltScreen    bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Theme:        themes.Default,
		Title:        "Grille",
		Width:        120,
		Height:       30,
		MaxCellWidth: 24,
		AltScreen:    true,
	}
}

// WithTheme sets the color theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithTitle sets the title line.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}

// WithExporter enables the export key.
func WithExporter(fn Exporter) Option {
	return func(c *Config) {
		c.Exporter = fn
	}
}

// WithSize sets the initial terminal size, before the first resize event.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithInlineMode keeps the editor out of the alternate screen.
func WithInlineMode() Option {
	return func(c *Config) {
		c.AltScreen = false
	}
}
