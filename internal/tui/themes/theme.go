// Package themes holds the color schemes of the grid editor.
package themes

import "github.com/charmbracelet/lipgloss"

// Theme defines the visual style for the TUI.
type Theme struct {
	Title       lipgloss.Style
	Subtitle    lipgloss.Style
	Header      lipgloss.Style
	Cell        lipgloss.Style
	Highlighted lipgloss.Style
	Selected    lipgloss.Style
	Missing     lipgloss.Style
	Footer      lipgloss.Style
	Separator   lipgloss.Style
	StatusBar   lipgloss.Style
	StatusError lipgloss.Style
	Prompt      lipgloss.Style
	Primary     lipgloss.Color
	Muted       lipgloss.Color
	Border      lipgloss.Color
	Warning     lipgloss.Color
	Error       lipgloss.Color
}

// Default is the ledger green theme.
var Default = Theme{
	Primary: lipgloss.Color("#2F855A"),
	Muted:   lipgloss.Color("#718096"),
	Border:  lipgloss.Color("#4A5568"),
	Warning: lipgloss.Color("#D69E2E"),
	Error:   lipgloss.Color("#E53E3E"),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#2F855A")),
	Subtitle: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#718096")),
	Header: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#F7FAFC")),
	Cell: lipgloss.NewStyle(),
	Highlighted: lipgloss.NewStyle().
		Background(lipgloss.Color("#2D3748")),
	Selected: lipgloss.NewStyle().
		Background(lipgloss.Color("#2F855A")).
		Foreground(lipgloss.Color("#F7FAFC")).
		Bold(true),
	Missing: lipgloss.NewStyle().
		Background(lipgloss.Color("#744210")),
	Footer: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#68D391")),
	Separator: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4A5568")),
	StatusBar: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#A0AEC0")),
	StatusError: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#E53E3E")).
		Bold(true),
	Prompt: lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3182CE")).
		Bold(true),
}

// Plain drops every color, for terminals without color support and for
// snapshot-free tests.
var Plain = Theme{
	Title:       lipgloss.NewStyle(),
	Subtitle:    lipgloss.NewStyle(),
	Header:      lipgloss.NewStyle(),
	Cell:        lipgloss.NewStyle(),
	Highlighted: lipgloss.NewStyle(),
	Selected:    lipgloss.NewStyle(),
	Missing:     lipgloss.NewStyle(),
	Footer:      lipgloss.NewStyle(),
	Separator:   lipgloss.NewStyle(),
	StatusBar:   lipgloss.NewStyle(),
	StatusError: lipgloss.NewStyle(),
	Prompt:      lipgloss.NewStyle(),
}
