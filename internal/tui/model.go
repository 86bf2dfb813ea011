package tui

import (
	"fmt"

	"github.com/Veraticus/the-books-must-balance/internal/grid"
	"github.com/Veraticus/the-books-must-balance/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Mode is what keystrokes currently drive.
type Mode int

// Input modes.
const (
	ModeNormal Mode = iota
	ModeEdit
	ModeSearch
	ModeConfirmDelete
)

// Lines around the row body: title, filters, header, separator, footer
// separator, footer, status and short help.
const chromeLines = 8

// Model is the bubbletea model of the grid editor.
type Model struct {
	lastErr   error
	grid      *grid.Grid
	theme     themes.Theme
	config    Config
	status    string
	editID    string
	editKey   string
	keymap    KeyMap
	input     textinput.Model
	help      help.Model
	mode      Mode
	row       int
	col       int
	rowOffset int
	colOffset int
	width     int
	height    int
	quitting  bool
}

// New creates an editor over g.
func New(g *grid.Grid, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	input := textinput.New()
	input.Prompt = ""

	h := help.New()
	h.Width = cfg.Width

	return Model{
		grid:   g,
		config: cfg,
		theme:  cfg.Theme,
		keymap: DefaultKeyMap(),
		input:  input,
		help:   h,
		width:  cfg.Width,
		height: cfg.Height,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Mode returns the current input mode.
func (m Model) Mode() Mode {
	return m.mode
}

// Cursor returns the visible row position and column index under the cursor.
func (m Model) Cursor() (row, col int) {
	return m.row, m.col
}

// Status returns the last status message, or the last error.
func (m Model) Status() string {
	if m.lastErr != nil {
		return m.lastErr.Error()
	}
	return m.status
}

// Grid returns the edited grid.
func (m Model) Grid() *grid.Grid {
	return m.grid
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clamp()
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.setError(fmt.Errorf("export : %w", msg.err))
		} else {
			m.setStatus("Exporté vers " + msg.path)
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keymap.ForceQuit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch m.mode {
		case ModeEdit:
			return m.updateEdit(msg)
		case ModeSearch:
			return m.updateSearch(msg)
		case ModeConfirmDelete:
			return m.updateConfirm(msg)
		default:
			return m.updateNormal(msg)
		}
	}
	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.lastErr = "", nil

	var cmd tea.Cmd
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Up):
		m.row--
	case key.Matches(msg, m.keymap.Down):
		m.row++
	case key.Matches(msg, m.keymap.Left):
		m.col--
	case key.Matches(msg, m.keymap.Right):
		m.col++
	case key.Matches(msg, m.keymap.PageUp):
		m.row -= m.bodyHeight()
	case key.Matches(msg, m.keymap.PageDown):
		m.row += m.bodyHeight()
	case key.Matches(msg, m.keymap.Home):
		m.row = 0
	case key.Matches(msg, m.keymap.End):
		m.row = len(m.grid.Visible()) - 1
	case key.Matches(msg, m.keymap.Edit):
		cmd = m.startEdit()
	case key.Matches(msg, m.keymap.Cycle):
		m.cycleChoice()
	case key.Matches(msg, m.keymap.Sort):
		m.toggleSort()
	case key.Matches(msg, m.keymap.Add):
		m.addRow()
	case key.Matches(msg, m.keymap.Delete):
		if _, _, ok := m.current(); ok {
			m.mode = ModeConfirmDelete
		}
	case key.Matches(msg, m.keymap.Search):
		m.mode = ModeSearch
		m.input.SetValue(m.grid.Filter().Search)
		m.input.CursorEnd()
		cmd = m.input.Focus()
	case key.Matches(msg, m.keymap.Filter):
		m.cycleFilter()
	case key.Matches(msg, m.keymap.ClearFilter):
		m.grid.SetFilter(grid.FilterState{})
		m.setStatus("Filtres effacés")
	case key.Matches(msg, m.keymap.Export):
		cmd = m.export()
	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	m.clamp()
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		id := m.editID
		if _, err := m.grid.Edit(id, m.editKey, m.input.Value()); err != nil {
			m.setError(err)
		}
		m.endInput()
		m.follow(id)
		return m, nil
	case tea.KeyEsc:
		m.endInput()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.endInput()
		m.clamp()
		return m, nil
	case tea.KeyEsc:
		state := m.grid.Filter()
		state.Search = ""
		m.grid.SetFilter(state)
		m.endInput()
		m.clamp()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	state := m.grid.Filter()
	state.Search = m.input.Value()
	m.grid.SetFilter(state)
	m.row = 0
	m.clamp()
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	switch msg.String() {
	case "o", "O", "y", "Y":
		if _, err := m.grid.DeleteVisible(m.row); err != nil {
			m.setError(err)
		} else {
			m.setStatus("Ligne supprimée")
		}
	default:
		m.setStatus("Suppression annulée")
	}
	m.clamp()
	return m, nil
}

func (m *Model) endInput() {
	m.mode = ModeNormal
	m.editID, m.editKey = "", ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.lastErr = nil
}

func (m *Model) setError(err error) {
	m.lastErr = err
}

// current returns the row and column under the cursor.
func (m *Model) current() (grid.Row, grid.Column, bool) {
	visible := m.grid.Visible()
	columns := m.grid.Columns().Columns()
	if m.row < 0 || m.row >= len(visible) || m.col < 0 || m.col >= len(columns) {
		return grid.Row{}, grid.Column{}, false
	}
	return visible[m.row], columns[m.col], true
}

// follow moves the cursor onto the row with id when it is visible.
func (m *Model) follow(id string) {
	for i, row := range m.grid.Visible() {
		if row.ID == id {
			m.row = i
			break
		}
	}
	m.clamp()
}

func (m *Model) bodyHeight() int {
	h := m.height - chromeLines
	if m.help.ShowAll {
		h -= len(m.keymap.FullHelp()[0]) - 1
	}
	if h < 1 {
		h = 1
	}
	return h
}

// clamp keeps the cursor inside the grid and scrolls it into view.
func (m *Model) clamp() {
	visible := m.grid.Visible()
	columns := m.grid.Columns().Columns()

	m.row = bound(m.row, len(visible))
	m.col = bound(m.col, len(columns))

	body := m.bodyHeight()
	if m.row < m.rowOffset {
		m.rowOffset = m.row
	}
	if m.row >= m.rowOffset+body {
		m.rowOffset = m.row - body + 1
	}
	if last := len(visible) - body; m.rowOffset > last {
		m.rowOffset = last
	}
	if m.rowOffset < 0 {
		m.rowOffset = 0
	}

	if m.col < m.colOffset {
		m.colOffset = m.col
	}
	widths := m.columnWidths(visible)
	for m.colOffset < m.col && m.col >= m.lastColumn(widths, len(visible)) {
		m.colOffset++
	}
}

func bound(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}
