package tui

// exportedMsg reports the outcome of an export.
type exportedMsg struct {
	err  error
	path string
}
