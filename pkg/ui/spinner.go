package ui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// stopSpinnerMsg ends a spinner program and clears its line.
type stopSpinnerMsg struct{}

// spinnerModel shows a message next to a spinner until it receives
// stopSpinnerMsg.
type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
}

func newSpinner(message string, styles Styles) spinnerModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner
	return spinnerModel{spinner: sp, message: message}
}

// Init starts the spinner.
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update advances the spinner.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stopSpinnerMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the spinner line.
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.message + "\n"
}
