package ui

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"thoreinstein.com/floyd/pkg/workflow"
)

// selectorModel is a single-choice menu of workflow actions.
type selectorModel struct {
	title     string
	choices   []workflow.Action
	cursor    int
	chosen    workflow.Action
	cancelled bool
	styles    Styles
}

func newSelector(title string, choices []workflow.Action, styles Styles) selectorModel {
	return selectorModel{title: title, choices: choices, styles: styles}
}

// Init initializes the model.
func (m selectorModel) Init() tea.Cmd {
	return nil
}

// Update handles key presses.
func (m selectorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc", "q":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		m.cursor = (m.cursor - 1 + len(m.choices)) % len(m.choices)
	case "down", "j", "tab":
		m.cursor = (m.cursor + 1) % len(m.choices)
	case "enter", " ":
		m.chosen = m.choices[m.cursor]
		return m, tea.Quit
	default:
		// Digits pick a choice directly.
		if n, err := strconv.Atoi(key.String()); err == nil && n >= 1 && n <= len(m.choices) {
			m.cursor = n - 1
			m.chosen = m.choices[m.cursor]
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the menu.
func (m selectorModel) View() string {
	if m.chosen != "" || m.cancelled {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render(m.title))
	b.WriteString("\n")
	for i, choice := range m.choices {
		if i == m.cursor {
			b.WriteString(m.styles.Cursor.Render("❯ "))
			b.WriteString(m.styles.Selected.Render(choice.Label()))
		} else {
			b.WriteString("  ")
			b.WriteString(m.styles.Choice.Render(choice.Label()))
		}
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Help.Render("↑/↓ move • enter select • esc cancel"))
	b.WriteString("\n")
	return b.String()
}
