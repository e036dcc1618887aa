package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// feedbackModel asks for a single line of refinement feedback.
type feedbackModel struct {
	input     textinput.Model
	prompt    string
	submitted bool
	cancelled bool
	styles    Styles
}

func newFeedback(prompt string, styles Styles) feedbackModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. shorten the title, mention the migration"
	ti.CharLimit = 1000
	ti.Width = 72
	ti.Prompt = "> "
	ti.PromptStyle = styles.Cursor
	ti.Focus()

	return feedbackModel{input: ti, prompt: prompt, styles: styles}
}

// Value returns the trimmed input.
func (m feedbackModel) Value() string {
	return strings.TrimSpace(m.input.Value())
}

// Init initializes the model.
func (m feedbackModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles key presses and forwards the rest to the text input.
func (m feedbackModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			// Empty feedback is not useful; keep asking.
			if m.Value() == "" {
				return m, nil
			}
			m.submitted = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt and input.
func (m feedbackModel) View() string {
	if m.submitted || m.cancelled {
		return ""
	}
	return m.styles.Prompt.Render(m.prompt) + "\n" +
		m.input.View() + "\n" +
		m.styles.Help.Render("enter submit • esc cancel") + "\n"
}
