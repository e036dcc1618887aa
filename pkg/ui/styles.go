package ui

import "github.com/charmbracelet/lipgloss"

// Brand colors.
var (
	Primary   = lipgloss.Color("#F59A00")
	Secondary = lipgloss.Color("#F5D500")
	Muted     = lipgloss.Color("#7D7D7D")
	Danger    = lipgloss.Color("#E5484D")
	Good      = lipgloss.Color("#30A46C")
)

// Styles holds the lipgloss styles used by the terminal UI.
type Styles struct {
	Info    lipgloss.Style
	Warn    lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style

	PanelTitle lipgloss.Style
	Panel      lipgloss.Style
	DraftTitle lipgloss.Style

	Prompt   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Choice   lipgloss.Style
	Help     lipgloss.Style
	Spinner  lipgloss.Style
}

// DefaultStyles returns the floyd color scheme.
func DefaultStyles() Styles {
	return Styles{
		Info: lipgloss.NewStyle().
			Foreground(Secondary),

		Warn: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Success: lipgloss.NewStyle().
			Foreground(Good).
			Bold(true),

		Error: lipgloss.NewStyle().
			Foreground(Danger).
			Bold(true),

		PanelTitle: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 1),

		DraftTitle: lipgloss.NewStyle().
			Bold(true),

		Prompt: lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true),

		Cursor: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Selected: lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true),

		Choice: lipgloss.NewStyle(),

		Help: lipgloss.NewStyle().
			Foreground(Muted),

		Spinner: lipgloss.NewStyle().
			Foreground(Primary),
	}
}
