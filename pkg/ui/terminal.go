// Package ui implements the interactive terminal for the PR workflow.
//
// On a TTY it uses bubbletea programs for the action menu, the feedback
// prompt and spinners, and renders draft bodies as Markdown with glamour.
// Otherwise it falls back to plain line-oriented prompts, which is also what
// the tests drive.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"golang.org/x/term"

	"thoreinstein.com/floyd/pkg/ai"
	"thoreinstein.com/floyd/pkg/workflow"
)

const (
	menuTitle      = "What would you like to do?"
	feedbackPrompt = "What should I change?"
	wrapWidth      = 80
)

// Terminal implements workflow.UI.
type Terminal struct {
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	interactive bool
	styles      Styles
	renderer    *glamour.TermRenderer

	linesOnce sync.Once
	lines     chan string
}

var _ workflow.UI = (*Terminal)(nil)

// TerminalOption is a functional option for configuring Terminal.
type TerminalOption func(*Terminal)

// WithInput sets where answers are read from.
func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) {
		t.in = r
	}
}

// WithOutput sets where drafts, menus and messages are written.
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.out = w
	}
}

// WithErrorOutput sets where errors and spinners are written.
func WithErrorOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) {
		t.errOut = w
	}
}

// WithInteractive forces interactive or line mode instead of detecting a TTY.
func WithInteractive(interactive bool) TerminalOption {
	return func(t *Terminal) {
		t.interactive = interactive
	}
}

// NewTerminal creates a Terminal on stdin/stdout/stderr. It is interactive
// when both stdin and stdout are terminals.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		in:          os.Stdin,
		out:         os.Stdout,
		errOut:      os.Stderr,
		interactive: isTerminal(os.Stdin) && isTerminal(os.Stdout),
		styles:      DefaultStyles(),
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.interactive {
		// Rendering falls back to plain text when this fails.
		t.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(wrapWidth),
		)
	}

	return t
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Info prints an informational message.
func (t *Terminal) Info(msg string) {
	fmt.Fprintln(t.out, t.styles.Info.Render("→ "+msg))
}

// Warn prints a warning.
func (t *Terminal) Warn(msg string) {
	fmt.Fprintln(t.out, t.styles.Warn.Render("! "+msg))
}

// Success prints a success message.
func (t *Terminal) Success(msg string) {
	fmt.Fprintln(t.out, t.styles.Success.Render("✓ "+msg))
}

// Error prints an error report. Only the first line is highlighted so the
// guidance stays readable.
func (t *Terminal) Error(msg string) {
	head, rest, _ := strings.Cut(msg, "\n")
	fmt.Fprintln(t.errOut, t.styles.Error.Render("✗ "+head))
	if rest != "" {
		fmt.Fprintln(t.errOut, rest)
	}
}

// Start shows a spinner until the returned func is called. In line mode it
// prints the message once.
func (t *Terminal) Start(msg string) func() {
	if !t.interactive {
		t.Info(msg)
		return func() {}
	}

	p := tea.NewProgram(newSpinner(msg, t.styles),
		tea.WithInput(nil),
		tea.WithOutput(t.errOut),
		tea.WithoutSignalHandler(),
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.Send(stopSpinnerMsg{})
			<-done
		})
	}
}

// ShowDraft prints the draft title and body in bordered panels.
func (t *Terminal) ShowDraft(draft *ai.Draft) {
	if draft == nil {
		return
	}

	body := draft.Body
	if t.renderer != nil {
		if rendered, err := t.renderer.Render(body); err == nil {
			body = strings.TrimRight(rendered, "\n")
		}
	}

	titlePanel := t.styles.Panel.Width(wrapWidth).Render(
		t.styles.PanelTitle.Render("Title") + "\n" + t.styles.DraftTitle.Render(draft.Title))
	bodyPanel := t.styles.Panel.Width(wrapWidth).Render(
		t.styles.PanelTitle.Render("Body") + "\n" + body)

	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, lipgloss.JoinVertical(lipgloss.Left, titlePanel, bodyPanel))
	fmt.Fprintln(t.out)
}

// ChooseAction asks whether to create, refine or cancel. Closing the prompt
// returns workflow.ErrCancelled.
func (t *Terminal) ChooseAction(ctx context.Context) (workflow.Action, error) {
	if t.interactive {
		final, err := t.runProgram(ctx, newSelector(menuTitle, workflow.Actions(), t.styles))
		if err != nil {
			return "", err
		}
		m, _ := final.(selectorModel)
		if m.cancelled || m.chosen == "" {
			return "", workflow.ErrCancelled
		}
		return m.chosen, nil
	}

	actions := workflow.Actions()
	fmt.Fprintln(t.out, t.styles.Prompt.Render(menuTitle))
	for i, a := range actions {
		fmt.Fprintf(t.out, "  %d) %s\n", i+1, a.Label())
	}

	for {
		fmt.Fprintf(t.out, "Choose [1-%d]: ", len(actions))
		line, err := t.readLine(ctx)
		if err != nil {
			return "", err
		}
		if action, ok := parseAction(line, actions); ok {
			return action, nil
		}
		t.Warn(fmt.Sprintf("Please enter a number from 1 to %d.", len(actions)))
	}
}

// parseAction accepts a 1-based menu number or an action name.
func parseAction(input string, actions []workflow.Action) (workflow.Action, bool) {
	input = strings.ToLower(strings.TrimSpace(input))
	if n, err := strconv.Atoi(input); err == nil {
		if n >= 1 && n <= len(actions) {
			return actions[n-1], true
		}
		return "", false
	}
	for _, a := range actions {
		if input == string(a) {
			return a, true
		}
	}
	return "", false
}

// AskFeedback asks what to change in the next draft. Blank answers are
// asked again; closing the prompt returns workflow.ErrCancelled.
func (t *Terminal) AskFeedback(ctx context.Context) (string, error) {
	if t.interactive {
		final, err := t.runProgram(ctx, newFeedback(feedbackPrompt, t.styles))
		if err != nil {
			return "", err
		}
		m, _ := final.(feedbackModel)
		if m.cancelled || !m.submitted {
			return "", workflow.ErrCancelled
		}
		return m.Value(), nil
	}

	for {
		fmt.Fprint(t.out, t.styles.Prompt.Render(feedbackPrompt)+" ")
		line, err := t.readLine(ctx)
		if err != nil {
			return "", err
		}
		if feedback := strings.TrimSpace(line); feedback != "" {
			return feedback, nil
		}
	}
}

// runProgram runs a bubbletea prompt bound to ctx.
func (t *Terminal) runProgram(ctx context.Context, model tea.Model) (tea.Model, error) {
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(t.in),
		tea.WithOutput(t.out),
		tea.WithoutSignalHandler(),
	)

	final, err := p.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "terminal prompt failed")
	}
	return final, nil
}

// readLine returns the next input line without its newline. End of input
// returns workflow.ErrCancelled.
func (t *Terminal) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.linesOnce.Do(func() {
		t.lines = make(chan string)
		go t.scanLines()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-t.lines:
		if !ok {
			fmt.Fprintln(t.out)
			return "", workflow.ErrCancelled
		}
		return line, nil
	}
}

// scanLines feeds t.lines until the input ends. A blocked read cannot be
// interrupted, so this goroutine lives as long as the input does.
func (t *Terminal) scanLines() {
	defer close(t.lines)
	reader := bufio.NewReader(t.in)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			t.lines <- strings.TrimRight(line, "\r\n")
		}
		if err != nil {
			return
		}
	}
}
