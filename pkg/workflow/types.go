// Package workflow provides the engine that turns a branch into a pull request.
//
// The workflow proceeds through these states:
//  1. Validating - repository, current and target branches, existing PRs
//  2. Fetching - commits, diff and diff stat against the target
//  3. Generating - AI draft from the branch context and any feedback
//  4. Presenting - show the draft and ask what to do with it
//  5. Creating, Refining or Cancelled, as chosen by the user
//
// Refining loops back to Generating with the new feedback.
package workflow

import (
	"context"

	"github.com/cockroachdb/errors"

	"thoreinstein.com/floyd/pkg/ai"
)

// State is a workflow state.
type State string

const (
	// StateValidating checks the repository and branches.
	StateValidating State = "validating"
	// StateFetching gathers the git context.
	StateFetching State = "fetching"
	// StateGenerating asks the AI provider for a draft.
	StateGenerating State = "generating"
	// StatePresenting shows the draft and waits for a choice.
	StatePresenting State = "presenting"
	// StateCreating submits the draft to the forge.
	StateCreating State = "creating"
	// StateRefining collects feedback for the next draft.
	StateRefining State = "refining"
	// StateCreated is terminal: the pull request exists.
	StateCreated State = "created"
	// StateCancelled is terminal: the user stopped the run.
	StateCancelled State = "cancelled"
	// StateFailed is terminal: an error ended the run.
	StateFailed State = "failed"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions follow s.
func (s State) IsTerminal() bool {
	return s == StateCreated || s == StateCancelled || s == StateFailed
}

// Action is the user's decision about a presented draft.
type Action string

const (
	ActionCreate Action = "create"
	ActionRefine Action = "refine"
	ActionCancel Action = "cancel"
)

// Actions returns the menu choices in display order.
func Actions() []Action {
	return []Action{ActionCreate, ActionRefine, ActionCancel}
}

// Label returns the menu text for a.
func (a Action) Label() string {
	switch a {
	case ActionCreate:
		return "Create Pull Request"
	case ActionRefine:
		return "Refine Draft"
	case ActionCancel:
		return "Cancel"
	default:
		return string(a)
	}
}

// ErrCancelled is returned by a UI when the user aborts a prompt, for
// example with Ctrl+C or end of input. It matches context.Canceled.
var ErrCancelled = errors.Wrap(context.Canceled, "cancelled by user")

// UI is the terminal collaborator the engine reports to and asks for input.
type UI interface {
	Info(msg string)
	Warn(msg string)
	Success(msg string)
	Error(msg string)

	// Start shows progress for a blocking step. The returned func stops it
	// and is safe to call more than once.
	Start(msg string) (stop func())

	// ShowDraft displays a generated draft.
	ShowDraft(draft *ai.Draft)

	// ChooseAction asks what to do with the current draft.
	ChooseAction(ctx context.Context) (Action, error)

	// AskFeedback asks what to change in the next draft.
	AskFeedback(ctx context.Context) (string, error)
}

// Result describes how a run ended.
type Result struct {
	State       State
	URL         string    // Set when State is StateCreated
	Draft       *ai.Draft // Last presented draft, if any
	Generations int       // Number of provider calls made
	History     []State   // Every state entered, in order
}
