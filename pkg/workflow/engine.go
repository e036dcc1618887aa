package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"thoreinstein.com/floyd/pkg/ai"
	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/git"
	"thoreinstein.com/floyd/pkg/github"
)

// Engine orchestrates the pull request workflow.
type Engine struct {
	repo     git.Repository
	forge    github.Client
	provider ai.Provider
	cfg      *config.Config
	ui       UI
	logger   *slog.Logger
}

// NewEngine creates a workflow engine.
//
// Parameters:
//   - repo: git repository the branches live in (required)
//   - forge: forge client for PR lookup and creation (required)
//   - provider: AI provider that writes drafts (required)
//   - cfg: configuration snapshot for the run (required)
//   - ui: terminal collaborator (required)
//   - logger: debug logger (may be nil)
func NewEngine(repo git.Repository, forge github.Client, provider ai.Provider, cfg *config.Config, ui UI, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		repo:     repo,
		forge:    forge,
		provider: provider,
		cfg:      cfg,
		ui:       ui,
		logger:   logger,
	}
}

// run holds the state of one invocation.
type run struct {
	result *Result
	logger *slog.Logger
}

func (r *run) enter(s State) {
	r.result.State = s
	r.result.History = append(r.result.History, s)
	r.logger.Debug("state", "state", s)
}

// Run executes the workflow for the checked-out branch against target.
//
// It returns a Result in every case. Cancellation, whether from the menu,
// a closed prompt or ctx, ends in StateCancelled with a nil error. Any other
// failure ends in StateFailed, is reported through the UI and is returned.
func (e *Engine) Run(ctx context.Context, target string) (*Result, error) {
	r := &run{
		result: &Result{},
		logger: e.logger.With("run_id", uuid.NewString(), "target", target),
	}

	err := e.execute(ctx, r, target)
	return e.finish(r, err)
}

func (e *Engine) execute(ctx context.Context, r *run, target string) error {
	r.enter(StateValidating)
	head, base, err := e.validate(ctx, target)
	if err != nil {
		return err
	}
	e.ui.Info(fmt.Sprintf("Comparing %s → %s", head, base))

	r.enter(StateFetching)
	bc, err := e.fetch(ctx, head, base)
	if err != nil {
		return err
	}
	r.logger.Debug("gathered context", "base_ref", base.Name(), "diff_chars", len(bc.Diff))

	var feedback string
	for {
		r.enter(StateGenerating)
		draft, err := e.generate(ctx, bc, feedback)
		r.result.Generations++
		if err != nil {
			return err
		}

		r.enter(StatePresenting)
		r.result.Draft = draft
		e.ui.ShowDraft(draft)

		action, err := e.ui.ChooseAction(ctx)
		if err != nil {
			return err
		}
		r.logger.Debug("user action", "action", action)

		switch action {
		case ActionCreate:
			r.enter(StateCreating)
			url, err := e.create(ctx, draft, base)
			if err != nil {
				return err
			}
			r.enter(StateCreated)
			r.result.URL = url
			e.ui.Success("Pull request created: " + url)
			return nil

		case ActionRefine:
			r.enter(StateRefining)
			// The latest note replaces any earlier one; each generation
			// sees the full context plus this single note.
			feedback, err = e.ui.AskFeedback(ctx)
			if err != nil {
				return err
			}

		case ActionCancel:
			return ErrCancelled

		default:
			return floyderrors.Newf("unknown action %q", action)
		}
	}
}

// validate resolves the head and base branches and checks that a new pull
// request between them makes sense.
func (e *Engine) validate(ctx context.Context, target string) (head, base git.Branch, err error) {
	if err := ctx.Err(); err != nil {
		return head, base, err
	}
	inside, err := e.repo.IsRepository(ctx)
	if err != nil {
		return head, base, err
	}
	if !inside {
		return head, base, floyderrors.NewNotRepository()
	}

	current := e.repo.CurrentBranch(ctx)
	if current == "" {
		// An interrupted git also answers with an empty branch.
		if err := ctx.Err(); err != nil {
			return head, base, err
		}
		return head, base, floyderrors.NewInvalidBranch("HEAD is detached; check out a branch first")
	}
	head, err = git.NewBranch(current)
	if err != nil {
		return head, base, err
	}

	base, err = git.NewBranch(target)
	if err != nil {
		return head, base, err
	}

	if head == base {
		return head, base, floyderrors.NewInvalidBranch(
			fmt.Sprintf("current branch and target branch are both '%s'", head))
	}

	if !e.repo.BranchExists(ctx, base.Name()) {
		if err := ctx.Err(); err != nil {
			return head, base, err
		}
		return head, base, floyderrors.NewBranchNotFound(base.Name())
	}

	exists, err := e.forge.PRExists(ctx, head.Name(), base.Name())
	if err != nil {
		return head, base, err
	}
	if exists {
		return head, base, floyderrors.NewPRAlreadyExists(head.Name(), base.Name())
	}

	return head, base, nil
}

// fetch gathers the comparison context between head and base.
func (e *Engine) fetch(ctx context.Context, head, base git.Branch) (git.BranchContext, error) {
	stop := e.ui.Start("Reading changes...")
	defer stop()

	ref := e.repo.BaseRef(ctx, base.Name())
	bc := git.BranchContext{Current: head, Target: base}

	var err error
	if bc.Commits, err = e.repo.Commits(ctx, ref); err != nil {
		return bc, contextError("failed to read commits", err)
	}
	if bc.Diff, err = e.repo.Diff(ctx, ref); err != nil {
		return bc, contextError("failed to read diff", err)
	}
	if bc.DiffStat, err = e.repo.DiffStat(ctx, ref); err != nil {
		return bc, contextError("failed to read diff stat", err)
	}

	if !bc.HasChanges() {
		return bc, floyderrors.NewNoChanges()
	}
	return bc, nil
}

func contextError(msg string, err error) error {
	if floyderrors.IsCancelled(err) {
		return err
	}
	return floyderrors.NewContextErrorWithCause(msg, err)
}

func (e *Engine) generate(ctx context.Context, bc git.BranchContext, feedback string) (*ai.Draft, error) {
	stop := e.ui.Start(fmt.Sprintf("Generating PR with %s...", e.provider.Name()))
	defer stop()

	return e.provider.GenerateDraft(ctx, bc, e.cfg.AI, feedback)
}

// create submits draft against base. gh infers the head from the checked-out
// branch and reports an unpushed branch itself.
func (e *Engine) create(ctx context.Context, draft *ai.Draft, base git.Branch) (string, error) {
	stop := e.ui.Start("Creating pull request...")
	defer stop()

	if !e.forge.IsAuthenticated(ctx) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "", floyderrors.NewCreationError("gh is not authenticated; run 'gh auth login'")
	}

	pr, err := e.forge.CreatePR(ctx, github.CreatePROptions{
		Title:      draft.Title,
		Body:       draft.Body,
		BaseBranch: base.Name(),
		Draft:      e.cfg.GitHub.Draft,
		Reviewers:  e.cfg.GitHub.DefaultReviewers,
	})
	if err != nil {
		return "", err
	}
	return pr.URL, nil
}

// finish moves the run into its terminal state and reports failures.
func (e *Engine) finish(r *run, err error) (*Result, error) {
	switch {
	case err == nil:
		return r.result, nil

	case floyderrors.IsCancelled(err):
		r.enter(StateCancelled)
		e.ui.Warn(floyderrors.FormatUserError(err))
		return r.result, nil

	default:
		failedIn := r.result.State
		r.enter(StateFailed)
		r.logger.Debug("workflow failed", "state", failedIn, "error", err)
		e.ui.Error(floyderrors.FormatUserError(err))
		return r.result, err
	}
}
