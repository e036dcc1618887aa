package git

import (
	"context"
	"log/slog"
	"strings"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/runner"
)

// Defaults used when no option overrides them.
const (
	DefaultRemote = "origin"
	gitCommand    = "git"
)

// DefaultExcludePatterns are the pathspecs left out of diffs. Lock files add
// thousands of lines that say nothing about the change.
var DefaultExcludePatterns = []string{"*.lock", "*-lock.json"}

// Repository answers the questions the PR workflow asks about git state.
type Repository interface {
	// IsRepository reports whether the working directory is inside a work
	// tree. A git that answers "no" is (false, nil); a missing git binary or
	// a cancelled ctx is returned as the error.
	IsRepository(ctx context.Context) (bool, error)

	// BranchExists reports whether name resolves to a branch.
	BranchExists(ctx context.Context, name string) bool

	// BaseRef returns the ref commits and diffs for name are computed against.
	BaseRef(ctx context.Context, name string) string

	// CurrentBranch returns the checked-out branch, or "" when HEAD is detached.
	CurrentBranch(ctx context.Context) string

	// Commits returns one-line log entries on HEAD that are not on base.
	Commits(ctx context.Context, base string) (string, error)

	// Diff returns the merge-base diff between base and the work tree.
	Diff(ctx context.Context, base string) (string, error)

	// DiffStat returns the summary of Diff.
	DiffStat(ctx context.Context, base string) (string, error)
}

// CLIRepository implements Repository with the git CLI.
type CLIRepository struct {
	runner     runner.Runner
	remote     string
	remoteOnly bool
	excludes   []string
	logger     *slog.Logger
}

// Option is a functional option for configuring CLIRepository.
type Option func(*CLIRepository)

// WithRemote sets the remote whose tracking refs are consulted.
func WithRemote(remote string) Option {
	return func(r *CLIRepository) {
		if remote != "" {
			r.remote = remote
		}
	}
}

// WithRemoteOnly makes BranchExists ask the remote directly instead of
// falling back to local branches. Unpushed branches then fail validation.
func WithRemoteOnly(remoteOnly bool) Option {
	return func(r *CLIRepository) {
		r.remoteOnly = remoteOnly
	}
}

// WithExcludePatterns replaces the pathspecs excluded from diffs.
func WithExcludePatterns(patterns []string) Option {
	return func(r *CLIRepository) {
		r.excludes = patterns
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *CLIRepository) {
		r.logger = logger
	}
}

// NewCLIRepository creates a git CLI backed Repository.
func NewCLIRepository(run runner.Runner, opts ...Option) *CLIRepository {
	r := &CLIRepository{
		runner:   run,
		remote:   DefaultRemote,
		excludes: DefaultExcludePatterns,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Repository = (*CLIRepository)(nil)

// IsRepository runs git rev-parse --is-inside-work-tree.
func (r *CLIRepository) IsRepository(ctx context.Context) (bool, error) {
	out, err := r.git(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if floyderrors.IsToolNotFound(err) || ctx.Err() != nil {
			return false, err
		}
		return false, nil
	}
	return out == "true", nil
}

// BranchExists checks the remote-tracking ref first and then the local
// branch, so freshly created unpushed targets still validate. With
// WithRemoteOnly the remote is queried with ls-remote instead.
func (r *CLIRepository) BranchExists(ctx context.Context, name string) bool {
	if r.remoteOnly {
		_, err := r.git(ctx, "ls-remote", "--exit-code", "--heads", r.remote, "refs/heads/"+name)
		r.logDebug("checked remote branch", "branch", name, "remote", r.remote, "found", err == nil)
		return err == nil
	}

	if r.refExists(ctx, r.remoteRef(name)) {
		return true
	}
	found := r.refExists(ctx, "refs/heads/"+name)
	r.logDebug("checked local branch", "branch", name, "found", found)
	return found
}

// BaseRef prefers <remote>/<name> when the remote-tracking ref exists since
// that is what the pull request will be compared against.
func (r *CLIRepository) BaseRef(ctx context.Context, name string) string {
	if r.refExists(ctx, r.remoteRef(name)) {
		return r.remote + "/" + name
	}
	return name
}

// CurrentBranch runs git branch --show-current.
func (r *CLIRepository) CurrentBranch(ctx context.Context) string {
	out, err := r.git(ctx, "branch", "--show-current")
	if err != nil {
		return ""
	}
	return out
}

// Commits runs git log --oneline base..HEAD.
func (r *CLIRepository) Commits(ctx context.Context, base string) (string, error) {
	return r.git(ctx, "log", "--oneline", base+"..HEAD")
}

// Diff runs git diff --merge-base base with lock files excluded.
func (r *CLIRepository) Diff(ctx context.Context, base string) (string, error) {
	return r.git(ctx, r.diffArgs(base)...)
}

// DiffStat runs git diff --stat --merge-base base with lock files excluded.
func (r *CLIRepository) DiffStat(ctx context.Context, base string) (string, error) {
	args := r.diffArgs(base)
	args = append([]string{args[0], "--stat"}, args[1:]...)
	return r.git(ctx, args...)
}

func (r *CLIRepository) diffArgs(base string) []string {
	args := []string{"diff", "--merge-base", base, "--", "."}
	for _, pattern := range r.excludes {
		args = append(args, ":(exclude)"+pattern)
	}
	return args
}

func (r *CLIRepository) remoteRef(name string) string {
	return "refs/remotes/" + r.remote + "/" + name
}

func (r *CLIRepository) refExists(ctx context.Context, ref string) bool {
	_, err := r.git(ctx, "rev-parse", "--verify", "--quiet", ref)
	return err == nil
}

// git runs a git subcommand and returns its trimmed output.
func (r *CLIRepository) git(ctx context.Context, args ...string) (string, error) {
	out, err := r.runner.Run(ctx, gitCommand, args, "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// logDebug logs a debug message if a logger is configured.
func (r *CLIRepository) logDebug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
