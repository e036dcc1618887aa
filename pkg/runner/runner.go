// Package runner executes external command-line tools.
//
// Every git, gh and AI CLI invocation in floyd goes through a Runner so that
// the packages built on top of it can be tested with deterministic fakes.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

// waitDelay bounds how long Run waits for output after the process is killed.
const waitDelay = 2 * time.Second

// Runner runs a single external command to completion.
type Runner interface {
	// Run executes name with args, feeding stdin when it is non-empty, and
	// returns the captured standard output.
	//
	// A non-zero exit yields an *errors.ExecError carrying the trimmed
	// standard error text; a missing executable yields an *errors.ExecError
	// with NotFound set. Cancellation of ctx is returned as ctx.Err().
	Run(ctx context.Context, name string, args []string, stdin string) (string, error)
}

// CLIRunner implements Runner with os/exec.
type CLIRunner struct {
	dir    string
	env    []string
	logger *slog.Logger
}

// Option is a functional option for configuring CLIRunner.
type Option func(*CLIRunner)

// WithDir sets the working directory for spawned processes.
func WithDir(dir string) Option {
	return func(r *CLIRunner) {
		r.dir = dir
	}
}

// WithEnv appends KEY=VALUE pairs to the inherited environment.
func WithEnv(env ...string) Option {
	return func(r *CLIRunner) {
		r.env = append(r.env, env...)
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(r *CLIRunner) {
		r.logger = logger
	}
}

// New creates a CLIRunner.
func New(opts ...Option) *CLIRunner {
	r := &CLIRunner{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ Runner = (*CLIRunner)(nil)

// Run executes the command synchronously. There are no retries.
func (r *CLIRunner) Run(ctx context.Context, name string, args []string, stdin string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", contextError(name, err)
	}

	path, err := exec.LookPath(name)
	if err != nil {
		return "", floyderrors.NewToolNotFound(name, err)
	}

	// #nosec G204 - arguments are passed as an argv slice, never through a shell
	cmd := exec.CommandContext(ctx, path, args...)
	if r.dir != "" {
		cmd.Dir = r.dir
	}
	if len(r.env) > 0 {
		cmd.Env = append(cmd.Environ(), r.env...)
	}
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	// Grandchildren can keep the output pipes open after a kill.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logDebug("running command", "tool", name, "args", len(args), "stdin_bytes", len(stdin))

	if err := cmd.Run(); err != nil {
		// A cancelled or expired context kills the process; report that
		// instead of the resulting "signal: killed".
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", contextError(name, ctxErr)
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = "command failed: " + err.Error()
		}

		r.logDebug("command failed", "tool", name, "exit_code", exitCode)
		return "", floyderrors.NewExecutionFailed(name, detail, exitCode, err)
	}

	return stdout.String(), nil
}

// contextError maps a finished context to the error Run reports: an expired
// deadline is an execution failure, a cancellation is passed through as is.
func contextError(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return floyderrors.NewExecutionFailed(name, "timed out", -1, err)
	}
	return err
}

// logDebug logs a debug message if a logger is configured.
func (r *CLIRunner) logDebug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}
