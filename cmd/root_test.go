package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/runner"
	"thoreinstein.com/floyd/pkg/runner/runnertest"
	"thoreinstein.com/floyd/pkg/ui"
	"thoreinstein.com/floyd/pkg/workflow"
)

// cliHarness runs rootCmd against a scripted runner and line-mode terminal.
type cliHarness struct {
	run    *runnertest.Fake
	stdout bytes.Buffer // terminal output
	stderr bytes.Buffer // terminal errors
	cmdErr bytes.Buffer // errors printed by execute
	config string
}

// newCLIHarness isolates the command from the user's config and answers
// stdin with input.
func newCLIHarness(t *testing.T, input, configTOML string) *cliHarness {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	t.Chdir(dir)

	h := &cliHarness{
		run:    runnertest.New(),
		config: filepath.Join(dir, "floyd.toml"),
	}
	require.NoError(t, os.WriteFile(h.config, []byte(configTOML), 0o600))

	origRunner, origTerminal, origLogger := newRunner, newTerminal, logger
	t.Cleanup(func() {
		newRunner, newTerminal, logger = origRunner, origTerminal, origLogger
		resetFlags(rootCmd)
	})

	logger = slog.New(slog.DiscardHandler)
	newRunner = func(*slog.Logger) runner.Runner { return h.run }
	newTerminal = func(*cobra.Command) workflow.UI {
		return ui.NewTerminal(
			ui.WithInput(strings.NewReader(input)),
			ui.WithOutput(&h.stdout),
			ui.WithErrorOutput(&h.stderr),
			ui.WithInteractive(false),
		)
	}

	return h
}

func (h *cliHarness) execute(args ...string) error {
	rootCmd.SetArgs(append([]string{"-C", h.config}, args...))
	rootCmd.SetOut(&h.stdout)
	rootCmd.SetErr(&h.cmdErr)
	return execute(context.Background(), rootCmd, &h.cmdErr)
}

// resetFlags restores every flag to its default so tests do not leak
// parsed values into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// scriptRepository answers the git and gh calls of a run from feature/x
// onto main.
func scriptRepository(call runnertest.Call) (string, error) {
	line := call.CommandLine()
	switch {
	case line == "git rev-parse --is-inside-work-tree":
		return "true\n", nil
	case line == "git branch --show-current":
		return "feature/x\n", nil
	case strings.HasPrefix(line, "git rev-parse --verify --quiet refs/remotes/origin/main"):
		return "", nil
	case strings.HasPrefix(line, "git log --oneline origin/main..HEAD"):
		return "abc1234 feat: add retry to uploads\n", nil
	case strings.HasPrefix(line, "git diff --stat"):
		return " upload.go | 12 +++++++++---\n", nil
	case strings.HasPrefix(line, "git diff"):
		return "diff --git a/upload.go b/upload.go\n+retry()\n", nil
	case strings.HasPrefix(line, "gh pr list"):
		return "[]", nil
	case line == "gh auth status":
		return "Logged in to github.com", nil
	case strings.HasPrefix(line, "gh pr create"):
		return "https://github.com/acme/widgets/pull/7\n", nil
	case call.Name == "claude":
		return "TITLE: feat(upload): retry failed uploads\nBODY: Adds retries with backoff.", nil
	}
	return "", floyderrors.NewExecutionFailed(call.Name, "unexpected command: "+line, 1, nil)
}

func TestRootCommandStructure(t *testing.T) {
	// Not parallel - accesses global rootCmd
	assert.Equal(t, "floyd <target-branch>", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "pull request")

	for _, name := range []string{"config", "verbose", "provider", "model", "diff-limit"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing --%s", name)
	}
	assert.Equal(t, "C", rootCmd.PersistentFlags().Lookup("config").Shorthand)
	assert.Equal(t, "v", rootCmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "-1", rootCmd.PersistentFlags().Lookup("diff-limit").DefValue)
}

func TestRootCommand_NoTarget(t *testing.T) {
	h := newCLIHarness(t, "", "")

	err := h.execute()
	require.ErrorIs(t, err, errMissingTarget)
	assert.Equal(t, 1, floyderrors.ExitCode(err))
	// cobra writes usage to the configured output when one is set.
	assert.Contains(t, h.stdout.String()+h.cmdErr.String(), "Usage:")
	assert.Empty(t, h.run.Calls())
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	h := newCLIHarness(t, "", "")

	err := h.execute("main", "develop")
	require.Error(t, err)
	assert.Equal(t, 1, floyderrors.ExitCode(err))
	assert.NotEmpty(t, h.cmdErr.String())
	assert.Empty(t, h.run.Calls())
}

func TestRun_CreatesPullRequest(t *testing.T) {
	h := newCLIHarness(t, "1\n", "")
	h.run.Handler = scriptRepository

	err := h.execute("main")
	require.NoError(t, err)
	assert.Equal(t, 0, floyderrors.ExitCode(err))

	out := h.stdout.String()
	assert.Contains(t, out, "feat(upload): retry failed uploads")
	assert.Contains(t, out, "https://github.com/acme/widgets/pull/7")

	creates := 0
	for _, c := range h.run.CallsTo("gh") {
		if len(c.Args) > 1 && c.Args[0] == "pr" && c.Args[1] == "create" {
			creates++
			assert.Contains(t, c.Args, "--base")
			assert.Contains(t, c.Args, "main")
		}
	}
	assert.Equal(t, 1, creates)
	assert.Len(t, h.run.CallsTo("claude"), 1)
}

func TestRun_ProviderFlagOverridesConfig(t *testing.T) {
	h := newCLIHarness(t, "3\n", "[ai]\nprovider = \"claude\"\n")
	h.run.Handler = func(c runnertest.Call) (string, error) {
		if c.Name == "gemini" {
			return "TITLE: fix: handle empty input\nBODY: Guards the parser.", nil
		}
		return scriptRepository(c)
	}

	err := h.execute("--provider", "gemini", "--model", "gemini-2.5-pro", "main")
	require.NoError(t, err)

	calls := h.run.CallsTo("gemini")
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"-m", "gemini-2.5-pro"}, calls[0].Args[:2])
	assert.Empty(t, h.run.CallsTo("claude"))
}

func TestRun_CancelExitsZero(t *testing.T) {
	h := newCLIHarness(t, "3\n", "")
	h.run.Handler = scriptRepository

	err := h.execute("main")
	require.NoError(t, err)
	assert.Equal(t, 0, floyderrors.ExitCode(err))

	for _, c := range h.run.CallsTo("gh") {
		assert.NotEqual(t, "create", c.Args[1], "cancel must not create a PR")
	}
}

func TestRun_ValidationFailureReportedOnce(t *testing.T) {
	h := newCLIHarness(t, "", "")
	h.run.Handler = scriptRepository

	err := h.execute("feature/x")
	require.Error(t, err)
	assert.Equal(t, 1, floyderrors.ExitCode(err))
	assert.Equal(t, floyderrors.KindInvalidBranch, floyderrors.ValidationKindOf(err))

	assert.Contains(t, h.stderr.String(), "feature/x")
	assert.Empty(t, h.cmdErr.String(), "terminal already reported the failure")
	assert.Empty(t, h.run.CallsTo("claude"))
}

func TestRun_InvalidProviderConfig(t *testing.T) {
	h := newCLIHarness(t, "", "[ai]\nprovider = \"gpt\"\n")

	err := h.execute("main")
	require.Error(t, err)
	assert.True(t, floyderrors.IsConfigError(err))
	assert.Equal(t, 1, floyderrors.ExitCode(err))
	assert.Contains(t, h.cmdErr.String(), "gpt")
	assert.Empty(t, h.run.Calls(), "no tool runs before config is valid")
}

func TestRun_MissingExplicitConfig(t *testing.T) {
	h := newCLIHarness(t, "", "")
	h.config = filepath.Join(t.TempDir(), "nope.toml")

	err := h.execute("main")
	require.Error(t, err)
	assert.True(t, floyderrors.IsConfigError(err))
	assert.Empty(t, h.run.Calls())
}

func TestNewLogger(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	quiet := newLogger(&buf, false)
	assert.False(t, quiet.Enabled(ctx, slog.LevelDebug))
	assert.False(t, quiet.Enabled(ctx, slog.LevelInfo))
	assert.True(t, quiet.Enabled(ctx, slog.LevelWarn))

	loud := newLogger(&buf, true)
	assert.True(t, loud.Enabled(ctx, slog.LevelDebug))

	loud.Debug("gathered context", "run_id", "r1")
	assert.Contains(t, buf.String(), "run_id=r1")
}
