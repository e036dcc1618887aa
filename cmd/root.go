package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"thoreinstein.com/floyd/pkg/bootstrap"
	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/runner"
	"thoreinstein.com/floyd/pkg/ui"
	"thoreinstein.com/floyd/pkg/workflow"
)

var cfgFile string
var verbose bool
var logger *slog.Logger

// Collaborators created per run; tests replace them.
var (
	newRunner = func(logger *slog.Logger) runner.Runner {
		return runner.New(runner.WithLogger(logger))
	}
	newTerminal = func(cmd *cobra.Command) workflow.UI {
		return ui.NewTerminal(
			ui.WithInput(cmd.InOrStdin()),
			ui.WithOutput(cmd.OutOrStdout()),
			ui.WithErrorOutput(cmd.ErrOrStderr()),
		)
	}
)

var errMissingTarget = floyderrors.New("missing target branch")

// reportedError marks a failure the terminal has already shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "floyd <target-branch>",
	Short: "Floyd - AI-written pull requests from your branch",
	Long: `Floyd compares the checked-out branch with a target branch, asks an AI
command line tool (Claude Code, Gemini CLI or GitHub Copilot CLI) to write a
pull request title and description, and lets you create the pull request with
gh, refine the draft with feedback, or cancel.

Example:
  floyd main
  floyd --provider gemini develop`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			_ = cmd.Usage()
			return errMissingTarget
		}
		return runPR(cmd, args[0])
	},
}

// Execute runs the root command and exits with its status.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Pre-parse so the logger honors --verbose before cobra runs.
	_, verbose = bootstrap.PreParseGlobalFlags(os.Args)
	logger = newLogger(os.Stderr, verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx, rootCmd, os.Stderr)
	stop()

	os.Exit(floyderrors.ExitCode(err))
}

// execute runs cmd and prints any error the terminal has not already shown.
func execute(ctx context.Context, cmd *cobra.Command, stderr io.Writer) error {
	err := cmd.ExecuteContext(ctx)
	if err == nil || floyderrors.IsCancelled(err) {
		return err
	}

	var reported reportedError
	if !floyderrors.As(err, &reported) && !floyderrors.Is(err, errMissingTarget) {
		fmt.Fprintln(stderr, floyderrors.FormatUserError(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "C", "", "config file (default is $XDG_CONFIG_HOME/floyd/floyd.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.PersistentFlags().String("provider", "", "AI provider: claude, gemini or copilot")
	rootCmd.PersistentFlags().String("model", "", "model passed to the AI tool")
	rootCmd.PersistentFlags().Int("diff-limit", config.UnlimitedDiff, "maximum diff characters sent to the AI tool (-1 for no limit)")
}

// newLogger returns a text logger on w. Verbose enables debug output;
// otherwise only warnings and errors are logged.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig layers the config file, repository overrides, FLOYD_*
// environment variables and flags for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return bootstrap.InitConfig(bootstrap.Options{
		ConfigFile: cfgFile,
		Verbose:    verbose,
		Flags:      cmd.Flags(),
		Stderr:     cmd.ErrOrStderr(),
	})
}

func currentLogger() *slog.Logger {
	if logger == nil {
		logger = newLogger(os.Stderr, verbose)
	}
	return logger
}

// runPR runs the pull request workflow against target.
func runPR(cmd *cobra.Command, target string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := currentLogger()
	c, err := NewContainer(cfg, newRunner(log), newTerminal(cmd), log)
	if err != nil {
		return err
	}

	if _, err := c.Engine().Run(cmd.Context(), target); err != nil {
		return reportedError{err}
	}
	return nil
}
