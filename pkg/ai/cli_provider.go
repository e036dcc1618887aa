package ai

import (
	"context"
	"log/slog"

	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/git"
	"thoreinstein.com/floyd/pkg/runner"
)

// invocation describes how one AI tool is called: its default executable
// and how the prompt and model reach it.
type invocation struct {
	name string
	// args returns the arguments and the text to feed on stdin.
	args func(prompt, model string) ([]string, string)
}

// claude -p <prompt> [--model m]
var claudeInvocation = invocation{
	name: ProviderClaude,
	args: func(prompt, model string) ([]string, string) {
		args := []string{"-p", prompt}
		if model != "" {
			args = append(args, "--model", model)
		}
		return args, ""
	},
}

// gemini [-m m] -p <prompt>
var geminiInvocation = invocation{
	name: ProviderGemini,
	args: func(prompt, model string) ([]string, string) {
		var args []string
		if model != "" {
			args = append(args, "-m", model)
		}
		return append(args, "-p", prompt), ""
	},
}

// copilot -p - [--model m], prompt on stdin
var copilotInvocation = invocation{
	name: ProviderCopilot,
	args: func(prompt, model string) ([]string, string) {
		args := []string{"-p", "-"}
		if model != "" {
			args = append(args, "--model", model)
		}
		return args, prompt
	},
}

// CLIProvider implements Provider by running an AI command line tool.
type CLIProvider struct {
	shape   invocation
	command string
	runner  runner.Runner
	logger  *slog.Logger
}

var _ Provider = (*CLIProvider)(nil)

func newCLIProvider(shape invocation, command string, run runner.Runner, logger *slog.Logger) *CLIProvider {
	if command == "" {
		command = shape.name
	}
	return &CLIProvider{
		shape:   shape,
		command: command,
		runner:  run,
		logger:  logger,
	}
}

// Name returns the provider name.
func (p *CLIProvider) Name() string {
	return p.shape.name
}

// GenerateDraft implements Provider.
func (p *CLIProvider) GenerateDraft(ctx context.Context, bc git.BranchContext, cfg config.AIConfig, feedback string) (*Draft, error) {
	prompt := BuildPrompt(bc, cfg, feedback)
	args, stdin := p.shape.args(prompt, cfg.Model)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	p.logDebug("generating draft",
		"provider", p.shape.name,
		"command", p.command,
		"args", len(args),
		"prompt_chars", len(prompt),
		"refinement", feedback != "")

	raw, err := p.runner.Run(ctx, p.command, args, stdin)
	if err != nil {
		if floyderrors.IsCancelled(err) {
			return nil, err
		}
		return nil, floyderrors.NewGenerationErrorWithCause(p.shape.name, "AI tool failed", err)
	}

	draft, err := ParseResponse(raw)
	if err != nil {
		p.logDebug("unparseable AI response", "provider", p.shape.name, "response_chars", len(raw))
		return nil, floyderrors.NewGenerationErrorWithCause(p.shape.name, "could not parse AI response", err)
	}

	return draft, nil
}

func (p *CLIProvider) logDebug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
