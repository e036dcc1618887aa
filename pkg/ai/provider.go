// Package ai turns a branch's git context into a pull request draft.
//
// It builds the generation prompt, drives one of the supported AI command
// line tools (Claude Code, Gemini CLI or GitHub Copilot CLI) through a
// runner.Runner, and parses the reply into a Draft.
package ai

import (
	"context"
	"log/slog"

	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/git"
	"thoreinstein.com/floyd/pkg/runner"
)

// Provider generates pull request drafts.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// GenerateDraft builds a prompt from bc, cfg and the latest feedback,
	// invokes the model and parses its reply. Every failure other than
	// cancellation is a GenerationError.
	GenerateDraft(ctx context.Context, bc git.BranchContext, cfg config.AIConfig, feedback string) (*Draft, error)
}

// Provider name constants.
const (
	ProviderClaude  = "claude"
	ProviderGemini  = "gemini"
	ProviderCopilot = "copilot"
)

// NewProvider creates an AI provider based on config.
func NewProvider(cfg *config.AIConfig, run runner.Runner, logger *slog.Logger) (Provider, error) {
	if cfg == nil {
		return nil, floyderrors.NewConfigError("ai", "config is nil")
	}

	var shape invocation
	switch config.NormalizeProvider(cfg.Provider) {
	case ProviderClaude:
		shape = claudeInvocation
	case ProviderGemini:
		shape = geminiInvocation
	case ProviderCopilot:
		shape = copilotInvocation
	default:
		return nil, config.ValidateProvider(cfg.Provider)
	}

	return newCLIProvider(shape, cfg.Command, run, logger), nil
}
