package github

import (
	"context"
	"log/slog"

	"thoreinstein.com/floyd/pkg/config"
	"thoreinstein.com/floyd/pkg/runner"
)

// Client defines the forge operations the PR workflow needs.
type Client interface {
	// IsAuthenticated checks if the client is authenticated with GitHub.
	IsAuthenticated(ctx context.Context) bool

	// PRExists reports whether an open pull request exists for exactly
	// this head/base pair.
	PRExists(ctx context.Context, head, base string) (bool, error)

	// ListPRs lists pull requests, newest first.
	ListPRs(ctx context.Context, opts ListPRsOptions) ([]PRInfo, error)

	// CreatePR creates a new pull request and returns what the forge reported.
	CreatePR(ctx context.Context, opts CreatePROptions) (*PRInfo, error)
}

// Compile-time check that CLIClient satisfies the Client interface.
var _ Client = (*CLIClient)(nil)

// NewClient creates a forge client from the [github] config section.
func NewClient(cfg *config.GitHubConfig, run runner.Runner, logger *slog.Logger) Client {
	opts := []CLIClientOption{WithLogger(logger)}
	if cfg != nil && cfg.Command != "" {
		opts = append(opts, WithCommand(cfg.Command))
	}
	return NewCLIClient(run, opts...)
}
