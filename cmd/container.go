package cmd

import (
	"log/slog"

	"thoreinstein.com/floyd/pkg/ai"
	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/git"
	"thoreinstein.com/floyd/pkg/github"
	"thoreinstein.com/floyd/pkg/runner"
	"thoreinstein.com/floyd/pkg/workflow"
)

// Container holds the collaborators for one workflow run.
type Container struct {
	Config   *config.Config
	Runner   runner.Runner
	Repo     git.Repository
	Forge    github.Client
	Provider ai.Provider
	UI       workflow.UI
	Logger   *slog.Logger
}

// NewContainer wires the git, gh and AI adapters onto a shared runner.
func NewContainer(cfg *config.Config, run runner.Runner, ui workflow.UI, logger *slog.Logger) (*Container, error) {
	if cfg == nil {
		return nil, floyderrors.NewConfigError("config", "config is nil")
	}

	provider, err := ai.NewProvider(&cfg.AI, run, logger)
	if err != nil {
		return nil, err
	}

	repo := git.NewCLIRepository(run,
		git.WithRemote(cfg.Git.Remote),
		git.WithRemoteOnly(cfg.Git.RemoteOnly),
		git.WithExcludePatterns(cfg.Git.ExcludePatterns),
		git.WithLogger(logger),
	)

	return &Container{
		Config:   cfg,
		Runner:   run,
		Repo:     repo,
		Forge:    github.NewClient(&cfg.GitHub, run, logger),
		Provider: provider,
		UI:       ui,
		Logger:   logger,
	}, nil
}

// Engine returns a workflow engine over the container's collaborators.
func (c *Container) Engine() *workflow.Engine {
	return workflow.NewEngine(c.Repo, c.Forge, c.Provider, c.Config, c.UI, c.Logger)
}
