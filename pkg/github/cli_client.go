package github

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/runner"
)

const defaultCommand = "gh"

// CLIClient implements the Client interface using the gh CLI.
// This is the only implementation: gh handles authentication, enterprise
// hosts and remote detection on its own.
type CLIClient struct {
	runner  runner.Runner
	command string
	logger  *slog.Logger
}

// CLIClientOption is a functional option for configuring CLIClient.
type CLIClientOption func(*CLIClient)

// WithCommand overrides the gh executable name or path.
func WithCommand(command string) CLIClientOption {
	return func(c *CLIClient) {
		c.command = command
	}
}

// WithLogger sets a custom logger for the client.
func WithLogger(logger *slog.Logger) CLIClientOption {
	return func(c *CLIClient) {
		c.logger = logger
	}
}

// NewCLIClient creates a new gh CLI-based GitHub client.
func NewCLIClient(run runner.Runner, opts ...CLIClientOption) *CLIClient {
	c := &CLIClient{
		runner:  run,
		command: defaultCommand,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// IsAuthenticated checks if gh CLI is authenticated with GitHub.
func (c *CLIClient) IsAuthenticated(ctx context.Context) bool {
	_, err := c.runGH(ctx, "auth", "status")
	return err == nil
}

// PRExists lists open pull requests for head and base and checks for at
// least one exact match.
func (c *CLIClient) PRExists(ctx context.Context, head, base string) (bool, error) {
	prs, err := c.ListPRs(ctx, ListPRsOptions{
		HeadBranch: head,
		BaseBranch: base,
		State:      "open",
		Limit:      1,
	})
	if err != nil {
		return false, err
	}

	for _, pr := range prs {
		if pr.HeadBranch == head && pr.BaseBranch == base {
			c.logDebug("found existing PR", "number", pr.Number, "url", pr.URL)
			return true, nil
		}
	}
	return false, nil
}

// ListPRs lists pull requests using gh pr list. gh returns the newest first.
func (c *CLIClient) ListPRs(ctx context.Context, opts ListPRsOptions) ([]PRInfo, error) {
	args := []string{
		"pr", "list",
		"--json", strings.Join(prJSONFields(), ","),
	}

	state := opts.State
	if state == "" {
		state = "open"
	}
	args = append(args, "--state", state)

	if opts.HeadBranch != "" {
		args = append(args, "--head", opts.HeadBranch)
	}
	if opts.BaseBranch != "" {
		args = append(args, "--base", opts.BaseBranch)
	}
	if opts.Limit > 0 {
		args = append(args, "--limit", strconv.Itoa(opts.Limit))
	}

	c.logDebug("listing PRs", "head", opts.HeadBranch, "base", opts.BaseBranch, "state", state)

	output, err := c.runGH(ctx, args...)
	if err != nil {
		return nil, floyderrors.NewForgeErrorWithCause("ListPRs", "failed to list PRs", err)
	}

	if strings.TrimSpace(output) == "" {
		return nil, nil
	}

	var responses []ghPRResponse
	if err := json.Unmarshal([]byte(output), &responses); err != nil {
		return nil, floyderrors.NewForgeErrorWithCause("ListPRs", "failed to parse PR list response", err)
	}

	prs := make([]PRInfo, 0, len(responses))
	for _, resp := range responses {
		prs = append(prs, resp.toPRInfo())
	}

	return prs, nil
}

// CreatePR creates a new pull request using gh pr create.
func (c *CLIClient) CreatePR(ctx context.Context, opts CreatePROptions) (*PRInfo, error) {
	if strings.TrimSpace(opts.Title) == "" {
		return nil, floyderrors.NewCreationError("title is required")
	}
	if opts.BaseBranch == "" {
		return nil, floyderrors.NewCreationError("base branch is required")
	}

	// Always pass --body (even if empty) because gh requires both --title and --body
	// when running non-interactively
	args := []string{"pr", "create", "--title", opts.Title, "--body", opts.Body, "--base", opts.BaseBranch}
	if opts.HeadBranch != "" {
		args = append(args, "--head", opts.HeadBranch)
	}
	if opts.Draft {
		args = append(args, "--draft")
	}
	for _, reviewer := range opts.Reviewers {
		args = append(args, "--reviewer", reviewer)
	}

	c.logDebug("creating PR", "base", opts.BaseBranch, "draft", opts.Draft, "reviewers", len(opts.Reviewers))

	output, err := c.runGH(ctx, args...)
	if err != nil {
		if floyderrors.IsCancelled(err) {
			return nil, err
		}
		return nil, floyderrors.NewCreationErrorWithCause("gh pr create failed", err)
	}

	// gh pr create prints the PR URL as the last line of stdout on success.
	prURL := lastLine(output)
	if prURL == "" {
		return nil, floyderrors.NewCreationError("gh pr create returned no URL")
	}
	c.logDebug("PR created", "url", prURL)

	info := &PRInfo{
		Title:      opts.Title,
		URL:        prURL,
		State:      "OPEN",
		Draft:      opts.Draft,
		HeadBranch: opts.HeadBranch,
		BaseBranch: opts.BaseBranch,
	}
	if number, parseErr := extractPRNumber(prURL); parseErr == nil {
		info.Number = number
	} else {
		c.logDebug("could not parse PR number from URL", "url", prURL, "error", parseErr)
	}

	return info, nil
}

// runGH executes a gh command and returns its output.
func (c *CLIClient) runGH(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, c.command, args, "")
}

// logDebug logs a debug message if a logger is configured.
func (c *CLIClient) logDebug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// lastLine returns the last non-empty line of s, trimmed.
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}

// extractPRNumber extracts the PR number from a GitHub PR URL.
func extractPRNumber(url string) (int, error) {
	// URL format: https://github.com/owner/repo/pull/123
	parts := strings.Split(strings.TrimRight(url, "/"), "/")
	if len(parts) < 2 {
		return 0, floyderrors.NewForgeError("extractPRNumber", "invalid PR URL format")
	}
	numberStr := parts[len(parts)-1]
	number, err := strconv.Atoi(numberStr)
	if err != nil {
		return 0, floyderrors.NewForgeErrorWithCause("extractPRNumber", "failed to parse PR number", err)
	}
	return number, nil
}
