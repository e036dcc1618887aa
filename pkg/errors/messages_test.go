package errors

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantContains []string
		wantAbsent   []string
	}{
		{
			name:         "nil",
			err:          nil,
			wantContains: nil,
		},
		{
			name:         "cancelled",
			err:          errors.Wrap(context.Canceled, "interrupt"),
			wantContains: []string{"Operation cancelled."},
		},
		{
			name:         "config error with field",
			err:          NewConfigError("ai.provider", `unsupported AI provider "gpt"`),
			wantContains: []string{"Configuration error in 'ai.provider'", "floyd config init"},
		},
		{
			name:         "branch not found",
			err:          NewBranchNotFound("develop"),
			wantContains: []string{"'develop' does not exist", "git fetch"},
		},
		{
			name:         "pr already exists",
			err:          NewPRAlreadyExists("feature/x", "main"),
			wantContains: []string{"'feature/x' -> 'main'"},
		},
		{
			name:         "no changes",
			err:          NewNoChanges(),
			wantContains: []string{"No changes found"},
			wantAbsent:   []string{"Underlying error"},
		},
		{
			name:         "generation tool not found",
			err:          NewGenerationErrorWithCause("gemini", "CLI invocation failed", NewToolNotFound("gemini", nil)),
			wantContains: []string{"gemini CLI is not installed", "--provider"},
		},
		{
			name:         "generation parse failure",
			err:          NewGenerationErrorWithCause("claude", "invalid response", NewParseError("missing BODY: marker")),
			wantContains: []string{"TITLE:/BODY: format", "missing BODY: marker"},
		},
		{
			name:         "generation process failure",
			err:          NewGenerationErrorWithCause("claude", "CLI invocation failed", NewExecutionFailed("claude", "rate limited", 1, nil)),
			wantContains: []string{"authenticated", "rate limited"},
		},
		{
			name:         "creation",
			err:          NewCreationErrorWithCause("gh pr create failed", errors.New("no commits")),
			wantContains: []string{"Failed to create PR", "gh auth status", "no commits"},
		},
		{
			name:         "forge",
			err:          NewForgeError("ListPRs", "not a github repo"),
			wantContains: []string{"GitHub CLI error during ListPRs"},
		},
		{
			name:         "bare exec not found",
			err:          NewToolNotFound("git", nil),
			wantContains: []string{"The tool 'git' was not found"},
		},
		{
			name:         "unclassified",
			err:          errors.New("something odd"),
			wantContains: []string{"something odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUserError(tt.err)
			if tt.err == nil && got != "" {
				t.Errorf("FormatUserError(nil) = %q, want empty", got)
			}
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("FormatUserError() = %q, want it to contain %q", got, want)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(got, absent) {
					t.Errorf("FormatUserError() = %q, want it to not contain %q", got, absent)
				}
			}
		})
	}
}
