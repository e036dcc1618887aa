package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thoreinstein.com/floyd/pkg/config"
	floyderrors "thoreinstein.com/floyd/pkg/errors"
	"thoreinstein.com/floyd/pkg/runner/runnertest"
)

const goodReply = "TITLE: fix: bug\nBODY: Fixes the bug."

func replying(reply string) *runnertest.Fake {
	fake := runnertest.New()
	fake.Handler = func(runnertest.Call) (string, error) { return reply, nil }
	return fake
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
	}{
		{"claude", ProviderClaude, false},
		{"Gemini", ProviderGemini, false},
		{" copilot ", ProviderCopilot, false},
		{"openai", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			p, err := NewProvider(&config.AIConfig{Provider: tt.provider}, runnertest.New(), nil)
			if tt.wantErr {
				require.Error(t, err)
				var cfgErr *floyderrors.ConfigError
				require.ErrorAs(t, err, &cfgErr)
				assert.Equal(t, "ai.provider", cfgErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Name())
		})
	}

	_, err := NewProvider(nil, runnertest.New(), nil)
	assert.True(t, floyderrors.IsConfigError(err))
}

func TestCLIProvider_InvocationShapes(t *testing.T) {
	tests := []struct {
		name      string
		cfg       config.AIConfig
		wantName  string
		wantArgs  func(prompt string) []string
		wantStdin bool
	}{
		{
			name:     "claude",
			cfg:      config.AIConfig{Provider: "claude", DiffLimit: -1},
			wantName: "claude",
			wantArgs: func(p string) []string { return []string{"-p", p} },
		},
		{
			name:     "claude with model",
			cfg:      config.AIConfig{Provider: "claude", Model: "opus", DiffLimit: -1},
			wantName: "claude",
			wantArgs: func(p string) []string { return []string{"-p", p, "--model", "opus"} },
		},
		{
			name:     "gemini with model",
			cfg:      config.AIConfig{Provider: "gemini", Model: "gemini-2.5-pro", DiffLimit: -1},
			wantName: "gemini",
			wantArgs: func(p string) []string { return []string{"-m", "gemini-2.5-pro", "-p", p} },
		},
		{
			name:      "copilot reads stdin",
			cfg:       config.AIConfig{Provider: "copilot", DiffLimit: -1},
			wantName:  "copilot",
			wantArgs:  func(string) []string { return []string{"-p", "-"} },
			wantStdin: true,
		},
		{
			name:     "command override",
			cfg:      config.AIConfig{Provider: "claude", Command: "/usr/local/bin/claude", DiffLimit: -1},
			wantName: "/usr/local/bin/claude",
			wantArgs: func(p string) []string { return []string{"-p", p} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := replying(goodReply)
			p, err := NewProvider(&tt.cfg, fake, nil)
			require.NoError(t, err)

			bc := testContext("diff --git a/x b/x")
			draft, err := p.GenerateDraft(context.Background(), bc, tt.cfg, "")
			require.NoError(t, err)
			assert.Equal(t, "fix: bug", draft.Title)

			prompt := BuildPrompt(bc, tt.cfg, "")
			calls := fake.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantName, calls[0].Name)
			assert.Equal(t, tt.wantArgs(prompt), calls[0].Args)
			if tt.wantStdin {
				assert.Equal(t, prompt, calls[0].Stdin)
			} else {
				assert.Empty(t, calls[0].Stdin)
			}
		})
	}
}

func TestCLIProvider_FeedbackReachesPrompt(t *testing.T) {
	fake := replying(goodReply)
	cfg := config.AIConfig{Provider: "copilot", DiffLimit: -1}
	p, err := NewProvider(&cfg, fake, nil)
	require.NoError(t, err)

	_, err = p.GenerateDraft(context.Background(), testContext("d"), cfg, "shorten title")
	require.NoError(t, err)
	assert.Contains(t, fake.Calls()[0].Stdin, "shorten title")
}

func TestCLIProvider_Failures(t *testing.T) {
	cfg := config.AIConfig{Provider: "claude", DiffLimit: -1}

	t.Run("tool fails", func(t *testing.T) {
		fake := runnertest.New()
		fake.Handler = func(runnertest.Call) (string, error) {
			return "", floyderrors.NewExecutionFailed("claude", "not logged in", 1, nil)
		}
		p, _ := NewProvider(&cfg, fake, nil)

		_, err := p.GenerateDraft(context.Background(), testContext("d"), cfg, "")
		require.Error(t, err)
		assert.True(t, floyderrors.IsGenerationError(err))
		assert.Contains(t, err.Error(), "not logged in")
	})

	t.Run("tool missing", func(t *testing.T) {
		fake := runnertest.New()
		fake.Handler = func(runnertest.Call) (string, error) {
			return "", floyderrors.NewToolNotFound("claude", nil)
		}
		p, _ := NewProvider(&cfg, fake, nil)

		_, err := p.GenerateDraft(context.Background(), testContext("d"), cfg, "")
		require.Error(t, err)
		assert.True(t, floyderrors.IsGenerationError(err))
		assert.True(t, floyderrors.IsToolNotFound(err))
	})

	t.Run("unparseable reply", func(t *testing.T) {
		p, _ := NewProvider(&cfg, replying("I cannot help with that."), nil)

		_, err := p.GenerateDraft(context.Background(), testContext("d"), cfg, "")
		require.Error(t, err)
		assert.True(t, floyderrors.IsGenerationError(err))
		assert.True(t, floyderrors.IsParseError(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		p, _ := NewProvider(&cfg, replying(goodReply), nil)

		_, err := p.GenerateDraft(ctx, testContext("d"), cfg, "")
		require.Error(t, err)
		assert.True(t, floyderrors.IsCancelled(err))
		assert.False(t, floyderrors.IsGenerationError(err))
	})
}

func TestCLIProvider_Timeout(t *testing.T) {
	cfg := config.AIConfig{Provider: "claude", DiffLimit: -1, Timeout: 50 * time.Millisecond}

	var called bool
	fake := runnertest.New()
	fake.Handler = func(runnertest.Call) (string, error) {
		called = true
		return "", floyderrors.NewExecutionFailed("claude", "timed out", -1, context.DeadlineExceeded)
	}
	p, _ := NewProvider(&cfg, fake, nil)

	_, err := p.GenerateDraft(context.Background(), testContext("d"), cfg, "")
	require.Error(t, err)
	assert.True(t, called)
	assert.True(t, floyderrors.IsGenerationError(err))
	assert.False(t, floyderrors.IsCancelled(err))
}
