package runner

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	floyderrors "thoreinstein.com/floyd/pkg/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCLIRunner_Run(t *testing.T) {
	requireShell(t)

	tests := []struct {
		name         string
		args         []string
		stdin        string
		want         string
		wantErr      bool
		wantDetail   string
		wantExitCode int
	}{
		{
			name: "captures stdout",
			args: []string{"-c", "printf 'hello'"},
			want: "hello",
		},
		{
			name:  "feeds stdin",
			args:  []string{"-c", "cat"},
			stdin: "prompt text",
			want:  "prompt text",
		},
		{
			name:         "non-zero exit uses trimmed stderr",
			args:         []string{"-c", "echo '  bad revision  ' >&2; exit 3"},
			wantErr:      true,
			wantDetail:   "bad revision",
			wantExitCode: 3,
		},
		{
			name:         "non-zero exit with empty stderr gets generic detail",
			args:         []string{"-c", "exit 1"},
			wantErr:      true,
			wantDetail:   "command failed: exit status 1",
			wantExitCode: 1,
		},
	}

	r := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Run(context.Background(), "sh", tt.args, tt.stdin)
			if !tt.wantErr {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}

			require.Error(t, err)
			var execErr *floyderrors.ExecError
			require.ErrorAs(t, err, &execErr)
			assert.False(t, execErr.NotFound)
			assert.Equal(t, "sh", execErr.Tool)
			assert.Equal(t, tt.wantDetail, execErr.Detail)
			assert.Equal(t, tt.wantExitCode, execErr.ExitCode)
		})
	}
}

func TestCLIRunner_ToolNotFound(t *testing.T) {
	r := New()
	_, err := r.Run(context.Background(), "floyd-definitely-missing-tool", nil, "")
	require.Error(t, err)
	assert.True(t, floyderrors.IsToolNotFound(err))
}

func TestCLIRunner_WithDirAndEnv(t *testing.T) {
	requireShell(t)

	dir := t.TempDir()
	r := New(WithDir(dir), WithEnv("FLOYD_TEST_VALUE=42"))

	got, err := r.Run(context.Background(), "sh", []string{"-c", "printf '%s' \"$FLOYD_TEST_VALUE\""}, "")
	require.NoError(t, err)
	assert.Equal(t, "42", got)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	got, err = r.Run(context.Background(), "sh", []string{"-c", "pwd -P"}, "")
	require.NoError(t, err)
	assert.Equal(t, want, strings.TrimSpace(got))
}

func TestCLIRunner_Cancelled(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Run(ctx, "sh", []string{"-c", "exec sleep 5"}, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestCLIRunner_Timeout(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := New().Run(ctx, "sh", []string{"-c", "exec sleep 5"}, "")
	require.Error(t, err)

	var execErr *floyderrors.ExecError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "timed out", execErr.Detail)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
