package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PrintsEveryDispatch(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), []string{"-interval", "0", "-log-level", "error", "3", "4"}, &stdout, &stderr)
	require.NoError(t, err)

	lines := strings.Fields(stdout.String())
	sort.Strings(lines)
	assert.Equal(t, []string{"0", "0", "0", "1", "1", "1", "2", "2", "2", "3", "3", "3"}, lines)
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  size: 2\n  jobs: 2\n  repeat: 1\n  interval: 0s\n"), 0o600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", path, "-log-level", "error"}, &stdout, &stderr)
	require.NoError(t, err)

	lines := strings.Fields(stdout.String())
	sort.Strings(lines)
	assert.Equal(t, []string{"0", "1"}, lines)
}

func TestRun_InvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "missing arguments", args: nil, contains: "missing <pool-size>"},
		{name: "single argument", args: []string{"3"}, contains: "got 1 argument(s)"},
		{name: "extra argument", args: []string{"3", "4", "5"}, contains: "got 3 argument(s)"},
		{name: "non-numeric pool size", args: []string{"x", "1"}, contains: "invalid <pool-size>"},
		{name: "non-numeric jobs", args: []string{"1", "y"}, contains: "invalid <max-number-of-jobs>"},
		{name: "zero pool size", args: []string{"0", "1"}, contains: "pool size"},
		{name: "zero jobs", args: []string{"2", "0"}, contains: "max number of jobs"},
		{name: "bad log level", args: []string{"-log-level", "loud", "1", "1"}, contains: "unknown log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRun_CancelledContextStopsDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"-interval", "1h", "-log-level", "error", "1", "5"}, &stdout, &stderr)
	assert.ErrorIs(t, err, context.Canceled)

	// the job dispatched before cancellation still ran
	assert.Equal(t, "0\n", stdout.String())
}

func TestRun_ConfigFileWithSingleArgument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pool.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pool:\n  size: 2\n  jobs: 2\n"), 0o600))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", path, "5"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "got 1 argument(s)")
	assert.Empty(t, stdout.String())
}

func TestRunMain_ExitCode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, runMain([]string{"-interval", "0", "-log-level", "error", "1", "1"}, &stdout, &stderr))
	assert.Equal(t, "0\n0\n0\n", stdout.String())

	stdout.Reset()
	stderr.Reset()
	assert.Equal(t, 1, runMain([]string{"0", "1"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "pool size")
	assert.Empty(t, stdout.String())
}
