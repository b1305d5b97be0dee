package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every cache and lock path at a temp dir and clears the
// environment the CLI reads.
func isolate(t *testing.T, offline bool) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("NLTK_DATA", filepath.Join(dir, "nltk_data"))
	t.Setenv("EXPKIT_DATA_DIR", filepath.Join(dir, "nltk_data"))
	t.Setenv("EXPKIT_LOCK_PATH", filepath.Join(dir, ".lock"))
	t.Setenv("EXPKIT_SEED", "")
	t.Setenv("EXPKIT_LOG_LEVEL", "")
	t.Setenv("EXPKIT_LOG_FORMAT", "json")
	t.Setenv("EXPKIT_METRICS_FILE", "")
	t.Setenv("TRANSFORMERS_OFFLINE", "")
	if offline {
		t.Setenv("HF_HUB_OFFLINE", "1")
	} else {
		t.Setenv("HF_HUB_OFFLINE", "")
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestVersion(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "expkit "+version+"\n", stdout)
}

func TestUsageErrors(t *testing.T) {
	isolate(t, true)

	tests := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: 2},
		{name: "unknown command", args: []string{"train"}, code: 2},
		{name: "unknown flag", args: []string{"-verbose", "version"}, code: 2},
		{name: "validate without files", args: []string{"validate"}, code: 2},
		{name: "seed with zero draws", args: []string{"seed", "-n", "0"}, code: 2},
		{name: "help", args: []string{"-h"}, code: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestValidate(t *testing.T) {
	dir := isolate(t, true)
	good := filepath.Join(dir, "good.jsonl")
	bad := filepath.Join(dir, "bad.jsonl")
	require.NoError(t, os.WriteFile(good, []byte("{\"a\":1}\n[1,2]\n"), 0o600))
	require.NoError(t, os.WriteFile(bad, []byte("{\"a\":1}\n{oops}\n"), 0o600))

	code, stdout, _ := runCLI(t, "validate", good)
	assert.Equal(t, 0, code)
	assert.Equal(t, good+": 2 records\n", stdout)

	code, stdout, stderr := runCLI(t, "validate", good, bad, filepath.Join(dir, "missing.jsonl"))
	assert.Equal(t, 1, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, good+": 2 records", lines[0])
	assert.Contains(t, lines[1], "line 2")
	assert.Contains(t, lines[2], "no such file")
	assert.Contains(t, stderr, "2 of 3 files invalid")
	assert.Contains(t, stderr, `"run_id"`)
}

func TestSeedIsReproducible(t *testing.T) {
	isolate(t, true)

	code, first, _ := runCLI(t, "seed", "-n", "3", "-seed", "42")
	require.Equal(t, 0, code)
	code, second, _ := runCLI(t, "seed", "-n", "3", "-seed", "42")
	require.Equal(t, 0, code)
	code, other, _ := runCLI(t, "seed", "-n", "3", "-seed", "43")
	require.Equal(t, 0, code)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Contains(t, first, `"generator":"array.normal"`)
	assert.Contains(t, first, `"generator":"general.int"`)
	assert.Contains(t, first, `"generator":"tensor.CPU"`)
}

func TestSeedUsesConfiguredSeed(t *testing.T) {
	isolate(t, true)

	t.Setenv("EXPKIT_SEED", "42")
	code, fromEnv, _ := runCLI(t, "seed", "-n", "2")
	require.Equal(t, 0, code)

	t.Setenv("EXPKIT_SEED", "")
	code, fromFlag, _ := runCLI(t, "seed", "-n", "2", "-seed", "42")
	require.Equal(t, 0, code)

	assert.Equal(t, fromFlag, fromEnv)
}

func TestPrepareOffline(t *testing.T) {
	dir := isolate(t, true)

	code, _, stderr := runCLI(t, "prepare")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "offline mode")

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nltk_data", "tokenizers", "punkt"), 0o755))
	metricsPath := filepath.Join(dir, "metrics.prom")
	code, _, stderr = runCLI(t, "-metrics-file", metricsPath, "prepare", "punkt")
	assert.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "tokenizer data ready")

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "expkit_resource_lookups_total")
}

func TestPrepareUnknownEncoding(t *testing.T) {
	isolate(t, true)

	code, _, stderr := runCLI(t, "prepare", "gpt2_base")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown tiktoken encoding")
}

func TestBadConfig(t *testing.T) {
	dir := isolate(t, true)
	// The environment would otherwise override the file.
	t.Setenv("EXPKIT_LOG_FORMAT", "")
	path := filepath.Join(dir, "expkit.toml")
	require.NoError(t, os.WriteFile(path, []byte(`log_format = "xml"`), 0o600))

	code, _, stderr := runCLI(t, "-config", path, "seed")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "log format")
}
