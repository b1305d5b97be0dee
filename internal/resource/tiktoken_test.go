package resource

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// "a" -> 0, "b" -> 1, "ab" -> 2
const sampleRanks = "YQ== 0\nYg== 1\n\nYWI= 2\n"

func TestParseBpeRanks(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]int
		wantErr string
	}{
		{
			name:  "valid",
			input: sampleRanks,
			want:  map[string]int{"a": 0, "b": 1, "ab": 2},
		},
		{
			name:  "empty",
			input: "",
			want:  map[string]int{},
		},
		{
			name:    "missing rank",
			input:   "YQ== 0\nYg==\n",
			wantErr: "line 2",
		},
		{
			name:    "bad base64",
			input:   "!!! 0\n",
			wantErr: "line 1",
		},
		{
			name:    "bad rank",
			input:   "YQ== zero\n",
			wantErr: "line 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBpeRanks([]byte(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTiktokenResource(t *testing.T) {
	a := TiktokenResource("https://example.com/a.tiktoken")
	b := TiktokenResource("https://example.com/b.tiktoken")

	assert.True(t, strings.HasPrefix(a.Name, "tiktoken/"))
	assert.Len(t, strings.TrimPrefix(a.Name, "tiktoken/"), 40)
	assert.NotEqual(t, a.Name, b.Name)
	assert.Equal(t, Blob, a.Kind)
	assert.Equal(t, a, TiktokenResource("https://example.com/a.tiktoken"))
}

func TestBpeLoaderDownloadsOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	srv, hits := fileServer(t, http.StatusOK, []byte(sampleRanks), 0)
	loader := NewBpeLoader(newTestCache(t, dir, false))
	url := srv.URL + "/sample.tiktoken"

	first, err := loader.LoadTiktokenBpe(url)
	require.NoError(t, err)
	second, err := loader.LoadTiktokenBpe(url)
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"a": 0, "b": 1, "ab": 2}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
}

func TestBpeLoaderOfflineUsesCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	url := "https://example.invalid/sample.tiktoken"
	res := TiktokenResource(url)
	cached := filepath.Join(dir, filepath.FromSlash(res.Name))
	require.NoError(t, os.MkdirAll(filepath.Dir(cached), 0o755))
	require.NoError(t, os.WriteFile(cached, []byte(sampleRanks), 0o600))

	loader := NewBpeLoader(newTestCache(t, dir, true))
	ranks, err := loader.LoadTiktokenBpe(url)
	require.NoError(t, err)
	assert.Len(t, ranks, 3)

	_, err = loader.LoadTiktokenBpe("https://example.invalid/other.tiktoken")
	assert.ErrorIs(t, err, ErrOffline)
}

func TestBpeLoaderLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.tiktoken")
	require.NoError(t, os.WriteFile(path, []byte(sampleRanks), 0o600))

	loader := NewBpeLoader(New(Config{SearchPaths: []string{t.TempDir()}, Offline: true}))
	ranks, err := loader.LoadTiktokenBpe(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ranks["ab"])

	_, err = loader.LoadTiktokenBpe(filepath.Join(t.TempDir(), "missing.tiktoken"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
