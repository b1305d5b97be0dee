package tokenizer

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/expkit/internal/resource"
)

// byteRanks builds a rank file holding every single byte plus the merge "ab".
func byteRanks() []byte {
	var sb strings.Builder
	for b := 0; b < 256; b++ {
		fmt.Fprintf(&sb, "%s %d\n", base64.StdEncoding.EncodeToString([]byte{byte(b)}), b)
	}
	fmt.Fprintf(&sb, "%s %d\n", base64.StdEncoding.EncodeToString([]byte("ab")), 256)
	return []byte(sb.String())
}

// offlineCache installs an offline cache holding the cl100k_base ranks only.
func offlineCache(t *testing.T) *resource.Cache {
	t.Helper()
	dir := t.TempDir()
	url, err := EncodingURL(encodingCL100kBase)
	require.NoError(t, err)

	path := filepath.Join(dir, filepath.FromSlash(resource.TiktokenResource(url).Name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, byteRanks(), 0o600))

	c := resource.New(resource.Config{
		SearchPaths: []string{dir},
		LockPath:    filepath.Join(dir, ".lock"),
		Offline:     true,
	})
	UseCache(c)
	return c
}

func TestEncodingURL(t *testing.T) {
	tests := []struct {
		encoding string
		want     string
		wantErr  bool
	}{
		{encoding: "cl100k_base", want: encodingBaseURL + "cl100k_base.tiktoken"},
		{encoding: "o200k_base", want: encodingBaseURL + "o200k_base.tiktoken"},
		{encoding: "p50k_edit", want: encodingBaseURL + "p50k_base.tiktoken"},
		{encoding: "gpt2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.encoding, func(t *testing.T) {
			got, err := EncodingURL(tt.encoding)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTikToken_NewTikToken(t *testing.T) {
	offlineCache(t)

	tests := []struct {
		name              string
		encoding          string
		wantErr           bool
		expectedVocabSize int
	}{
		{
			name:              "cl100k_base from cache",
			encoding:          "cl100k_base",
			expectedVocabSize: 100256,
		},
		{
			name:     "invalid encoding",
			encoding: "invalid_encoding_xyz",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewTikToken(tt.encoding)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tok)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tok)
			assert.Equal(t, tt.expectedVocabSize, tok.VocabSize())
			assert.Equal(t, tt.encoding, tok.Name())
		})
	}
}

func TestTikToken_OfflineMissingEncoding(t *testing.T) {
	offlineCache(t)

	tok, err := NewTikToken("r50k_base")
	require.Error(t, err)
	assert.Nil(t, tok)
	assert.ErrorIs(t, err, resource.ErrOffline)
}

func TestTikToken_Roundtrip(t *testing.T) {
	offlineCache(t)
	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)

	tests := []struct {
		name string
		text string
	}{
		{name: "simple text", text: "Hello, world!"},
		{name: "with newlines", text: "Hello\nWorld\n"},
		{name: "unicode", text: "Hello 世界! 🌍"},
		{name: "empty string", text: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := tok.Encode(tt.text)
			require.NoError(t, err)

			decoded, err := tok.Decode(tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.text, decoded)
		})
	}
}

func TestTikToken_Merges(t *testing.T) {
	offlineCache(t)
	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)

	tokens, err := tok.Encode("ab")
	require.NoError(t, err)
	assert.Equal(t, []int32{256}, tokens)

	tokens, err = tok.Encode("ba")
	require.NoError(t, err)
	assert.Equal(t, []int32{'b', 'a'}, tokens)
}

func TestTikToken_SpecialTokens(t *testing.T) {
	offlineCache(t)
	tok, err := NewTikToken("cl100k_base")
	require.NoError(t, err)

	eos := tok.EosToken()
	assert.Equal(t, int32(100257), eos)
	assert.True(t, tok.IsSpecialToken(eos))
	assert.True(t, tok.IsSpecialToken(100256))
	assert.True(t, tok.IsSpecialToken(100276))
	assert.False(t, tok.IsSpecialToken(0))
	assert.False(t, tok.IsSpecialToken(1000))
}

func TestTikToken_NewTikTokenForModel(t *testing.T) {
	offlineCache(t)

	tests := []struct {
		name      string
		modelName string
		wantErr   bool
	}{
		{name: "gpt-4", modelName: "gpt-4"},
		{name: "gpt-3.5-turbo", modelName: "gpt-3.5-turbo"},
		{name: "invalid model", modelName: "invalid-model-xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := NewTikTokenForModel(tt.modelName)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, tok)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, tok)
			assert.Equal(t, tt.modelName, tok.Name())
		})
	}
}
