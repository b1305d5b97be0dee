package tokenizer

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/born-ml/expkit/internal/resource"
)

const (
	// encodingO200kBase is the encoding name for GPT-4o.
	encodingO200kBase = "o200k_base"
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"
	// encodingP50kBase is the encoding name for GPT-3.
	encodingP50kBase = "p50k_base"
	// encodingR50kBase is the encoding name for older GPT-3 models.
	encodingR50kBase = "r50k_base"
)

const encodingBaseURL = "https://openaipublic.blob.core.windows.net/encodings/"

// EncodingURL returns the URL tiktoken-go loads the BPE ranks of encoding from.
func EncodingURL(encoding string) (string, error) {
	switch encoding {
	case encodingO200kBase, encodingCL100kBase, encodingP50kBase, encodingR50kBase:
		return encodingBaseURL + encoding + ".tiktoken", nil
	case "p50k_edit":
		return encodingBaseURL + encodingP50kBase + ".tiktoken", nil
	default:
		return "", fmt.Errorf("unknown tiktoken encoding %q", encoding)
	}
}

// tiktoken-go keeps its loader in an unsynchronized global.
var loaderMu sync.Mutex

// UseCache routes tiktoken-go's BPE rank downloads through c, so encodings
// respect the offline switch and the download lock. It affects every
// TikToken created afterwards.
func UseCache(c *resource.Cache) {
	loaderMu.Lock()
	defer loaderMu.Unlock()
	tiktoken.SetBpeLoader(resource.NewBpeLoader(c))
}

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// Supported encodings:
//   - o200k_base: GPT-4o
//   - cl100k_base: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
//   - p50k_base: GPT-3, Codex
//   - r50k_base: GPT-3, davinci-002, babbage-002
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

var _ Tokenizer = (*TikToken)(nil)

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	loaderMu.Lock()
	encoding, err := tiktoken.GetEncoding(encodingName)
	loaderMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (*TikToken, error) {
	loaderMu.Lock()
	encoding, err := tiktoken.EncodingForModel(modelName)
	loaderMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken for model %q: %w", modelName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     modelName,
	}, nil
}

// Encode converts text to token IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: vocab size < 2^31.
	}

	return result, nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		intTokens[i] = int(tok)
	}

	return t.encoding.Decode(intTokens), nil
}

// VocabSize returns the number of mergeable ranks of the encoding.
// tiktoken-go doesn't expose it, so the published sizes are used.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case encodingO200kBase:
		return 199998
	case encodingCL100kBase:
		return 100256
	case encodingP50kBase, encodingR50kBase:
		return 50257
	default:
		return 100000
	}
}

// EosToken returns the <|endoftext|> token ID, or -1 when unknown.
func (t *TikToken) EosToken() int32 {
	switch t.name {
	case encodingO200kBase:
		return 199999
	case encodingCL100kBase:
		return 100257
	case encodingP50kBase, encodingR50kBase:
		return 50256
	default:
		return -1
	}
}

// IsSpecialToken checks if a token ID is a special token.
func (t *TikToken) IsSpecialToken(token int32) bool {
	if token == t.EosToken() {
		return true
	}

	// cl100k_base reserves 100256-100276 for ChatML and FIM markers.
	return t.name == encodingCL100kBase && token >= 100256 && token <= 100276
}

// Name returns the tokenizer name.
func (t *TikToken) Name() string {
	return t.name
}
