// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tokenizer provides tokenizers and the tokenizer data they need.
//
// Tokenizer data is kept in an NLTK-compatible cache (NLTK_DATA, ~/nltk_data
// and the system-wide nltk_data directories). Missing data is downloaded once
// under a file lock, unless HF_HUB_OFFLINE or TRANSFORMERS_OFFLINE is set.
//
// Example usage:
//
//	import "github.com/born-ml/expkit/tokenizer"
//
//	// Make sure the punkt sentence tokenizer models are present.
//	if err := tokenizer.EnsurePunkt(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Load tiktoken; rank files go through the same cache.
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := tok.Encode("Hello, world!")
package tokenizer

import (
	"context"
	"sync"

	"github.com/born-ml/expkit/internal/resource"
	"github.com/born-ml/expkit/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// CacheConfig controls where tokenizer data is looked up and downloaded.
type CacheConfig = resource.Config

// OfflineError is returned when tokenizer data is missing in offline mode.
type OfflineError = resource.OfflineError

// ErrOffline is wrapped by OfflineError.
var ErrOffline = resource.ErrOffline

var (
	defaultOnce  sync.Once
	defaultCache *resource.Cache
)

// cache returns the process-wide cache built from the environment and
// installs it as the tiktoken loader.
func cache() *resource.Cache {
	defaultOnce.Do(func() {
		defaultCache = resource.New(resource.DefaultConfig())
		tokenizer.UseCache(defaultCache)
	})
	return defaultCache
}

// DefaultCacheConfig returns the cache settings derived from the environment.
func DefaultCacheConfig() CacheConfig {
	return resource.DefaultConfig()
}

// EnsurePunkt makes the punkt sentence tokenizer models available in the
// default cache. It does nothing when they are already present.
func EnsurePunkt(ctx context.Context) error {
	return tokenizer.EnsurePunkt(ctx, cache())
}

// EnsurePunktWith is EnsurePunkt with an explicit cache configuration.
func EnsurePunktWith(ctx context.Context, cfg CacheConfig) error {
	return tokenizer.EnsurePunkt(ctx, resource.New(cfg))
}

// IsOfflineMode reports whether HF_HUB_OFFLINE or TRANSFORMERS_OFFLINE
// disables downloads.
func IsOfflineMode() bool {
	return resource.IsOfflineMode()
}

// NewTikToken creates a TikToken tokenizer with the specified encoding.
//
// Supported encodings: "o200k_base", "cl100k_base", "p50k_base", "r50k_base".
func NewTikToken(encodingName string) (Tokenizer, error) {
	cache()
	tok, err := tokenizer.NewTikToken(encodingName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// NewTikTokenForModel creates a TikToken tokenizer for a specific model.
//
// Example models: "gpt-4", "gpt-3.5-turbo", "text-embedding-ada-002".
func NewTikTokenForModel(modelName string) (Tokenizer, error) {
	cache()
	tok, err := tokenizer.NewTikTokenForModel(modelName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
