// Package tokenizer provides the tokenizers used to prepare experiment inputs
// and the tokenizer data they depend on.
//
// Two kinds of tokenizer data are managed through a resource.Cache:
//   - punkt: the NLTK sentence tokenizer models, ensured by EnsurePunkt
//   - tiktoken BPE rank files, loaded by NewTikToken after UseCache
//
// Both obey the same offline switch and download lock.
//
// Example usage:
//
//	cache := resource.New(resource.DefaultConfig())
//	if err := tokenizer.EnsurePunkt(ctx, cache); err != nil {
//	    log.Fatal(err)
//	}
//
//	tokenizer.UseCache(cache)
//	tok, err := tokenizer.NewTikToken("cl100k_base")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tokens, err := tok.Encode("Hello, world!")
package tokenizer
