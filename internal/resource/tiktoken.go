package resource

import (
	"context"
	"crypto/sha1" //nolint:gosec // cache key only, same scheme tiktoken uses
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// TiktokenResource names the cache entry for a tiktoken BPE rank file.
// Entries are keyed by the SHA-1 of the URL.
func TiktokenResource(url string) Resource {
	sum := sha1.Sum([]byte(url)) //nolint:gosec // cache key only
	return Resource{
		Name: "tiktoken/" + hex.EncodeToString(sum[:]),
		URL:  url,
		Kind: Blob,
	}
}

// BpeLoader serves tiktoken BPE rank files from a Cache, so encodings obey
// the same offline gate and download lock as every other resource.
type BpeLoader struct {
	cache *Cache
}

var _ tiktoken.BpeLoader = (*BpeLoader)(nil)

// NewBpeLoader returns a loader backed by c.
func NewBpeLoader(c *Cache) *BpeLoader {
	return &BpeLoader{cache: c}
}

// LoadTiktokenBpe implements tiktoken.BpeLoader. Remote files go through the
// cache; local paths are read directly.
func (l *BpeLoader) LoadTiktokenBpe(file string) (map[string]int, error) {
	path := file
	if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") {
		// tiktoken's loader interface carries no context.
		p, err := l.cache.Path(context.Background(), TiktokenResource(file))
		if err != nil {
			return nil, err
		}
		path = p
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resource: read bpe ranks: %w", err)
	}
	return ParseBpeRanks(contents)
}

// ParseBpeRanks parses a tiktoken rank file: one "<base64 token> <rank>" per line.
func ParseBpeRanks(contents []byte) (map[string]int, error) {
	ranks := make(map[string]int)
	for i, line := range strings.Split(string(contents), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return nil, fmt.Errorf("resource: bpe ranks line %d: want 2 fields, got %d", i+1, len(fields))
		}
		token, err := base64.StdEncoding.DecodeString(fields[0])
		if err != nil {
			return nil, fmt.Errorf("resource: bpe ranks line %d: %w", i+1, err)
		}
		rank, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("resource: bpe ranks line %d: %w", i+1, err)
		}
		ranks[string(token)] = rank
	}
	return ranks, nil
}
