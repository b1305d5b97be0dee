// Package resource keeps downloadable tokenizer data in a local cache.
//
// The cache follows the NLTK data layout: a resource named "tokenizers/punkt" is
// present when some search directory holds "tokenizers/punkt" or
// "tokenizers/punkt.zip". Missing resources are downloaded at most once at a
// time across processes, guarded by an advisory file lock, and never when
// offline mode is active.
package resource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/born-ml/expkit/internal/logger"
	"github.com/born-ml/expkit/internal/metrics"
)

// DefaultLockPath is the lock file guarding downloads, relative to the working directory.
const DefaultLockPath = ".lock"

// PunktURL is where the punkt sentence tokenizer models are published.
const PunktURL = "https://raw.githubusercontent.com/nltk/nltk_data/gh-pages/packages/tokenizers/punkt.zip"

// lockRetryDelay is how often a blocked process retries the download lock.
const lockRetryDelay = 100 * time.Millisecond

// Kind describes how a downloaded resource is stored.
type Kind int

const (
	// Blob is stored as a single file under its name.
	Blob Kind = iota
	// Zip is stored as name.zip and extracted next to it.
	Zip
)

// Resource is a named, downloadable piece of tokenizer data.
type Resource struct {
	Name string // Slash-separated cache path, e.g. "tokenizers/punkt"
	URL  string
	Kind Kind
}

// Punkt is the punkt sentence tokenizer data.
var Punkt = Resource{Name: "tokenizers/punkt", URL: PunktURL, Kind: Zip}

// Common errors.
var (
	ErrNotFound  = errors.New("resource not found")
	ErrOffline   = errors.New("offline mode")
	ErrBadStatus = errors.New("unexpected download status")
	ErrZipEntry  = errors.New("unsafe zip entry")
)

// OfflineError is returned when a resource is missing and downloads are not allowed.
type OfflineError struct {
	Resource string
}

// Error implements the error interface.
func (e *OfflineError) Error() string {
	return fmt.Sprintf("offline mode: %s is not in the local cache; run once without HF_HUB_OFFLINE/TRANSFORMERS_OFFLINE set to download it", e.Resource)
}

// Unwrap returns ErrOffline.
func (e *OfflineError) Unwrap() error {
	return ErrOffline
}

// IsOfflineMode reports whether HF_HUB_OFFLINE or TRANSFORMERS_OFFLINE is set
// to 1, ON, YES or TRUE.
func IsOfflineMode() bool {
	for _, key := range []string{"HF_HUB_OFFLINE", "TRANSFORMERS_OFFLINE"} {
		switch strings.ToUpper(strings.TrimSpace(os.Getenv(key))) {
		case "1", "ON", "YES", "TRUE":
			return true
		}
	}
	return false
}

// DefaultSearchPaths returns the NLTK data search path: NLTK_DATA entries,
// ~/nltk_data, then the system-wide locations.
func DefaultSearchPaths() []string {
	var paths []string
	if env := os.Getenv("NLTK_DATA"); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p != "" {
				paths = append(paths, p)
			}
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "nltk_data"))
	}
	return append(paths,
		"/usr/share/nltk_data",
		"/usr/local/share/nltk_data",
		"/usr/lib/nltk_data",
		"/usr/local/lib/nltk_data",
	)
}

// Config controls where the cache looks and how it downloads.
type Config struct {
	SearchPaths []string     // Directories searched in order.
	DownloadDir string       // Where downloads land; SearchPaths[0] when empty, searched first otherwise.
	LockPath    string       // Download lock file; DefaultLockPath when empty.
	Offline     bool         // Refuse downloads.
	Client      *http.Client // http.DefaultClient when nil.
}

// DefaultConfig returns the NLTK search path, the default lock file and the
// offline flag from the environment.
func DefaultConfig() Config {
	return Config{
		SearchPaths: DefaultSearchPaths(),
		LockPath:    DefaultLockPath,
		Offline:     IsOfflineMode(),
	}
}

// Cache finds resources on disk and populates missing ones.
type Cache struct {
	cfg Config
}

// New creates a cache, filling unset fields of cfg with defaults.
func New(cfg Config) *Cache {
	if len(cfg.SearchPaths) == 0 {
		cfg.SearchPaths = DefaultSearchPaths()
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = cfg.SearchPaths[0]
	}
	if !slices.Contains(cfg.SearchPaths, cfg.DownloadDir) {
		cfg.SearchPaths = append([]string{cfg.DownloadDir}, cfg.SearchPaths...)
	}
	if cfg.LockPath == "" {
		cfg.LockPath = DefaultLockPath
	}
	if cfg.Client == nil {
		cfg.Client = http.DefaultClient
	}
	return &Cache{cfg: cfg}
}

// Config returns the effective configuration.
func (c *Cache) Config() Config {
	return c.cfg
}

// Find returns the on-disk location of the named resource: the first search
// directory holding either name or name.zip. It returns ErrNotFound otherwise.
func (c *Cache) Find(name string) (string, error) {
	rel := filepath.FromSlash(name)
	for _, dir := range c.cfg.SearchPaths {
		for _, candidate := range []string{filepath.Join(dir, rel), filepath.Join(dir, rel+".zip")} {
			_, err := os.Stat(candidate)
			if err == nil {
				return candidate, nil
			}
			if !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission) {
				return "", fmt.Errorf("resource: stat %s: %w", candidate, err)
			}
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(c.cfg.SearchPaths, ", "))
}

// Ensure makes res available locally.
//
// A cached resource returns immediately. Otherwise, in offline mode an
// *OfflineError is returned; online, the download lock is taken, the cache is
// checked again, and the resource is downloaded quietly. The lock is released
// on every path. Neither the lock wait nor the download has a timeout beyond
// ctx; network errors are returned as they are, without retries.
func (c *Cache) Ensure(ctx context.Context, res Resource) error {
	_, err := c.Find(res.Name)
	if err == nil {
		metrics.ResourceLookups.WithLabelValues(res.Name, "hit").Inc()
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	metrics.ResourceLookups.WithLabelValues(res.Name, "miss").Inc()

	if c.cfg.Offline {
		metrics.OfflineRefusals.WithLabelValues(res.Name).Inc()
		return &OfflineError{Resource: res.Name}
	}

	start := time.Now()
	lock := flock.New(c.cfg.LockPath)
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("resource: acquire lock %s: %w", c.cfg.LockPath, err)
	}
	if !locked {
		return fmt.Errorf("resource: acquire lock %s: not acquired", c.cfg.LockPath)
	}
	defer func() {
		if err := lock.Close(); err != nil {
			logger.Log.Warn("releasing download lock failed", "lock", c.cfg.LockPath, "err", err)
		}
	}()

	// Another process may have populated the cache while we waited.
	if _, err := c.Find(res.Name); err == nil {
		logger.Log.Debug("resource appeared while waiting for lock", "resource", res.Name)
		return nil
	}

	logger.Log.Debug("downloading resource", "resource", res.Name, "url", res.URL, "dir", c.cfg.DownloadDir)
	if err := c.download(ctx, res); err != nil {
		return err
	}

	metrics.ResourceDownloads.WithLabelValues(res.Name).Inc()
	metrics.ResourceDownloadDuration.Observe(time.Since(start).Seconds())
	return nil
}

// Path ensures res and returns its on-disk location.
func (c *Cache) Path(ctx context.Context, res Resource) (string, error) {
	if err := c.Ensure(ctx, res); err != nil {
		return "", err
	}
	return c.Find(res.Name)
}
