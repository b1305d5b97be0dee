// Package config loads expkit settings from defaults, an optional TOML file
// and the environment, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/born-ml/expkit/internal/resource"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "EXPKIT_LOG_LEVEL"
	EnvLogFormat   = "EXPKIT_LOG_FORMAT"
	EnvSeed        = "EXPKIT_SEED"
	EnvDataDir     = "EXPKIT_DATA_DIR"
	EnvLockPath    = "EXPKIT_LOCK_PATH"
	EnvMetricsFile = "EXPKIT_METRICS_FILE"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config holds the settings shared by the expkit commands.
type Config struct {
	LogLevel    string // DEBUG, INFO, WARN or ERROR
	LogFormat   string // console or json
	Seed        int64
	Offline     bool   // Refuse resource downloads.
	DataDir     string // Resource download directory; NLTK default search path when empty.
	LockPath    string // Download lock file.
	MetricsFile string // Prometheus textfile written on exit; disabled when empty.
}

type fileConfig struct {
	LogLevel    string `toml:"log_level"`
	LogFormat   string `toml:"log_format"`
	Seed        int64  `toml:"seed"`
	Offline     bool   `toml:"offline"`
	DataDir     string `toml:"data_dir"`
	LockPath    string `toml:"lock_path"`
	MetricsFile string `toml:"metrics_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel:  "INFO",
		LogFormat: "console",
		Seed:      0,
		LockPath:  resource.DefaultLockPath,
	}
}

// Load overlays the keys defined in the TOML file at path onto cfg.
// Keys absent from the file keep their current value.
func Load(cfg Config, path string) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: %w: unknown key %q", ErrInvalid, undecoded[0].String())
	}

	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.TrimSpace(raw.LogFormat)
	}
	if meta.IsDefined("seed") {
		cfg.Seed = raw.Seed
	}
	if meta.IsDefined("offline") {
		cfg.Offline = raw.Offline
	}
	if meta.IsDefined("data_dir") {
		cfg.DataDir = expandHome(strings.TrimSpace(raw.DataDir))
	}
	if meta.IsDefined("lock_path") {
		cfg.LockPath = expandHome(strings.TrimSpace(raw.LockPath))
	}
	if meta.IsDefined("metrics_file") {
		cfg.MetricsFile = expandHome(strings.TrimSpace(raw.MetricsFile))
	}

	return cfg, nil
}

// ApplyEnv overlays EXPKIT_* variables onto cfg. Offline mode is switched on
// by HF_HUB_OFFLINE or TRANSFORMERS_OFFLINE and never switched off.
func (cfg Config) ApplyEnv() (Config, error) {
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := lookup(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s=%q: %w", ErrInvalid, EnvSeed, v, err)
		}
		cfg.Seed = seed
	}
	if v, ok := lookup(EnvDataDir); ok {
		cfg.DataDir = expandHome(v)
	}
	if v, ok := lookup(EnvLockPath); ok {
		cfg.LockPath = expandHome(v)
	}
	if v, ok := lookup(EnvMetricsFile); ok {
		cfg.MetricsFile = expandHome(v)
	}
	if resource.IsOfflineMode() {
		cfg.Offline = true
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (cfg Config) Validate() error {
	switch strings.ToUpper(cfg.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, cfg.LogLevel)
	}
	switch strings.ToLower(cfg.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, cfg.LogFormat)
	}
	if cfg.LockPath == "" {
		return fmt.Errorf("%w: empty lock path", ErrInvalid)
	}
	return nil
}

// Resolve runs Default, Load (when path is non-empty), ApplyEnv and Validate.
func Resolve(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		var err error
		if cfg, err = Load(cfg, path); err != nil {
			return Config{}, err
		}
	}
	cfg, err := cfg.ApplyEnv()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Resource returns the resource cache settings for cfg.
func (cfg Config) Resource() resource.Config {
	rc := resource.Config{
		SearchPaths: resource.DefaultSearchPaths(),
		LockPath:    cfg.LockPath,
		Offline:     cfg.Offline,
	}
	if cfg.DataDir != "" {
		rc.DownloadDir = cfg.DataDir
	}
	return rc
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
