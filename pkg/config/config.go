// Package config loads the mandelscope TOML configuration file.
//
// The file lives at $XDG_CONFIG_HOME/mandelscope/config.toml (falling back
// to ~/.config/mandelscope/config.toml). Every key is optional; missing keys
// keep their defaults, and command-line flags override both.
//
//	width = 800
//	height = 600
//	color = "viridis"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mandelscope/pkg/cache"
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
)

// AppName names the config and cache directories.
const AppName = "mandelscope"

// FileName is the config file name inside the config directory.
const FileName = "config.toml"

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// DefaultServerAddr is where the HTTP API listens by default.
const DefaultServerAddr = ":8080"

// Config is the decoded configuration file.
type Config struct {
	Width    int    `toml:"width"`
	Height   int    `toml:"height"`
	MaxIters int    `toml:"max_iters"`
	Color    string `toml:"color"`
	Inverse  bool   `toml:"inverse"`
	Precise  bool   `toml:"precise"`
	Margin   int    `toml:"margin"`
	Region   string `toml:"region"`
	Workers  int    `toml:"workers"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects and configures the buffer cache.
type CacheConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	MemoryBytes   int      `toml:"memory_bytes"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisPrefix   string   `toml:"redis_prefix"`
	TTL           Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL Duration `toml:"session_ttl"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Width:    pipeline.DefaultWidth,
		Height:   pipeline.DefaultHeight,
		MaxIters: pipeline.DefaultMaxIters,
		Color:    pipeline.DefaultGradient,
		Margin:   pipeline.DefaultMargin,
		Region:   pipeline.DefaultRegion,
		Cache: CacheConfig{
			Backend:     BackendFile,
			MemoryBytes: cache.DefaultMemoryBytes,
			RedisAddr:   "localhost:6379",
			TTL:         Duration{cache.DefaultTTL},
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
	}
}

// Path returns the default config file path.
func Path() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, AppName, FileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, FileName), nil
}

// Load reads the file at path on top of Default. An empty path means the
// default location, where a missing file is not an error. The returned
// strings name keys the file sets that mandelscope does not know.
func Load(path string) (Config, []string, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return cfg, nil, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil, nil
		}
		return Default(), nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", path)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	sort.Strings(unknown)

	if err := cfg.Validate(); err != nil {
		return cfg, unknown, errs.Wrap(errs.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, unknown, nil
}

// Validate checks the render settings and the cache backend.
func (c Config) Validate() error {
	opts := c.Options()
	if err := opts.Validate(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendNone:
	default:
		return errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 || c.Server.SessionTTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidConfig, "durations must be non-negative")
	}
	return nil
}

// Options converts the render settings to pipeline options.
func (c Config) Options() pipeline.Options {
	return pipeline.Options{
		Width:    c.Width,
		Height:   c.Height,
		MaxIters: c.MaxIters,
		Gradient: c.Color,
		Inverted: c.Inverse,
		Precise:  c.Precise,
		Region:   c.Region,
		Margin:   c.Margin,
		Workers:  c.Workers,
	}
}

// CacheDir returns the file cache directory: Cache.Dir when set, else
// $XDG_CACHE_HOME/mandelscope or ~/.cache/mandelscope.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if home := os.Getenv("XDG_CACHE_HOME"); home != "" {
		return filepath.Join(home, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// Open creates the configured cache backend.
func (c CacheConfig) Open(ctx context.Context) (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendMemory:
		return cache.NewMemoryCache(c.MemoryBytes), nil
	case BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case BackendFile, "":
		dir, err := c.CacheDir()
		if err != nil {
			return nil, err
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidConfig, "unknown cache backend %q", c.Backend)
	}
}
