package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/re3facet/pkg/integrations"
	"github.com/matzehuels/re3facet/pkg/integrations/re3data"
	"github.com/matzehuels/re3facet/pkg/pipeline"
)

// Cache backends selectable with [cache] backend.
const (
	backendPath  = "path"
	backendDir   = "dir"
	backendRedis = "redis"
	backendNone  = "none"
)

var cacheBackends = []string{backendPath, backendDir, backendRedis, backendNone}

// Config is the on-disk configuration, read from
// $XDG_CONFIG_HOME/re3facet/config.toml unless --config names another file.
//
//	[registry]
//	base_url = "https://www.re3data.org/api/beta/repositories"
//	timeout = "60s"
//	concurrency = 4
//	rate = 10.0
//
//	[cache]
//	backend = "path"
//	path = "data/re3data_repo_dump"
type Config struct {
	Registry RegistryConfig `toml:"registry"`
	Cache    CacheConfig    `toml:"cache"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Server   ServerConfig   `toml:"server"`
}

// RegistryConfig configures the re3data client.
type RegistryConfig struct {
	BaseURL     string        `toml:"base_url"`
	Timeout     time.Duration `toml:"timeout"`
	Concurrency int           `toml:"concurrency"`
	Rate        float64       `toml:"rate"`
	Retries     int           `toml:"retries"`
	UserAgent   string        `toml:"user_agent"`
}

// CacheConfig selects and configures the snapshot cache.
type CacheConfig struct {
	Backend   string        `toml:"backend"`
	Path      string        `toml:"path"`      // Snapshot file for the path backend
	Dir       string        `toml:"dir"`       // Directory for the dir backend
	RedisURL  string        `toml:"redis_url"` // redis://host:port/db
	Key       string        `toml:"key"`       // Explicit key for dir and redis backends
	Namespace string        `toml:"namespace"` // Prefix for derived keys
	TTL       time.Duration `toml:"ttl"`
}

// PipelineConfig holds pipeline defaults.
type PipelineConfig struct {
	SkipMalformed bool `toml:"skip_malformed"`
	Counts        bool `toml:"counts"`
}

// ServerConfig configures "re3facet serve".
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// defaultConfig returns the configuration used when no file exists.
func defaultConfig() Config {
	return Config{
		Registry: RegistryConfig{
			BaseURL:     re3data.DefaultIndexURL,
			Timeout:     integrations.DefaultTimeout,
			Concurrency: 1,
			UserAgent:   appName,
		},
		Cache: CacheConfig{
			Backend:   backendPath,
			Path:      pipeline.DefaultCacheKey,
			Namespace: appName + ":",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// loadConfig reads path on top of the defaults. A missing file is not an
// error when the path was not given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Cache.Backend {
	case backendPath, backendDir, backendRedis, backendNone:
	default:
		return fmt.Errorf("unknown cache backend %q (want one of %v)", c.Cache.Backend, cacheBackends)
	}
	if c.Cache.Backend == backendRedis && c.Cache.RedisURL == "" {
		return errors.New("cache backend redis needs redis_url")
	}
	if c.Registry.Concurrency < 0 {
		return errors.New("registry concurrency must not be negative")
	}
	if c.Registry.Rate < 0 {
		return errors.New("registry rate must not be negative")
	}
	return nil
}

// configPath returns the default config file location
// (~/.config/re3facet/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
