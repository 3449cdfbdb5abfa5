// Package cli implements the re3facet command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/re3facet/pkg/buildinfo"
	"github.com/matzehuels/re3facet/pkg/cache"
	"github.com/matzehuels/re3facet/pkg/harvest"
	"github.com/matzehuels/re3facet/pkg/integrations/re3data"
	"github.com/matzehuels/re3facet/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "re3facet"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configFile string
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "re3facet browses re3data repositories by subject",
		Long:         `re3facet harvests the re3data registry of research data repositories, classifies every repository by its DFG subject codes and presents the subjects as a selectable tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default $XDG_CONFIG_HOME/re3facet/config.toml)")

	// Register all subcommands
	root.AddCommand(c.harvestCommand())
	root.AddCommand(c.subjectsCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		p, err := configPath()
		if err != nil {
			c.Logger.Debug("no config directory", "err", err)
			return nil
		}
		path = p
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config loaded", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runFlags are the pipeline flags shared by every command that needs data.
type runFlags struct {
	cachePath     string
	backend       string
	indexURL      string
	refresh       bool
	skipMalformed bool
	counts        bool
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.cachePath, "cache", "", "snapshot path for the path cache backend")
	cmd.Flags().StringVar(&f.backend, "cache-backend", "", "cache backend: path, dir, redis or none")
	cmd.Flags().StringVar(&f.indexURL, "index-url", "", "registry index URL")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore the cached snapshot and harvest again")
	cmd.Flags().BoolVar(&f.skipMalformed, "skip-malformed", false, "skip records without id or name")
	cmd.Flags().BoolVar(&f.counts, "counts", false, "append subject counts to tree labels")
}

// apply merges flag overrides into cfg.
func (f *runFlags) apply(cfg Config) Config {
	if f.cachePath != "" {
		cfg.Cache.Path = f.cachePath
	}
	if f.backend != "" {
		cfg.Cache.Backend = f.backend
	}
	if f.indexURL != "" {
		cfg.Registry.BaseURL = f.indexURL
	}
	cfg.Pipeline.SkipMalformed = cfg.Pipeline.SkipMalformed || f.skipMalformed
	cfg.Pipeline.Counts = cfg.Pipeline.Counts || f.counts
	return cfg
}

// newClient creates a registry client from cfg.
func (c *CLI) newClient(cfg Config) *re3data.Client {
	return re3data.NewClient(re3data.Config{
		IndexURL:    cfg.Registry.BaseURL,
		Timeout:     cfg.Registry.Timeout,
		Concurrency: cfg.Registry.Concurrency,
		Rate:        cfg.Registry.Rate,
		Retries:     cfg.Registry.Retries,
		UserAgent:   cfg.Registry.UserAgent,
		Logger:      c.Logger,
	})
}

// newStore creates the harvest store for cfg and returns the key the
// snapshot lives under. The caller closes the store's cache.
func (c *CLI) newStore(ctx context.Context, cfg Config) (*harvest.Store, string, error) {
	if err := cfg.validate(); err != nil {
		return nil, "", err
	}
	client := c.newClient(cfg)
	backend, key, err := newCache(ctx, cfg)
	if err != nil {
		return nil, "", err
	}
	store := harvest.NewStore(backend, client, c.Logger)
	store.TTL = cfg.Cache.TTL
	return store, key, nil
}

// newCache opens the configured backend.
func newCache(ctx context.Context, cfg Config) (cache.Cache, string, error) {
	switch cfg.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), pipeline.DefaultCacheKey, nil
	case backendDir:
		dir := cfg.Cache.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return nil, "", fmt.Errorf("get cache dir: %w", err)
			}
			dir = d
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, "", err
		}
		return fc, snapshotKey(cfg), nil
	case backendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "")
		if err != nil {
			return nil, "", err
		}
		return rc, snapshotKey(cfg), nil
	default:
		return cache.NewPathCache(), cfg.Cache.Path, nil
	}
}

// snapshotKey returns the key for keyed backends.
func snapshotKey(cfg Config) string {
	if cfg.Cache.Key != "" {
		return cfg.Cache.Key
	}
	keyer := cache.NewDefaultKeyer()
	if cfg.Cache.Namespace != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Namespace)
	}
	return keyer.DocumentsKey(cfg.Registry.BaseURL)
}

// run executes the pipeline with the flag overrides applied.
func (c *CLI) run(ctx context.Context, f *runFlags) (*pipeline.Result, error) {
	cfg := f.apply(c.Config)
	store, key, err := c.newStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer store.Cache.Close()

	runner := pipeline.NewRunner(store, c.Logger)
	return runner.Run(ctx, pipeline.Options{
		CacheKey:      key,
		Refresh:       f.refresh,
		SkipMalformed: cfg.Pipeline.SkipMalformed,
		Counts:        cfg.Pipeline.Counts,
	})
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/re3facet/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
