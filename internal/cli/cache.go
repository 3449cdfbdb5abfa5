package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the registry snapshot cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func addCacheFlags(cmd *cobra.Command, f *runFlags) {
	cmd.Flags().StringVar(&f.cachePath, "cache", "", "snapshot path for the path cache backend")
	cmd.Flags().StringVar(&f.backend, "cache-backend", "", "cache backend: path, dir, redis or none")
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the cached registry snapshot",
		Long: `Delete the cached registry snapshot so that the next run harvests the
registry again. For the dir backend every entry in the cache directory is
removed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.apply(c.Config)
			if err := cfg.validate(); err != nil {
				return err
			}

			switch cfg.Cache.Backend {
			case backendNone:
				printInfo("Cache is disabled")
				return nil
			case backendDir:
				return clearDir(cfg.Cache.Dir)
			}

			ctx := cmd.Context()
			backend, key, err := newCache(ctx, cfg)
			if err != nil {
				return err
			}
			defer backend.Close()

			if err := backend.Delete(ctx, key); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared cached snapshot")
			printDetail("Key: %s", key)
			return nil
		},
	}

	addCacheFlags(cmd, &flags)
	return cmd
}

// clearDir removes every file below dir, or below the default cache
// directory when dir is empty.
func clearDir(dir string) error {
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		dir = d
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		printInfo("Cache is empty")
		return nil
	}

	count := 0
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors, continue walking
		}
		if !info.IsDir() {
			if err := os.Remove(path); err == nil {
				count++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	printSuccess("Cleared %d cached entries", count)
	printDetail("Directory: %s", dir)
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	var flags runFlags

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print where the snapshot is cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := flags.apply(c.Config)
			loc, err := cacheLocation(cfg)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}

	addCacheFlags(cmd, &flags)
	return cmd
}

// cacheLocation describes where cfg stores the snapshot.
func cacheLocation(cfg Config) (string, error) {
	switch cfg.Cache.Backend {
	case backendNone:
		return "", fmt.Errorf("cache is disabled")
	case backendRedis:
		return cfg.Cache.RedisURL + " " + snapshotKey(cfg), nil
	case backendDir:
		if cfg.Cache.Dir != "" {
			return cfg.Cache.Dir, nil
		}
		dir, err := cacheDir()
		if err != nil {
			return "", fmt.Errorf("get cache dir: %w", err)
		}
		return dir, nil
	default:
		return filepath.Abs(cfg.Cache.Path)
	}
}
