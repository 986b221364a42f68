package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/pkg/cache"
	"github.com/matzehuels/mandelscope/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the buffer cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached buffers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			switch c.Config.Cache.Backend {
			case config.BackendMemory, config.BackendNone:
				printInfo("The %s cache keeps nothing between runs", c.Config.Cache.Backend)
				return nil
			}
			store, err := c.Config.Cache.Open(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer store.Close()

			clearer, ok := store.(cache.Clearer)
			if !ok {
				return fmt.Errorf("%s cache cannot be cleared", c.Config.Cache.Backend)
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			printSuccess("Cleared the %s cache", c.Config.Cache.Backend)
			printFile(c.cacheLocation())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where buffers are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(c.cacheLocation())
			return nil
		},
	}
}

// cacheLocation describes the configured backend: a directory for the file
// cache, a redis address otherwise.
func (c *CLI) cacheLocation() string {
	cfg := c.Config.Cache
	switch cfg.Backend {
	case config.BackendRedis:
		return fmt.Sprintf("redis://%s/%d", cfg.RedisAddr, cfg.RedisDB)
	case config.BackendMemory, config.BackendNone:
		return cfg.Backend
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return "unknown"
	}
	return dir
}
