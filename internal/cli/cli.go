package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/pkg/buildinfo"
	"github.com/matzehuels/mandelscope/pkg/cache"
	"github.com/matzehuels/mandelscope/pkg/config"
	"github.com/matzehuels/mandelscope/pkg/grid"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

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

	// Config is loaded before any command runs.
	Config     config.Config
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
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
		Short:        "Mandelscope explores the Mandelbrot set",
		Long:         `Mandelscope renders the Mandelbrot set in the terminal, explores it interactively with nested zooms, and serves frames over HTTP. Deep zooms can switch to arbitrary-precision arithmetic.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/mandelscope/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.gradientsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, unknown, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. A cache backend that
// cannot be opened is logged and replaced by no caching.
func (c *CLI) newRunner(ctx context.Context, opts pipeline.Options, noCache bool) *pipeline.Runner {
	store := c.newCache(ctx, noCache)
	runner := pipeline.NewRunner(store, cache.NewScopedKeyer(nil, grid.CodecTag+":"), c.Logger)
	runner.Workers = opts.Workers
	runner.TTL = c.Config.Cache.TTL.Duration
	return runner
}

func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	store, err := c.Config.Cache.Open(ctx)
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", c.Config.Cache.Backend, "error", err)
		return cache.NewNullCache()
	}
	return store
}
