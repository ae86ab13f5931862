// Package cli implements the linevis command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/pkg/buildinfo"
	"github.com/matzehuels/linevis/pkg/cache"
	"github.com/matzehuels/linevis/pkg/dataset"
	"github.com/matzehuels/linevis/pkg/observability"
	"github.com/matzehuels/linevis/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "linevis"

	// redisEnv names the environment variable holding a redis address. When
	// set, the cache and selection store live in redis instead of on disk.
	redisEnv = "LINEVIS_REDIS"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "linevis",
		Short:         "linevis lays out and renders small-multiple line charts",
		Long:          `linevis turns tabular data into a responsive grid of line charts and lets you select lines, legend entries and lassoed points across every cell.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var (
		verbose   bool
		logFormat string
	)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json, logfmt")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := configureLogger(c.Logger, verbose, logFormat); err != nil {
			return err
		}
		cmd.SetContext(withLogger(cmd.Context(), commandLogger(c.Logger, cmd)))
		if verbose {
			restore := observability.Install(observability.NewTrace(c.Logger.WithPrefix("trace")))
			root.PersistentPostRun = func(*cobra.Command, []string) { restore() }
		}
		return nil
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

// newCache returns the redis cache when LINEVIS_REDIS is set, the file
// cache otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if addr := os.Getenv(redisEnv); addr != "" {
		c.Logger.Debug("using redis cache", "addr", addr)
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: addr, Prefix: appName + ":"})
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/linevis/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// datasetFlags are the flags every command reading a dataset shares.
type datasetFlags struct {
	settings string
	sheet    string
	category string
	series   string
	value    string
	row      string
	column   string
	tooltips []string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	d := dataset.DefaultColumns()
	cmd.Flags().StringVarP(&f.settings, "settings", "s", "", "settings file (TOML)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet to read (xlsx, default: first)")
	cmd.Flags().StringVar(&f.category, "category", d.Category, "category column")
	cmd.Flags().StringVar(&f.series, "series", d.Series, "series column")
	cmd.Flags().StringVar(&f.value, "value", d.Value, "value column")
	cmd.Flags().StringVar(&f.row, "row", d.Row, "row group column")
	cmd.Flags().StringVar(&f.column, "column", d.Column, "column group column")
	cmd.Flags().StringSliceVar(&f.tooltips, "tooltip", nil, "extra tooltip column (repeatable)")
}

func (f *datasetFlags) options() dataset.Options {
	return dataset.Options{
		Sheet: f.sheet,
		Columns: dataset.Columns{
			Category: f.category,
			Series:   f.series,
			Value:    f.value,
			Row:      f.row,
			Column:   f.column,
			Tooltips: f.tooltips,
		},
	}
}

// setCLIDefaults applies CLI-specific defaults on top of pipeline defaults.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	// CLI-specific preferences (override pipeline defaults)
	opts.Popups = true
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// basePath derives the output base path. An empty output strips the
// extension from input; a known format extension is stripped from output.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
