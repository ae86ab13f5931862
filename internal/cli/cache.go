package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/linevis/pkg/cache"
)

// cacheCommand creates the cache management command. Only the local file
// cache is managed; redis entries expire on their own.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached tables, layouts, charts and selections",
	}

	cmd.AddCommand(c.cacheSweepCommand("clear", "Remove every entry from the file cache", (*cache.FileCache).Clear))
	cmd.AddCommand(c.cacheSweepCommand("prune", "Remove expired entries from the file cache", (*cache.FileCache).Prune))
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheSweepCommand creates a subcommand that removes file cache entries
// with sweep.
func (c *CLI) cacheSweepCommand(use, short string, sweep func(*cache.FileCache, context.Context) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr := os.Getenv(redisEnv); addr != "" {
				printWarning("%s is set; redis entries at %s are left to expire", redisEnv, addr)
			}

			fc, err := openFileCache()
			if err != nil {
				return err
			}
			n, err := sweep(fc, cmd.Context())
			if err != nil {
				return fmt.Errorf("%s cache: %w", use, err)
			}

			if n == 0 {
				printInfo("Nothing to remove")
			} else {
				printSuccess("Removed %d cached entries", n)
			}
			printDetail("Directory: %s", fc.Dir())
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func openFileCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	return cache.NewFileCache(dir)
}
