package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mortar/pkg/cache"
)

func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the rendered output cache",
		Long: `Rendered outputs are cached by sketch content, render options and
configuration. Use --no-cache on render to bypass the cache for one run.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached outputs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fc, err := openCache()
			if err != nil {
				return err
			}
			n, err := fc.Clear()
			if err != nil {
				return err
			}
			c.Logger.Debug("cache cleared", "dir", fc.Dir(), "entries", n)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached outputs\n", n)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := cacheDir()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), dir)
			return err
		},
	})

	return cmd
}

// openCache opens the file cache in the user cache directory.
func openCache() (*cache.FileCache, error) {
	dir, err := cacheDir()
	if err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return cache.NewFileCache(dir)
}
