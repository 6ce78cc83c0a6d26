package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gtrends/gtrends-go/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the API response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached response from the configured backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadStore()
			if err != nil {
				return err
			}

			// Clearing works on the configured backend even when lookups are off.
			settings := store.Settings().Cache
			settings.Enabled = true

			cc, err := cache.Open(cmd.Context(), settings)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			if err := cc.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "Cleared %s cache", driverName(settings.Driver))
			if fc, ok := cc.(*cache.FileCache); ok {
				printDetail(w, "Directory: %s", fc.Dir())
			}
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadStore()
			if err != nil {
				return err
			}

			settings := store.Settings().Cache
			if d := driverName(settings.Driver); d != cache.DriverFile {
				printInfo(cmd.ErrOrStderr(), "Cache driver is %s; the directory is only used by the file driver", d)
			}

			dir := settings.Dir
			if dir == "" {
				if dir, err = cache.DefaultDir(); err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}

func driverName(driver string) string {
	if driver == "" {
		return cache.DriverFile
	}
	return driver
}
