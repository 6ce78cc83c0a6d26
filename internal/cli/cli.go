package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/gtrends/gtrends-go/pkg/buildinfo"
	"github.com/gtrends/gtrends-go/pkg/config"
	"github.com/gtrends/gtrends-go/pkg/gtrends"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "gtrends"

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
	opts   globalOptions
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configFile string
	envFile    string
	envPrefix  string
	baseURI    string
	apiKey     string
	dryRun     bool
	noCache    bool
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
		Use:          appName,
		Short:        "gtrends queries a search-trends API",
		Long:         `gtrends is a command-line client for a search-trends API. It fetches trending searches, related topics, comparisons and geographic interest, retrying transient failures automatically.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	f := root.PersistentFlags()
	f.StringVar(&c.opts.configFile, "config", "", "configuration file (.toml, .yaml or .json)")
	f.StringVar(&c.opts.envFile, "env-file", "", "load settings from a .env file")
	f.StringVar(&c.opts.envPrefix, "env-prefix", config.EnvPrefix, "prefix of environment overrides")
	f.StringVar(&c.opts.baseURI, "base-uri", "", "API base URI (overrides configuration)")
	f.StringVar(&c.opts.apiKey, "api-key", "", "API key (overrides configuration)")
	f.BoolVar(&c.opts.dryRun, "dry-run", false, "build requests without sending them")
	f.BoolVar(&c.opts.noCache, "no-cache", false, "disable the response cache")

	root.AddCommand(c.trendingCommand())
	root.AddCommand(c.relatedCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.suggestionsCommand())
	root.AddCommand(c.opportunitiesCommand())
	root.AddCommand(c.growthCommand())
	root.AddCommand(c.geoCommand())
	root.AddCommand(c.healthCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration & Client Factory
// =============================================================================

// loadStore builds the configuration from, in order: defaults, the config
// file, the .env file, the process environment and the command-line flags.
func (c *CLI) loadStore() (*config.Store, error) {
	store := config.Default()

	if c.opts.configFile != "" {
		if err := store.LoadFile(c.opts.configFile); err != nil {
			return nil, err
		}
	}
	if c.opts.envFile != "" {
		if err := store.LoadDotEnv(c.opts.envFile, c.opts.envPrefix); err != nil {
			return nil, err
		}
	}
	if c.opts.envPrefix != "" {
		if err := store.LoadFromEnvironment(c.opts.envPrefix); err != nil {
			return nil, err
		}
	}

	overrides := map[string]any{}
	if c.opts.baseURI != "" {
		overrides["base_uri"] = c.opts.baseURI
	}
	if c.opts.apiKey != "" {
		overrides["api_key"] = c.opts.apiKey
	}
	if c.opts.dryRun {
		overrides["dry_run"] = true
	}
	if c.opts.noCache {
		overrides["cache.enabled"] = false
	}
	if len(overrides) > 0 {
		if err := store.Load(overrides); err != nil {
			return nil, err
		}
	}
	return store, nil
}

// newClient creates an API client from the loaded configuration.
func (c *CLI) newClient() (*gtrends.Client, error) {
	store, err := c.loadStore()
	if err != nil {
		return nil, err
	}
	return gtrends.New(store, gtrends.WithLogger(c.Logger))
}

// =============================================================================
// Output
// =============================================================================

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
