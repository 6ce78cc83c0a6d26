package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// configCommand creates the configuration inspection command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}

	cmd.AddCommand(c.configShowCommand())
	cmd.AddCommand(c.configValidateCommand())

	return cmd
}

// configShowCommand creates the "config show" subcommand.
func (c *CLI) configShowCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print every configuration value",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadStore()
			if err != nil {
				return err
			}

			values := map[string]any{}
			flatten("", store.All(), values)
			if _, ok := values["api_key"]; ok {
				values["api_key"] = "[REDACTED]"
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), values)
			}

			keys := slices.Sorted(maps.Keys(values))
			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				rows = append(rows, []string{k, fmt.Sprint(values[k])})
			}

			t := table.New().
				Border(lipgloss.RoundedBorder()).
				BorderStyle(StyleDim).
				Headers("KEY", "VALUE").
				Rows(rows...).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == table.HeaderRow:
						return StyleTitle
					case col == 0:
						return StyleHighlight
					default:
						return StyleValue
					}
				})
			fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

// configValidateCommand creates the "config validate" subcommand.
func (c *CLI) configValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration against the schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := c.loadStore()
			if err != nil {
				return err
			}
			if err := store.Validate(); err != nil {
				return err
			}

			s := store.Settings()
			w := cmd.OutOrStdout()
			printSuccess(w, "Configuration is valid")
			printKeyValue(w, "base_uri", s.BaseURI)
			printKeyValue(w, "timeout", s.Timeout.String())
			printKeyValue(w, "retries", fmt.Sprintf("%d (base delay %s, x%g)", s.Retry.MaxAttempts, s.Retry.Delay, s.Retry.Multiplier))
			if s.Cache.Enabled {
				printKeyValue(w, "cache", s.Cache.Driver)
			} else {
				printKeyValue(w, "cache", "disabled")
			}
			return nil
		},
	}
}

// flatten writes the leaves of m into out under dotted keys.
func flatten(prefix string, m map[string]any, out map[string]any) {
	for k, v := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok && key != "headers" {
			flatten(key, sub, out)
			continue
		}
		out[key] = v
	}
}
