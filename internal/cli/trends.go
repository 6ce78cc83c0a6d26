package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gtrends/gtrends-go/pkg/gtrends"
)

// runQuery creates a client, runs call and prints its result as JSON.
func (c *CLI) runQuery(cmd *cobra.Command, what string, call func(context.Context, *gtrends.Client) (map[string]any, error)) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	client, err := c.newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	prog := newProgress(logger)
	data, err := call(ctx, client)
	if err != nil {
		return err
	}
	prog.done("Fetched " + what)

	return writeJSON(cmd.OutOrStdout(), data)
}

func (c *CLI) trendingCommand() *cobra.Command {
	var opts gtrends.TrendingOptions

	cmd := &cobra.Command{
		Use:   "trending",
		Short: "Show currently trending searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "trending searches", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Trending(ctx, opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Region, "region", "", "two-letter country code, e.g. US")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "number of results (1-100, default pagination.per_page)")
	cmd.Flags().BoolVar(&opts.IncludeNews, "news", false, "include related news articles")
	return cmd
}

func (c *CLI) relatedCommand() *cobra.Command {
	var opts gtrends.QueryOptions

	cmd := &cobra.Command{
		Use:       "related topics|queries TOPIC",
		Short:     "Show topics or queries related to a topic",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"topics", "queries"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, topic := args[0], args[1]
			switch kind {
			case "topics":
				return c.runQuery(cmd, "related topics", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
					return cl.RelatedTopics(ctx, topic, opts)
				})
			case "queries":
				return c.runQuery(cmd, "related queries", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
					return cl.RelatedQueries(ctx, topic, opts)
				})
			}
			return fmt.Errorf("unknown kind %q: want topics or queries", kind)
		},
	}

	addQueryFlags(cmd, &opts)
	return cmd
}

func (c *CLI) compareCommand() *cobra.Command {
	var opts gtrends.QueryOptions

	cmd := &cobra.Command{
		Use:   "compare TOPIC...",
		Short: "Compare interest over time for up to five topics",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "comparison", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Compare(ctx, args, opts)
			})
		},
	}

	addQueryFlags(cmd, &opts)
	return cmd
}

func (c *CLI) suggestionsCommand() *cobra.Command {
	var opts gtrends.SuggestionsOptions

	cmd := &cobra.Command{
		Use:   "suggestions QUERY",
		Short: "Suggest content ideas for a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "suggestions", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Suggestions(ctx, args[0], opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Region, "region", "", "two-letter country code")
	cmd.Flags().StringVar(&opts.ContentType, "type", gtrends.DefaultContentType, "content type: all, article, video, image or social")
	return cmd
}

func (c *CLI) opportunitiesCommand() *cobra.Command {
	var opts gtrends.OpportunitiesOptions

	cmd := &cobra.Command{
		Use:   "opportunities NICHE",
		Short: "Find writing opportunities in a niche",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "opportunities", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Opportunities(ctx, args[0], opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Region, "region", "", "two-letter country code")
	cmd.Flags().IntVar(&opts.Count, "count", gtrends.DefaultOpportunities, "number of results (1-50)")
	return cmd
}

func (c *CLI) growthCommand() *cobra.Command {
	var timeframe string

	cmd := &cobra.Command{
		Use:   "growth QUERY",
		Short: "Show the growth pattern of a query",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "growth", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Growth(ctx, args[0], timeframe)
			})
		},
	}

	cmd.Flags().StringVar(&timeframe, "timeframe", gtrends.DefaultGrowthTimeframe, "today 3-m, today 12-m, today 5-y or all")
	return cmd
}

func (c *CLI) geoCommand() *cobra.Command {
	var opts gtrends.GeoOptions

	cmd := &cobra.Command{
		Use:   "geo QUERY",
		Short: "Show interest in a query by location",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "geographic interest", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Geo(ctx, args[0], opts)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Region, "region", "", "two-letter country code")
	cmd.Flags().StringVar(&opts.Resolution, "resolution", gtrends.DefaultResolution, "COUNTRY, REGION, CITY or DMA")
	cmd.Flags().StringVar(&opts.Timeframe, "timeframe", gtrends.DefaultGrowthTimeframe, "time range")
	cmd.Flags().StringVar(&opts.Category, "category", gtrends.DefaultCategory, "category id")
	cmd.Flags().IntVar(&opts.Count, "count", gtrends.DefaultGeoCount, "number of results (1-100)")
	return cmd
}

func (c *CLI) healthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the API status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runQuery(cmd, "health status", func(ctx context.Context, cl *gtrends.Client) (map[string]any, error) {
				return cl.Health(ctx)
			})
		},
	}
}

func addQueryFlags(cmd *cobra.Command, opts *gtrends.QueryOptions) {
	cmd.Flags().StringVar(&opts.Region, "region", "", "two-letter country code")
	cmd.Flags().StringVar(&opts.Timeframe, "timeframe", gtrends.DefaultTimeframe, "time range, e.g. \"today 3-m\"")
	cmd.Flags().StringVar(&opts.Category, "category", gtrends.DefaultCategory, "category id")
}
