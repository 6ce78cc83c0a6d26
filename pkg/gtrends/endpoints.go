package gtrends

import (
	"context"
	"strings"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
	"github.com/gtrends/gtrends-go/pkg/request"
)

// Endpoint names relative to base_uri.
const (
	EndpointTrending       = "trending"
	EndpointRelatedTopics  = "related-topics"
	EndpointRelatedQueries = "related-queries"
	EndpointComparison     = "comparison"
	EndpointSuggestions    = "suggestions"
	EndpointOpportunities  = "opportunities"
	EndpointGrowth         = "growth"
	EndpointGeo            = "geo"
	EndpointHealth         = "health"
)

// Defaults applied by the endpoint wrappers when an option is left empty.
const (
	DefaultTimeframe       = "today 3-m"
	DefaultGrowthTimeframe = "today 12-m"
	DefaultCategory        = "0"
	DefaultContentType     = "all"
	DefaultResolution      = "COUNTRY"
	DefaultOpportunities   = 10
	DefaultGeoCount        = 20
)

var (
	// ContentTypes are the accepted suggestion content types.
	ContentTypes = []string{"all", "article", "video", "image", "social"}

	// GrowthTimeframes are the accepted growth timeframes.
	GrowthTimeframes = []string{"today 3-m", "today 12-m", "today 5-y", "all"}

	// Resolutions are the accepted geographic resolutions.
	Resolutions = []string{"COUNTRY", "REGION", "CITY", "DMA"}
)

// TrendingOptions configures [Client.Trending].
type TrendingOptions struct {
	Region      string // optional two-letter country code
	Limit       int    // 1-100, defaults to pagination.per_page
	IncludeNews bool
}

// QueryOptions configures the related, comparison and geo wrappers.
type QueryOptions struct {
	Region    string // optional two-letter country code
	Timeframe string // defaults to "today 3-m"
	Category  string // defaults to "0" (all categories)
}

// SuggestionsOptions configures [Client.Suggestions].
type SuggestionsOptions struct {
	Region      string
	ContentType string // one of ContentTypes, defaults to "all"
}

// OpportunitiesOptions configures [Client.Opportunities].
type OpportunitiesOptions struct {
	Region string
	Count  int // 1-50, defaults to 10
}

// GeoOptions configures [Client.Geo].
type GeoOptions struct {
	Region     string
	Resolution string // one of Resolutions, case-insensitive
	Timeframe  string // defaults to "today 12-m"
	Category   string
	Count      int // 1-100, defaults to 20
}

// Trending returns the currently trending searches.
func (c *Client) Trending(ctx context.Context, opts TrendingOptions) (map[string]any, error) {
	limit := opts.Limit
	if limit == 0 {
		limit = min(c.current().settings.Pagination.PerPage, 100)
	}
	if err := gterrors.ValidateRange("limit", "Limit", limit, 1, 100); err != nil {
		return nil, err
	}
	if err := validateOptionalRegion(opts.Region); err != nil {
		return nil, err
	}

	params := map[string]any{
		"limit":        limit,
		"include_news": opts.IncludeNews,
	}
	if opts.Region != "" {
		params["region"] = opts.Region
	}

	data, err := c.get(ctx, EndpointTrending, params, map[string]string{
		"limit":        "required|integer",
		"include_news": "boolean",
	})
	if err != nil {
		return nil, err
	}
	return c.reshape(data, "trends", []string{"items", "trending_searches", "data"}, map[string]any{
		"region": data["region"],
	}), nil
}

// RelatedTopics returns topics related to topic.
func (c *Client) RelatedTopics(ctx context.Context, topic string, opts QueryOptions) (map[string]any, error) {
	return c.related(ctx, EndpointRelatedTopics, "related_topics", topic, opts)
}

// RelatedQueries returns search queries related to topic.
func (c *Client) RelatedQueries(ctx context.Context, topic string, opts QueryOptions) (map[string]any, error) {
	return c.related(ctx, EndpointRelatedQueries, "related_queries", topic, opts)
}

func (c *Client) related(ctx context.Context, endpoint, key, topic string, opts QueryOptions) (map[string]any, error) {
	if err := gterrors.ValidateNotEmpty("topic", "Topic", topic); err != nil {
		return nil, err
	}
	if err := validateOptionalRegion(opts.Region); err != nil {
		return nil, err
	}

	data, err := c.get(ctx, endpoint, queryParams(topic, opts), queryRules)
	if err != nil {
		return nil, err
	}

	out := c.reshape(data, key, []string{"items", "data"}, map[string]any{
		"query":  data["query"],
		"region": data["region"],
	})
	if !isContainer(data[key]) && !isContainer(data["items"]) && !isContainer(data["data"]) &&
		data["rising"] != nil && data["top"] != nil {
		out[key] = map[string]any{"rising": data["rising"], "top": data["top"]}
	}
	return out, nil
}

// Compare returns interest over time for up to five topics. The topic
// list is validated before any request is built.
func (c *Client) Compare(ctx context.Context, topics []string, opts QueryOptions) (map[string]any, error) {
	if err := gterrors.ValidateTopics(topics); err != nil {
		return nil, err
	}
	if err := validateOptionalRegion(opts.Region); err != nil {
		return nil, err
	}

	data, err := c.get(ctx, EndpointComparison, queryParams(strings.Join(topics, ","), opts), queryRules)
	if err != nil {
		return nil, err
	}
	return c.reshape(data, "comparison", []string{"items", "data", "interest_over_time"}, map[string]any{
		"topics":    topics,
		"region":    data["region"],
		"timeframe": data["timeframe"],
	}), nil
}

// Suggestions returns content ideas for query.
func (c *Client) Suggestions(ctx context.Context, query string, opts SuggestionsOptions) (map[string]any, error) {
	contentType := opts.ContentType
	if contentType == "" {
		contentType = DefaultContentType
	}
	if err := gterrors.ValidateNotEmpty("query", "Query", query); err != nil {
		return nil, err
	}
	if err := validateOptionalRegion(opts.Region); err != nil {
		return nil, err
	}
	if err := gterrors.ValidateOneOf("type", "content type", contentType, ContentTypes); err != nil {
		return nil, err
	}

	params := map[string]any{"q": query, "type": contentType}
	if opts.Region != "" {
		params["geo"] = opts.Region
	}

	data, err := c.get(ctx, EndpointSuggestions, params, map[string]string{
		"q":    "required|string",
		"type": "in:" + strings.Join(ContentTypes, ","),
	})
	if err != nil {
		return nil, err
	}
	ct := data["content_type"]
	if ct == nil {
		ct = DefaultContentType
	}
	return c.reshape(data, "suggestions", []string{"items", "data", "content_ideas"}, map[string]any{
		"query":        data["query"],
		"region":       data["region"],
		"content_type": ct,
	}), nil
}

// Opportunities returns writing opportunities within niche.
func (c *Client) Opportunities(ctx context.Context, niche string, opts OpportunitiesOptions) (map[string]any, error) {
	count := opts.Count
	if count == 0 {
		count = DefaultOpportunities
	}
	if err := gterrors.ValidateNotEmpty("niche", "Niche", niche); err != nil {
		return nil, err
	}
	if err := validateOptionalRegion(opts.Region); err != nil {
		return nil, err
	}
	if err := gterrors.ValidateRange("count", "Count", count, 1, 50); err != nil {
		return nil, err
	}

	params := map[string]any{"niche": niche, "count": count}
	if opts.Region != "" {
		params["geo"] = opts.Region
	}

	data, err := c.get(ctx, EndpointOpportunities, params, map[string]string{
		"niche": "required|string",
		"count": "required|integer",
	})
	if err != nil {
		return nil, err
	}
	return c.reshape(data, "opportunities", []string{"items", "data", "writing_opportunities"}, map[string]any{
		"niche":  data["niche"],
		"region": data["region"],
		"count":  data["count"],
	}), nil
}

// Growth returns the growth pattern of query over timeframe. An empty
// timeframe means "today 12-m".
func (c *Client) Growth(ctx context.Context, query, timeframe string) (map[string]any, error) {
	if timeframe == "" {
		timeframe = DefaultGrowthTimeframe
	}
	if err := gterrors.ValidateNotEmpty("query", "Query", query); err != nil {
		return nil, err
	}
	if err := gterrors.ValidateOneOf("timeframe", "timeframe", timeframe, GrowthTimeframes); err != nil {
		return nil, err
	}

	data, err := c.get(ctx, EndpointGrowth, map[string]any{"q": query, "time": timeframe}, map[string]string{
		"q":    "required|string",
		"time": "required|string",
	})
	if err != nil {
		return nil, err
	}
	out := c.reshape(data, "growth", []string{"items", "data", "timeline", "interest_over_time"}, map[string]any{
		"query":     data["query"],
		"timeframe": data["timeframe"],
	})
	for _, k := range []string{"growth_rate", "trend_direction"} {
		if v, ok := data[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out, nil
}

// Geo returns interest in query broken down by location.
func (c *Client) Geo(ctx context.Context, query string, opts GeoOptions) (map[string]any, error) {
	resolution := strings.ToUpper(opts.Resolution)
	if resolution == "" {
		resolution = DefaultResolution
	}
	timeframe := opts.Timeframe
	if timeframe == "" {
		timeframe = DefaultGrowthTimeframe
	}
	category := opts.Category
	if category == "" {
		category = DefaultCategory
	}
	count := opts.Count
	if count == 0 {
		count = DefaultGeoCount
	}

	if err := gterrors.ValidateNotEmpty("query", "Query", query); err != nil {
		return nil, err
	}
	if err := validateOptionalRegion(opts.Region); err != nil {
		return nil, err
	}
	if err := gterrors.ValidateOneOf("resolution", "resolution", resolution, Resolutions); err != nil {
		return nil, err
	}
	if err := gterrors.ValidateRange("count", "Count", count, 1, 100); err != nil {
		return nil, err
	}

	params := map[string]any{
		"q":          query,
		"resolution": resolution,
		"time":       timeframe,
		"cat":        category,
		"count":      count,
	}
	if opts.Region != "" {
		params["geo"] = opts.Region
	}

	data, err := c.get(ctx, EndpointGeo, params, map[string]string{
		"q":          "required|string",
		"resolution": "in:" + strings.Join(Resolutions, ","),
		"count":      "integer",
	})
	if err != nil {
		return nil, err
	}
	return c.reshape(data, "geo_interest", []string{"items", "data", "interest_by_region", "regions"}, map[string]any{
		"query":      data["query"],
		"region":     data["region"],
		"resolution": data["resolution"],
		"timeframe":  data["timeframe"],
	}), nil
}

// Health reports the API's status.
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	data, err := c.get(ctx, EndpointHealth, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.health(data), nil
}

var queryRules = map[string]string{
	"q":    "required|string",
	"time": "string",
	"cat":  "string",
}

func queryParams(q string, opts QueryOptions) map[string]any {
	timeframe := opts.Timeframe
	if timeframe == "" {
		timeframe = DefaultTimeframe
	}
	category := opts.Category
	if category == "" {
		category = DefaultCategory
	}
	params := map[string]any{"q": q, "time": timeframe, "cat": category}
	if opts.Region != "" {
		params["geo"] = opts.Region
	}
	return params
}

func validateOptionalRegion(region string) error {
	if region == "" {
		return nil
	}
	return gterrors.ValidateRegion(region)
}

// get validates params against rules and sends the request.
func (c *Client) get(ctx context.Context, endpoint string, params map[string]any, rules map[string]string) (map[string]any, error) {
	if err := request.ValidateParams(params, rules); err != nil {
		return nil, err
	}
	return c.Send(ctx, endpoint, params)
}
