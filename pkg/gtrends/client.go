// Package gtrends is the client for the search-trends API.
//
// A [Client] ties the pipeline together:
//
//	Builder.CreateGetRequest → Transport.Send → response.Process
//
// It owns one configuration [config.Store]. Mutations made through
// [Client.Set], [Client.Load] or directly on the store bump the store's
// revision; the client notices the new revision before the next call and
// rebuilds its request builder, transport and cache from a fresh settings
// snapshot.
//
// Successful GET responses are cached when cache.enabled is set and
// dry_run is not. The backend is opened on the first cacheable call; a
// redis or mongo server that cannot be reached is logged and the revision
// runs uncached. Cache keys cover the method and the full URL and are
// scoped by API key.
//
// Endpoint wrappers such as [Client.Trending] or [Client.Compare] validate
// their arguments before building any request and reshape the decoded
// payload into a stable form.
package gtrends

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/gtrends/gtrends-go/pkg/cache"
	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
	"github.com/gtrends/gtrends-go/pkg/observability"
	"github.com/gtrends/gtrends-go/pkg/request"
	"github.com/gtrends/gtrends-go/pkg/response"
	"github.com/gtrends/gtrends-go/pkg/transport"
)

// cacheKeyType labels response cache events in hooks.
const cacheKeyType = "response"

// Client sends requests to the trends API. It is safe for concurrent use,
// but configuration changes must not overlap in-flight calls.
type Client struct {
	store  *config.Store
	logger *log.Logger
	hooks  observability.Hooks
	now    func() time.Time

	transportOpts []transport.Option
	injectedCache cache.Cache

	mu    sync.Mutex
	state *state
}

// state is everything derived from one store revision.
type state struct {
	revision  uint64
	settings  config.Settings
	builder   *request.Builder
	transport *transport.Transport
	cache     cache.Cache // nil until the first cacheable call
	ownsCache bool
	degraded  bool // backend unreachable, cache is a NullCache
	keyer     cache.Keyer
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger shared by the client and its transport.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHooks sets the observability hooks.
func WithHooks(h observability.Hooks) Option {
	return func(c *Client) { c.hooks = h.WithDefaults() }
}

// WithCache uses cc instead of opening the backend named in the cache
// settings. The client never closes an injected cache. Responses are only
// cached while cache.enabled is true.
func WithCache(cc cache.Cache) Option {
	return func(c *Client) { c.injectedCache = cc }
}

// WithTransportOptions appends options applied to every transport the
// client builds.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(c *Client) { c.transportOpts = append(c.transportOpts, opts...) }
}

// New creates a client over store. A nil store uses [config.Default].
// The store is validated once here; later mutations are validated by the
// store itself.
func New(store *config.Store, opts ...Option) (*Client, error) {
	if store == nil {
		store = config.Default()
	}
	if err := store.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		store:  store,
		logger: log.New(io.Discard),
		hooks:  observability.Hooks{}.WithDefaults(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Config returns the client's configuration store.
func (c *Client) Config() *config.Store { return c.store }

// Set changes one configuration value. The transport is rebuilt before
// the next call.
func (c *Client) Set(key string, value any) error {
	return c.store.Set(key, value)
}

// Load deep-merges partial into the configuration.
func (c *Client) Load(partial map[string]any) error {
	return c.store.Load(partial)
}

// Close releases the transport and any cache the client opened itself.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == nil {
		return nil
	}
	st := c.state
	c.state = nil
	st.transport.Close()
	if st.ownsCache && st.cache != nil {
		return st.cache.Close()
	}
	return nil
}

// Send issues a GET to endpoint with params as the query string and
// returns the decoded JSON object.
func (c *Client) Send(ctx context.Context, endpoint string, params map[string]any) (map[string]any, error) {
	st := c.current()
	return c.execute(ctx, st, st.builder.CreateGetRequest(endpoint, params, nil))
}

// Post issues a POST to endpoint with data encoded as JSON.
func (c *Client) Post(ctx context.Context, endpoint string, data any) (map[string]any, error) {
	st := c.current()
	d, err := st.builder.CreatePostRequest(endpoint, data, nil)
	if err != nil {
		return nil, err
	}
	return c.execute(ctx, st, d)
}

// Do sends a prepared descriptor through the transport and classifier.
func (c *Client) Do(ctx context.Context, d request.Descriptor) (map[string]any, error) {
	return c.execute(ctx, c.current(), d)
}

// Builder returns the request builder for the current configuration.
func (c *Client) Builder() *request.Builder {
	return c.current().builder
}

func (c *Client) execute(ctx context.Context, st *state, d request.Descriptor) (map[string]any, error) {
	cacheable := st.settings.Cache.Enabled && !st.settings.DryRun && d.Method() == http.MethodGet
	var (
		cc  cache.Cache
		key string
	)
	if cacheable {
		var err error
		if cc, err = c.cacheFor(ctx, st); err != nil {
			return nil, err
		}
		key = st.keyer.ResponseKey(d.Method(), d.URL())
		if data, ok := c.cached(ctx, cc, key); ok {
			return data, nil
		}
	}

	env, err := st.transport.Send(ctx, d)
	if err != nil {
		return nil, err
	}
	data, err := response.Process(env)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.remember(ctx, cc, st.settings.Cache.TTL, key, data)
	}
	return data, nil
}

// cacheFor returns the backend of st, opening it on first use. Only
// connection failures degrade to a NullCache; configuration problems are
// returned.
func (c *Client) cacheFor(ctx context.Context, st *state) (cache.Cache, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st.cache != nil {
		return st.cache, nil
	}
	if st != c.state {
		// Superseded by a newer revision while this call was running.
		return cache.NewNullCache(), nil
	}

	cc, err := cache.Open(ctx, st.settings.Cache)
	if err != nil {
		var ne *gterrors.NetworkError
		if !errors.As(err, &ne) {
			return nil, err
		}
		c.logger.Warn("response cache unavailable, continuing without it",
			"driver", st.settings.Cache.Driver, "error", err)
		cc, st.degraded = cache.NewNullCache(), true
	}
	st.cache, st.ownsCache = cc, true
	return cc, nil
}

func (c *Client) cached(ctx context.Context, cc cache.Cache, key string) (map[string]any, bool) {
	raw, ok, err := cc.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "error", err)
	}
	if !ok {
		c.hooks.Cache.OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		c.logger.Warn("discarding unreadable cache entry", "error", err)
		_ = cc.Delete(ctx, key)
		c.hooks.Cache.OnCacheMiss(ctx, cacheKeyType)
		return nil, false
	}
	c.hooks.Cache.OnCacheHit(ctx, cacheKeyType)
	return data, true
}

func (c *Client) remember(ctx context.Context, cc cache.Cache, ttl time.Duration, key string, data map[string]any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	if err := cc.Set(ctx, key, raw, ttl); err != nil {
		c.logger.Warn("cache write failed", "error", err)
		return
	}
	c.hooks.Cache.OnCacheSet(ctx, cacheKeyType, len(raw))
}

// current returns the components for the store's present revision,
// rebuilding them when the store changed since the last call. An owned
// cache carries over when the cache settings did not change.
func (c *Client) current() *state {
	c.mu.Lock()
	defer c.mu.Unlock()

	rev := c.store.Revision()
	if c.state != nil && c.state.revision == rev {
		return c.state
	}

	s := c.store.Settings()
	next := &state{
		revision: rev,
		settings: s,
		builder:  request.NewBuilder(s),
		keyer:    cache.NewScopedKeyer(cache.NewDefaultKeyer(), cache.APIKeyScope(s.APIKey)),
	}

	opts := append([]transport.Option{
		transport.WithLogger(c.logger),
		transport.WithHooks(c.hooks.HTTP),
	}, c.transportOpts...)
	next.transport = transport.New(s, opts...)

	prev := c.state
	switch {
	case c.injectedCache != nil:
		next.cache = c.injectedCache
	case prev != nil && prev.ownsCache && prev.cache != nil && !prev.degraded && prev.settings.Cache == s.Cache:
		next.cache, next.ownsCache = prev.cache, true
		prev.ownsCache = false
	}

	if prev != nil {
		prev.transport.Close()
		if prev.ownsCache && prev.cache != nil {
			_ = prev.cache.Close()
		}
	}
	c.state = next
	c.logger.Debug("client configured",
		"revision", rev,
		"base_uri", s.BaseURI,
		"max_attempts", s.Retry.MaxAttempts,
		"cache", s.Cache.Enabled,
		"dry_run", s.DryRun)
	return next
}
