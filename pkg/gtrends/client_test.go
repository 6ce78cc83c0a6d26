package gtrends

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gtrends/gtrends-go/internal/apitest"
	"github.com/gtrends/gtrends-go/pkg/cache"
	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
	"github.com/gtrends/gtrends-go/pkg/observability"
	"github.com/gtrends/gtrends-go/pkg/transport"
)

func noSleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func newClient(t *testing.T, srv *apitest.Server, overrides map[string]any, opts ...Option) *Client {
	t.Helper()
	values := map[string]any{"base_uri": srv.BaseURI()}
	for k, v := range overrides {
		values[k] = v
	}
	store, err := config.New(values)
	require.NoError(t, err)

	opts = append([]Option{WithTransportOptions(transport.WithSleeper(noSleep))}, opts...)
	c, err := New(store, opts...)
	require.NoError(t, err)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestSendReturnsDecodedBody(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{"items": []any{"go"}}))
	c := newClient(t, srv, nil)

	data, err := c.Send(context.Background(), "trending", map[string]any{"region": "US"})

	require.NoError(t, err)
	assert.Equal(t, []any{"go"}, data["items"])
	assert.Equal(t, "US", srv.Last().Query.Get("region"))
}

func TestSendRetriesUntilSuccess(t *testing.T) {
	// Given three 503 answers followed by a 200
	srv := apitest.New(t)
	srv.Script("trending",
		apitest.Status(503), apitest.Status(503), apitest.Status(503),
		apitest.JSON(200, map[string]any{"ok": true}))
	c := newClient(t, srv, map[string]any{"retry.max_attempts": 3})

	// When the call is made
	data, err := c.Send(context.Background(), "trending", nil)

	// Then four attempts are made and the 200 body is returned
	require.NoError(t, err)
	assert.Equal(t, true, data["ok"])
	assert.Equal(t, 4, srv.Hits("trending"))
}

func TestSendExhaustedServerErrorIsAPIError(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(503, map[string]any{"error": "overloaded"}))
	c := newClient(t, srv, map[string]any{"retry.max_attempts": 2})

	_, err := c.Send(context.Background(), "trending", nil)

	var ae *gterrors.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 503, ae.StatusCode)
	assert.Equal(t, "overloaded", ae.Message)
	var ne *gterrors.NetworkError
	assert.False(t, errors.As(err, &ne))
	assert.Equal(t, 3, srv.Hits("trending"))
}

func TestSendNotFoundIsNeverRetried(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, map[string]any{"retry.max_attempts": 10})

	_, err := c.Send(context.Background(), "missing", nil)

	var ae *gterrors.APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 404, ae.StatusCode)
	assert.True(t, errors.Is(err, gterrors.ErrNotFound))
	assert.Equal(t, 1, srv.Hits("missing"))
}

func TestSendConnectionFailureIsNetworkError(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.Drop())
	c := newClient(t, srv, map[string]any{"retry.max_attempts": 1})

	_, err := c.Send(context.Background(), "trending", nil)

	var ne *gterrors.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "GET", ne.Method)
	assert.Contains(t, ne.URL, "/api/trending")
	assert.Equal(t, 2, srv.Hits("trending"))
	assert.True(t, gterrors.IsRetryable(err))
}

func TestConfigChangeRebuildsTransport(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.Status(500))
	c := newClient(t, srv, map[string]any{"retry.max_attempts": 2})

	_, err := c.Send(context.Background(), "trending", nil)
	require.Error(t, err)
	require.Equal(t, 3, srv.Hits("trending"))

	require.NoError(t, c.Set("retry.max_attempts", 0))
	_, err = c.Send(context.Background(), "trending", nil)
	require.Error(t, err)
	assert.Equal(t, 4, srv.Hits("trending"), "retries disabled after Set")
}

func TestConfigChangeThroughLoadAndStore(t *testing.T) {
	srv := apitest.New(t)
	other := apitest.New(t)
	c := newClient(t, srv, nil)

	_, err := c.Health(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.Load(map[string]any{"base_uri": other.BaseURI()}))
	_, err = c.Health(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, srv.Hits("health"))
	assert.Equal(t, 1, other.Hits("health"))
	assert.Same(t, c.Config(), c.store)
}

func TestInvalidSetLeavesClientUsable(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, nil)

	err := c.Set("retry.max_attempts", 11)

	var ce *gterrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "retry.max_attempts", ce.Key)
	assert.Equal(t, "Value <= 10", ce.Expected)
	assert.Equal(t, 3, c.Config().Get("retry.max_attempts", nil))

	_, err = c.Health(context.Background())
	assert.NoError(t, err)
}

func TestDryRunPerformsNoIO(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, nil)
	require.NoError(t, c.Set("dry_run", true))

	_, err := c.Send(context.Background(), "trending", nil)

	var ne *gterrors.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, "HTTP requests are disabled in dry-run mode", ne.Message)
	assert.Empty(t, srv.Requests())
}

func TestPostSendsJSONBody(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("reports", apitest.JSON(201, map[string]any{"id": "r1"}))
	c := newClient(t, srv, nil)

	data, err := c.Post(context.Background(), "reports", map[string]any{"topics": []string{"go"}})

	require.NoError(t, err)
	assert.Equal(t, "r1", data["id"])
	last := srv.Last()
	assert.Equal(t, "POST", last.Method)
	assert.JSONEq(t, `{"topics":["go"]}`, string(last.Body))
	assert.Equal(t, "application/json", last.Header.Get("Content-Type"))
}

func TestPostEncodingFailureSkipsTransport(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, nil)

	_, err := c.Post(context.Background(), "reports", map[string]any{"bad": make(chan int)})

	var ve *gterrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, srv.Requests())
}

func TestDoUsesPreparedDescriptor(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("geo", apitest.JSON(200, map[string]any{"regions": []any{}}))
	c := newClient(t, srv, map[string]any{"api_key": "k-1"})

	d := c.Builder().CreateGetRequest("geo", map[string]any{"q": "go"}, map[string]string{"X-Trace": "t1"})

	_, err := c.Do(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, "t1", srv.Last().Header.Get("X-Trace"))
	assert.Equal(t, "k-1", srv.Last().Header.Get("X-API-Key"))
}

func TestContextCancellationAbortsCall(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.Response{Status: 200, Delay: time.Second})
	c := newClient(t, srv, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Send(ctx, "trending", nil)

	var ne *gterrors.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// cacheCounter records cache hook events.
type cacheCounter struct {
	mu                sync.Mutex
	hits, misses, set int
}

func (c *cacheCounter) OnCacheHit(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits++
}

func (c *cacheCounter) OnCacheMiss(context.Context, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.misses++
}

func (c *cacheCounter) OnCacheSet(context.Context, string, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set++
}

func TestResponseCache(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{"items": []any{"go"}}))
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	counter := &cacheCounter{}
	c := newClient(t, srv, map[string]any{"cache.enabled": true},
		WithCache(fc), WithHooks(observability.Hooks{Cache: counter}))

	first, err := c.Send(context.Background(), "trending", map[string]any{"limit": 5})
	require.NoError(t, err)
	second, err := c.Send(context.Background(), "trending", map[string]any{"limit": 5})
	require.NoError(t, err)
	_, err = c.Send(context.Background(), "trending", map[string]any{"limit": 6})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, srv.Hits("trending"))
	assert.Equal(t, 1, counter.hits)
	assert.Equal(t, 2, counter.misses)
	assert.Equal(t, 2, counter.set)
}

func TestResponseCacheScopedByAPIKey(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{"items": []any{}}))
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := newClient(t, srv, map[string]any{"cache.enabled": true, "api_key": "a"}, WithCache(fc))

	_, err = c.Send(context.Background(), "trending", nil)
	require.NoError(t, err)
	require.NoError(t, c.Set("api_key", "b"))
	_, err = c.Send(context.Background(), "trending", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, srv.Hits("trending"))
}

func TestResponseCacheSkipsFailures(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(400, map[string]any{"error": "bad"}), apitest.JSON(200, map[string]any{}))
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := newClient(t, srv, map[string]any{"cache.enabled": true}, WithCache(fc))

	_, err = c.Send(context.Background(), "trending", nil)
	require.Error(t, err)
	_, err = c.Send(context.Background(), "trending", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, srv.Hits("trending"))
}

func TestResponseCacheDisabledByDefault(t *testing.T) {
	srv := apitest.New(t)
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := newClient(t, srv, nil, WithCache(fc))

	for range 2 {
		_, err := c.Health(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 2, srv.Hits("health"))
}

func TestResponseCacheIgnoresCorruptEntries(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{"n": 1}))
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	c := newClient(t, srv, map[string]any{"cache.enabled": true}, WithCache(fc))

	d := c.Builder().CreateGetRequest("trending", nil, nil)
	key := cache.NewScopedKeyer(nil, cache.APIKeyScope("")).ResponseKey(d.Method(), d.URL())
	require.NoError(t, fc.Set(context.Background(), key, []byte("{"), time.Hour))

	data, err := c.Send(context.Background(), "trending", nil)
	require.NoError(t, err)
	assert.Equal(t, 1.0, data["n"])
	assert.Equal(t, 1, srv.Hits("trending"))

	raw, ok, err := fc.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	var cached map[string]any
	require.NoError(t, json.Unmarshal(raw, &cached))
	assert.Equal(t, 1.0, cached["n"])
}

func TestOwnedCacheOpenedFromSettings(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{"items": []any{}}))
	c := newClient(t, srv, map[string]any{
		"cache.enabled": true,
		"cache.driver":  "file",
		"cache.dir":     t.TempDir(),
	})

	for range 3 {
		_, err := c.Send(context.Background(), "trending", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, srv.Hits("trending"))

	var ce *gterrors.ConfigurationError
	require.ErrorAs(t, c.Set("cache.driver", "memcached"), &ce)
	assert.Equal(t, "file, redis, mongo or null", ce.Expected)
	_, err := c.Send(context.Background(), "trending", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, srv.Hits("trending"))
}

// unreachableRedis is an address nothing listens on.
const unreachableRedis = "127.0.0.1:1"

func TestDryRunNeverOpensCache(t *testing.T) {
	srv := apitest.New(t)
	c := newClient(t, srv, map[string]any{
		"dry_run":          true,
		"cache.enabled":    true,
		"cache.driver":     "redis",
		"cache.redis_addr": unreachableRedis,
	})

	_, err := c.Send(context.Background(), "trending", nil)

	var ne *gterrors.NetworkError
	require.ErrorAs(t, err, &ne)
	assert.Equal(t, 0, ne.Attempts)
	assert.Contains(t, ne.Message, "dry-run")
	assert.Empty(t, srv.Requests())
}

func TestUnreachableCacheFallsBackToUncached(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{"items": []any{}}))
	c := newClient(t, srv, map[string]any{
		"cache.enabled":    true,
		"cache.driver":     "redis",
		"cache.redis_addr": unreachableRedis,
	})

	for range 2 {
		_, err := c.Send(context.Background(), "trending", nil)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, srv.Hits("trending"))
}

func TestUnusableCacheDirIsConfigurationError(t *testing.T) {
	srv := apitest.New(t)
	srv.Script("trending", apitest.JSON(200, map[string]any{}))
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
	c := newClient(t, srv, map[string]any{"cache.enabled": true, "cache.dir": blocker})

	_, err := c.Send(context.Background(), "trending", nil)

	var ce *gterrors.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cache.dir", ce.Key)
	assert.Equal(t, gterrors.ErrCodeConfiguration, gterrors.GetCode(err))
	assert.Empty(t, srv.Requests())
}
