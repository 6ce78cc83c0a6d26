// Package observability provides hooks for metrics and tracing.
//
// This package enables optional instrumentation without tying the client
// to a specific observability backend. Hooks are injected when a client or
// transport is constructed; there is no process-wide registry.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Provide a Prometheus implementation ([PrometheusHooks])
//
// # Usage
//
//	hooks := observability.NewPrometheusHooks(prometheus.DefaultRegisterer)
//	client, err := gtrends.New(store,
//	    gtrends.WithHooks(observability.Hooks{HTTP: hooks, Cache: hooks}))
package observability

import (
	"context"
	"time"
)

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the transport. One OnRequest is emitted
// per attempt, followed by exactly one OnResponse or OnError.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)

	// OnRetry records a scheduled retry. attempt is 1 for the first retry.
	OnRetry(ctx context.Context, method, host, path string, attempt int, delay time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from response cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// Hooks bundles the hook sets handed to a client.
type Hooks struct {
	HTTP  HTTPHooks
	Cache CacheHooks
}

// WithDefaults returns h with nil members replaced by no-op hooks.
func (h Hooks) WithDefaults() Hooks {
	if h.HTTP == nil {
		h.HTTP = NoopHTTPHooks{}
	}
	if h.Cache == nil {
		h.Cache = NoopCacheHooks{}
	}
	return h
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
func (NoopHTTPHooks) OnRetry(context.Context, string, string, string, int, time.Duration)    {}
