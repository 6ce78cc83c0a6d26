package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusHooks records HTTP and cache events as Prometheus metrics.
// It implements both [HTTPHooks] and [CacheHooks] and is safe for
// concurrent use.
type PrometheusHooks struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	retriesTotal    *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheWrites *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec
}

// NewPrometheusHooks registers the client metrics on reg.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	f := promauto.With(reg)
	return &PrometheusHooks{
		requestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_http_requests_total",
				Help: "Total number of HTTP responses received, per attempt",
			},
			[]string{"method", "path", "status_code"},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gtrends_http_request_duration_seconds",
				Help:    "Duration of single HTTP attempts in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_http_errors_total",
				Help: "Total number of connection-level HTTP failures",
			},
			[]string{"method", "path"},
		),
		retriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_http_retries_total",
				Help: "Total number of scheduled retries",
			},
			[]string{"method", "path"},
		),
		cacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_cache_hits_total",
				Help: "Total number of response cache hits",
			},
			[]string{"key_type"},
		),
		cacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_cache_misses_total",
				Help: "Total number of response cache misses",
			},
			[]string{"key_type"},
		),
		cacheWrites: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_cache_writes_total",
				Help: "Total number of response cache writes",
			},
			[]string{"key_type"},
		),
		cacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gtrends_cache_written_bytes_total",
				Help: "Total number of bytes written to the response cache",
			},
			[]string{"key_type"},
		),
	}
}

func (p *PrometheusHooks) OnRequest(context.Context, string, string, string) {}

func (p *PrometheusHooks) OnResponse(_ context.Context, method, _, path string, statusCode int, d time.Duration) {
	p.requestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	p.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

func (p *PrometheusHooks) OnError(_ context.Context, method, _, path string, _ error) {
	p.errorsTotal.WithLabelValues(method, path).Inc()
}

func (p *PrometheusHooks) OnRetry(_ context.Context, method, _, path string, _ int, _ time.Duration) {
	p.retriesTotal.WithLabelValues(method, path).Inc()
}

func (p *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	p.cacheHits.WithLabelValues(keyType).Inc()
}

func (p *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheMisses.WithLabelValues(keyType).Inc()
}

func (p *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheWrites.WithLabelValues(keyType).Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

var (
	_ HTTPHooks  = (*PrometheusHooks)(nil)
	_ CacheHooks = (*PrometheusHooks)(nil)
)
