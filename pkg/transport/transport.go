// Package transport sends request descriptors over HTTP with retries.
//
// A [Transport] owns the retry state machine:
//
//	ATTEMPT → SUCCESS
//	        → RETRYABLE_FAILURE → WAIT → ATTEMPT
//	        → TERMINAL_FAILURE
//
// Connection-level errors and 5xx responses are retried while the retry
// budget lasts; every other status is returned as-is for classification.
// When the budget runs out, a final 5xx envelope is returned normally and a
// final connection error becomes an *errors.NetworkError.
package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/gtrends/gtrends-go/pkg/config"
	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
	"github.com/gtrends/gtrends-go/pkg/httputil"
	"github.com/gtrends/gtrends-go/pkg/observability"
	"github.com/gtrends/gtrends-go/pkg/request"
)

// Envelope is the raw outcome of one HTTP attempt.
type Envelope struct {
	StatusCode int
	Reason     string // reason phrase, e.g. "Service Unavailable"
	Proto      string // e.g. "HTTP/1.1"
	Header     http.Header
	Body       []byte
}

// Result is delivered by [Transport.SendAsync].
type Result struct {
	Envelope *Envelope
	Err      error
}

// Transport sends descriptors, retrying transient failures.
// It is safe for concurrent use.
type Transport struct {
	client  *http.Client
	policy  httputil.Policy
	limiter *rate.Limiter
	logger  *log.Logger
	hooks   observability.HTTPHooks
	sleep   func(ctx context.Context, d time.Duration) error

	dryRun bool
	debug  bool
	apiKey string
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger used for debug and retry records.
func WithLogger(l *log.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithHooks sets the HTTP observability hooks.
func WithHooks(h observability.HTTPHooks) Option {
	return func(t *Transport) {
		if h != nil {
			t.hooks = h
		}
	}
}

// WithHTTPClient replaces the HTTP client built from the settings. Timeouts
// and TLS options then come from c.
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		if c != nil {
			t.client = c
		}
	}
}

// WithSleeper replaces the backoff wait, typically to make tests instant.
func WithSleeper(f func(ctx context.Context, d time.Duration) error) Option {
	return func(t *Transport) {
		if f != nil {
			t.sleep = f
		}
	}
}

// WithJitter replaces the jitter source of the retry policy.
func WithJitter(f func(ceiling time.Duration) time.Duration) Option {
	return func(t *Transport) { t.policy.Jitter = f }
}

// WithRateLimiter paces attempts through l, overriding rate_limit settings.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(t *Transport) { t.limiter = l }
}

// New creates a transport from a configuration snapshot.
func New(s config.Settings, opts ...Option) *Transport {
	t := &Transport{
		client: newHTTPClient(s),
		policy: httputil.NewPolicy(s.Retry),
		logger: log.New(io.Discard),
		hooks:  observability.NoopHTTPHooks{},
		sleep:  httputil.Wait,
		dryRun: s.DryRun,
		debug:  s.Debug,
		apiKey: s.APIKey,
	}
	if s.RateLimit.PerSecond > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(s.RateLimit.PerSecond), max(s.RateLimit.Burst, 1))
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// newHTTPClient applies the per-attempt timeout, the connect timeout and
// the TLS verification switch.
func newHTTPClient(s config.Settings) *http.Client {
	connect := s.ConnectTimeout
	if connect <= 0 {
		connect = s.Timeout
	}
	dialer := &net.Dialer{Timeout: connect, KeepAlive: 30 * time.Second}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.DialContext = dialer.DialContext
	tr.TLSHandshakeTimeout = connect
	if !s.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- opt-in via verify_ssl=false
	}
	return &http.Client{Timeout: s.Timeout, Transport: tr}
}

// Policy returns the retry policy in effect.
func (t *Transport) Policy() httputil.Policy { return t.policy }

// Close releases idle connections.
func (t *Transport) Close() {
	t.client.CloseIdleConnections()
}

// Send performs d, retrying connection errors and 5xx responses. The
// returned envelope may carry any status, including a final 5xx.
func (t *Transport) Send(ctx context.Context, d request.Descriptor) (*Envelope, error) {
	if t.dryRun {
		return nil, gterrors.NewNetwork(d.Method(), d.URL(), nil, "HTTP requests are disabled in dry-run mode")
	}
	if _, err := d.HTTPRequest(ctx); err != nil {
		return nil, gterrors.NewNetwork(d.Method(), d.URL(), err, "Invalid request")
	}

	host, path := endpointOf(d.URL())
	for attempt := 0; ; attempt++ {
		if t.limiter != nil {
			if err := t.limiter.Wait(ctx); err != nil {
				return nil, t.networkError(d, attempt, err)
			}
		}

		env, err := t.do(ctx, d, host, path)
		if ctx.Err() != nil {
			return nil, t.networkError(d, attempt+1, ctx.Err())
		}

		status := 0
		if env != nil {
			status = env.StatusCode
		}
		if !t.policy.ShouldRetry(attempt, status, err) {
			if err != nil {
				return nil, t.networkError(d, attempt+1, err)
			}
			return env, nil
		}

		delay := t.policy.Backoff(attempt)
		t.logger.Info("retrying request",
			"retry_count", attempt+1,
			"uri", t.redactURL(d.URL()),
			"method", d.Method(),
			"status_code", status,
			"error", errString(err),
			"delay", delay)
		t.hooks.OnRetry(ctx, d.Method(), host, path, attempt+1, delay)

		if err := t.sleep(ctx, delay); err != nil {
			return nil, t.networkError(d, attempt+1, err)
		}
	}
}

// SendAsync runs Send in a goroutine. The channel receives exactly one
// result and is then closed.
func (t *Transport) SendAsync(ctx context.Context, d request.Descriptor) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		env, err := t.Send(ctx, d)
		ch <- Result{Envelope: env, Err: err}
	}()
	return ch
}

// do performs a single attempt and reads the whole body.
func (t *Transport) do(ctx context.Context, d request.Descriptor, host, path string) (*Envelope, error) {
	req, err := d.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	t.logRequest(d)
	t.hooks.OnRequest(ctx, d.Method(), host, path)

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		t.hooks.OnError(ctx, d.Method(), host, path, err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.hooks.OnError(ctx, d.Method(), host, path, err)
		return nil, err
	}

	env := &Envelope{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Proto:      resp.Proto,
		Header:     resp.Header.Clone(),
		Body:       body,
	}
	t.hooks.OnResponse(ctx, d.Method(), host, path, env.StatusCode, time.Since(start))
	t.logResponse(d, env)
	return env, nil
}

func (t *Transport) networkError(d request.Descriptor, attempts int, cause error) error {
	u := t.redactURL(d.URL())
	e := gterrors.NewNetwork(d.Method(), u, cause, "Network error while requesting %s", u)
	e.Attempts = attempts
	return e
}

func reasonPhrase(resp *http.Response) string {
	if r, ok := strings.CutPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" "); ok && r != "" {
		return r
	}
	return http.StatusText(resp.StatusCode)
}

func endpointOf(rawURL string) (host, path string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", ""
	}
	return u.Host, u.Path
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
