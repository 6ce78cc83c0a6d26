package httputil

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/gtrends/gtrends-go/pkg/config"
)

// DefaultJitterCeiling bounds the random delay added to every backoff.
const DefaultJitterCeiling = 500 * time.Millisecond

// Policy decides whether a failed attempt is retried and how long to wait
// before the next one.
type Policy struct {
	// MaxAttempts is the number of retries after the first attempt.
	// Zero disables retrying.
	MaxAttempts int

	// BaseDelay is the backoff before the first retry.
	BaseDelay time.Duration

	// Multiplier scales the delay after each retry. Values below 1 are
	// treated as 1.
	Multiplier float64

	// JitterCeiling is the exclusive upper bound of the random jitter.
	JitterCeiling time.Duration

	// Jitter returns a value in [0, ceiling). Nil uses math/rand/v2.
	Jitter func(ceiling time.Duration) time.Duration
}

// NewPolicy builds a policy from the retry settings with the default
// jitter ceiling.
func NewPolicy(s config.RetrySettings) Policy {
	return Policy{
		MaxAttempts:   s.MaxAttempts,
		BaseDelay:     s.Delay,
		Multiplier:    s.Multiplier,
		JitterCeiling: DefaultJitterCeiling,
	}
}

// ShouldRetry reports whether the attempt that just finished should be
// retried. attempt counts retries already made (0 after the first try).
// Only connection-level errors and 5xx statuses qualify; statusCode is
// ignored when err is non-nil.
func (p Policy) ShouldRetry(attempt, statusCode int, err error) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	return err != nil || statusCode >= 500
}

// BaseBackoff returns the deterministic part of the delay before retry
// number attempt (0-indexed): BaseDelay * Multiplier^attempt.
func (p Policy) BaseBackoff(attempt int) time.Duration {
	mult := max(p.Multiplier, 1)
	return time.Duration(float64(p.BaseDelay) * math.Pow(mult, float64(attempt)))
}

// Backoff returns BaseBackoff plus a uniform jitter in [0, JitterCeiling).
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BaseBackoff(attempt) + p.jitter()
}

func (p Policy) jitter() time.Duration {
	if p.JitterCeiling <= 0 {
		return 0
	}
	if p.Jitter != nil {
		return p.Jitter(p.JitterCeiling)
	}
	return time.Duration(rand.Int64N(int64(p.JitterCeiling)))
}

// Wait blocks for d or until ctx is done, whichever comes first.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
