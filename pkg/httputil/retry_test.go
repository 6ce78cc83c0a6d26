package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestShouldRetry(t *testing.T) {
	p := Policy{MaxAttempts: 3}
	connErr := errors.New("connection refused")

	tests := []struct {
		name    string
		attempt int
		status  int
		err     error
		want    bool
	}{
		{"server error", 0, 500, nil, true},
		{"bad gateway", 2, 502, nil, true},
		{"connection error", 1, 0, connErr, true},
		{"success", 0, 200, nil, false},
		{"client error", 0, 404, nil, false},
		{"rate limited", 0, 429, nil, false},
		{"budget exhausted", 3, 503, nil, false},
		{"budget exhausted on error", 3, 0, connErr, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ShouldRetry(tt.attempt, tt.status, tt.err); got != tt.want {
				t.Errorf("ShouldRetry(%d, %d, %v) = %v, want %v", tt.attempt, tt.status, tt.err, got, tt.want)
			}
		})
	}
}

func TestShouldRetryDisabled(t *testing.T) {
	p := Policy{MaxAttempts: 0}
	if p.ShouldRetry(0, 503, nil) {
		t.Error("MaxAttempts 0 must never retry")
	}
}

func TestBaseBackoff(t *testing.T) {
	p := Policy{BaseDelay: time.Second, Multiplier: 2}

	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	for n, w := range want {
		if got := p.BaseBackoff(n); got != w {
			t.Errorf("BaseBackoff(%d) = %v, want %v", n, got, w)
		}
	}
}

func TestBaseBackoffClampsMultiplier(t *testing.T) {
	p := Policy{BaseDelay: 100 * time.Millisecond, Multiplier: 0}
	if got := p.BaseBackoff(3); got != 100*time.Millisecond {
		t.Errorf("BaseBackoff(3) = %v, want 100ms", got)
	}
}

func TestBackoffBounds(t *testing.T) {
	p := Policy{BaseDelay: time.Second, Multiplier: 2, JitterCeiling: DefaultJitterCeiling}

	for n := range 4 {
		lo := time.Duration(1<<n) * time.Second
		hi := lo + 500*time.Millisecond
		for range 200 {
			d := p.Backoff(n)
			if d < lo || d >= hi {
				t.Fatalf("Backoff(%d) = %v, want in [%v, %v)", n, d, lo, hi)
			}
		}
	}
}

func TestBackoffUsesInjectedJitter(t *testing.T) {
	p := Policy{
		BaseDelay:     time.Second,
		Multiplier:    2,
		JitterCeiling: DefaultJitterCeiling,
		Jitter:        func(time.Duration) time.Duration { return 123 * time.Millisecond },
	}
	if got := p.Backoff(1); got != 2123*time.Millisecond {
		t.Errorf("Backoff(1) = %v, want 2.123s", got)
	}
}

func TestWait(t *testing.T) {
	start := time.Now()
	if err := Wait(context.Background(), 10*time.Millisecond); err != nil {
		t.Fatalf("Wait error: %v", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Error("Wait returned early")
	}
}

func TestWaitContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Wait(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait error = %v, want context.Canceled", err)
	}
}
