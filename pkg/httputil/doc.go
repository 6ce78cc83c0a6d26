// Package httputil provides the retry policy shared by the trends transport.
//
// # Retry
//
// [Policy] is a pure description of the retry loop:
//
//   - [Policy.ShouldRetry] retries connection-level errors and 5xx
//     responses while fewer than MaxAttempts retries were made
//   - [Policy.Backoff] waits BaseDelay * Multiplier^n plus a random jitter
//     below JitterCeiling (500ms by default)
//   - [Wait] sleeps while honoring context cancellation
//
// Usage:
//
//	p := httputil.NewPolicy(store.Settings().Retry)
//	for attempt := 0; ; attempt++ {
//	    status, err := try()
//	    if !p.ShouldRetry(attempt, status, err) {
//	        break
//	    }
//	    if err := httputil.Wait(ctx, p.Backoff(attempt)); err != nil {
//	        return err
//	    }
//	}
//
// With the defaults (3 retries, 1s base delay, multiplier 2) a request is
// tried at most four times, waiting roughly 1s, 2s and 4s in between.
package httputil
