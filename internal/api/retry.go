package api

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryPolicy configures the delay between retried attempts.
type RetryPolicy struct {
	// BaseDelay is the wait after the first failed attempt.
	BaseDelay time.Duration
	// MaxDelay caps every computed delay, including Retry-After hints.
	MaxDelay time.Duration
	// Multiplier is the growth factor per attempt. Values below 1 are treated as 1.
	Multiplier float64
}

// DefaultRetryPolicy returns the default backoff: 1s, 2s, 4s ... capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		BaseDelay:  time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

// Delay returns the wait after the given 0-based attempt. It never decreases
// as attempt grows.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	delay := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

// DelayFor returns the delay after attempt, raised to the server's
// Retry-After hint when that is larger. The result stays within MaxDelay.
func (p RetryPolicy) DelayFor(attempt int, resp *Response) time.Duration {
	delay := p.Delay(attempt)
	if hint := retryAfter(resp); hint > delay {
		delay = hint
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return delay
}

// NextDelay returns DelayFor(attempt, resp) raised to prev, the delay used
// before the previous attempt. A long Retry-After hint is never followed by a
// shorter wait.
func (p RetryPolicy) NextDelay(attempt int, resp *Response, prev time.Duration) time.Duration {
	return max(p.DelayFor(attempt, resp), prev)
}

// Wait blocks for d or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context, d time.Duration) error {
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

// retryAfter parses the Retry-After header as seconds or an HTTP-date.
// Returns 0 if the header is absent or unparsable.
func retryAfter(resp *Response) time.Duration {
	if resp == nil || resp.Header == nil {
		return 0
	}
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
