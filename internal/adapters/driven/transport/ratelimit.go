package transport

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
const HeaderRetryAfter = "Retry-After"

// RateLimiter combines proactive throttling with server-requested pauses.
type RateLimiter struct {
	mu       sync.Mutex
	bucket   *rate.Limiter // nil when unthrottled
	resumeAt time.Time     // From Retry-After
	now      func() time.Time
	maxPause time.Duration
	fallback time.Duration
}

// NewRateLimiter creates a limiter allowing perSecond downloads per second.
// A non-positive rate disables proactive throttling.
func NewRateLimiter(perSecond float64) *RateLimiter {
	r := &RateLimiter{
		now:      time.Now,
		maxPause: time.Minute,
		fallback: time.Second,
	}
	if perSecond > 0 {
		burst := int(perSecond)
		if burst < 1 {
			burst = 1
		}
		r.bucket = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
	return r
}

// Wait blocks until it's safe to make a request.
func (r *RateLimiter) Wait(ctx context.Context) error {
	// 1. Honour a pause requested by the server
	r.mu.Lock()
	pause := r.resumeAt.Sub(r.now())
	r.mu.Unlock()

	if pause > 0 {
		t := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}

	// 2. Token bucket
	if r.bucket == nil {
		return nil
	}
	return r.bucket.Wait(ctx)
}

// CheckResponse records a pause for throttling responses.
// Returns a RateLimitError if the response asks the client to slow down.
func (r *RateLimiter) CheckResponse(resp *http.Response) error {
	if resp == nil {
		return nil
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return nil
	}

	now := r.now()
	resumeAt := now.Add(r.retryAfter(resp.Header.Get(HeaderRetryAfter), now))

	r.mu.Lock()
	if resumeAt.After(r.resumeAt) {
		r.resumeAt = resumeAt
	}
	r.mu.Unlock()

	return &RateLimitError{StatusCode: resp.StatusCode, ResetAt: resumeAt}
}

func (r *RateLimiter) retryAfter(v string, now time.Time) time.Duration {
	d := r.fallback
	if v != "" {
		if seconds, err := strconv.Atoi(v); err == nil {
			d = time.Duration(seconds) * time.Second
		} else if at, err := http.ParseTime(v); err == nil {
			d = at.Sub(now)
		}
	}
	if d < 0 {
		d = 0
	}
	if d > r.maxPause {
		d = r.maxPause
	}
	return d
}
