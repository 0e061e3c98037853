package search

import (
	"sync"
	"time"
)

// RateLimiter implements a sliding-window rate limiter.
// It tracks timestamps of admitted requests and rejects new ones
// when the count within the window would exceed the limit.
// A denied request consumes no quota.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
	now    func() time.Time // for testing
}

// NewRateLimiter creates a rate limiter that admits limit requests per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// TryAdmit returns true if a request is admitted under the rate limit, and records it.
// Returns false if the limit has been reached within the current window.
func (r *RateLimiter) TryAdmit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.trim(now)

	if len(r.stamps) >= r.limit {
		return false
	}

	r.stamps = append(r.stamps, now)
	return true
}

// Remaining reports how many requests the current window still admits.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.trim(r.now())
	if n := r.limit - len(r.stamps); n > 0 {
		return n
	}
	return 0
}

// trim drops stamps that have aged out of the window. Caller holds mu.
// A stamp exactly window old no longer counts.
func (r *RateLimiter) trim(now time.Time) {
	cutoff := now.Add(-r.window)
	n := 0
	for _, t := range r.stamps {
		if t.After(cutoff) {
			r.stamps[n] = t
			n++
		}
	}
	r.stamps = r.stamps[:n]
}

// Reset clears all recorded requests. Useful for testing.
func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stamps = r.stamps[:0]
}
