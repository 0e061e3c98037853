package search

import (
	"sync"
	"time"
)

// HealthTracker is a single-flag circuit breaker for search engines.
// One failure marks an engine failing for the fail window; a shorter
// retry window governs callers that want to force an early retry.
// There is no half-open probing state. The cost of a wrong retry is
// one wasted network call, so the cooldown expiry is the whole story.
type HealthTracker struct {
	mu          sync.Mutex
	failures    map[string]time.Time
	failWindow  time.Duration
	retryWindow time.Duration
	now         func() time.Time // for testing
}

// NewHealthTracker creates a tracker with the given cooldowns.
// failWindow governs IsFailing, retryWindow governs RetryAllowed.
func NewHealthTracker(failWindow, retryWindow time.Duration) *HealthTracker {
	return &HealthTracker{
		failures:    make(map[string]time.Time),
		failWindow:  failWindow,
		retryWindow: retryWindow,
		now:         time.Now,
	}
}

// MarkFailed records now as the last-failure time for the engine,
// overwriting any prior record.
func (h *HealthTracker) MarkFailed(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures[name] = h.now()
}

// IsFailing reports whether a failure was recorded for the engine within
// the fail window. Expiry is lazy: an entry whose cooldown has elapsed is
// deleted on read and the engine is considered healed.
func (h *HealthTracker) IsFailing(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.failures[name]
	if !ok {
		return false
	}
	if h.now().Sub(t) >= h.failWindow {
		delete(h.failures, name)
		return false
	}
	return true
}

// RetryAllowed reports whether enough time has passed since the engine's
// last failure to permit a forced retry. It never deletes the record,
// the longer fail window still applies to IsFailing.
func (h *HealthTracker) RetryAllowed(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	t, ok := h.failures[name]
	if !ok {
		return true
	}
	return h.now().Sub(t) >= h.retryWindow
}

// FailingEngines returns the names of engines currently inside the fail
// window, pruning expired entries as it goes.
func (h *HealthTracker) FailingEngines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	names := make([]string, 0, len(h.failures))
	for name, t := range h.failures {
		if now.Sub(t) >= h.failWindow {
			delete(h.failures, name)
			continue
		}
		names = append(names, name)
	}
	return names
}

// Reset forgets all recorded failures. Useful for testing.
func (h *HealthTracker) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.failures = make(map[string]time.Time)
}
