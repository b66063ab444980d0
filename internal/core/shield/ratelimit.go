package shield

import (
	"sync"
	"time"
)

// RateLimiter is a fixed-window request counter whose effective maximum
// adapts per call to the caller's role and current suspicion score, so a
// client's ceiling can tighten mid-window as its score rises.
type RateLimiter struct {
	mu       sync.Mutex
	counters *Store[int]
	window   time.Duration

	defaultMax    int
	suspiciousMax int
	adminMax      int
	// suspicionCutoff is the score above which the tightened maximum
	// applies.
	suspicionCutoff int
}

// RateLimiterConfig carries the limiter thresholds.
type RateLimiterConfig struct {
	MaxEntries      int
	Window          time.Duration
	DefaultMax      int
	SuspiciousMax   int
	AdminMax        int
	SuspicionCutoff int
}

// NewRateLimiter creates a fixed-window limiter. The counter TTL is the
// window itself: the first request of a window starts it, later increments
// preserve its expiry.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	return &RateLimiter{
		counters:        NewStore[int](cfg.MaxEntries, cfg.Window),
		window:          cfg.Window,
		defaultMax:      cfg.DefaultMax,
		suspiciousMax:   cfg.SuspiciousMax,
		adminMax:        cfg.AdminMax,
		suspicionCutoff: cfg.SuspicionCutoff,
	}
}

// Allow increments the identity's window counter and reports whether the
// post-increment count is within the effective maximum for this call.
// Exempt traffic (admin sessions, loopback) must be filtered out by the
// caller before invoking Allow, so exempt requests never inflate counters.
func (rl *RateLimiter) Allow(key string, isAdmin bool, suspicionScore int) bool {
	max := rl.defaultMax
	switch {
	case isAdmin:
		max = rl.adminMax
	case suspicionScore > rl.suspicionCutoff:
		max = rl.suspiciousMax
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	count, ok := rl.counters.Get(key)
	count++
	if ok && rl.counters.Replace(key, count) {
		return count <= max
	}
	// New window.
	rl.counters.Set(key, count)
	return count <= max
}

// RetryAfter returns how long the identity's current window has left, the
// earliest point a rejected client could be admitted again. Zero if no
// window is live.
func (rl *RateLimiter) RetryAfter(key string) time.Duration {
	expires, ok := rl.counters.ExpiresAt(key)
	if !ok {
		return 0
	}
	remaining := time.Until(expires)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Len returns the number of identities with a live window counter.
func (rl *RateLimiter) Len() int { return rl.counters.Len() }

// PurgeExpired drops finished windows and returns how many were removed.
func (rl *RateLimiter) PurgeExpired() int { return rl.counters.PurgeExpired() }
