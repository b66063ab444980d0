package shield

import (
	"math"
	"sync"
	"time"
)

// SpeedLimiter is the soft throttle: past a per-window request count it
// answers with a growing synthetic delay instead of a rejection. The
// threshold tightens as the suspicion score rises, the delay grows
// geometrically with the overshoot and is capped.
type SpeedLimiter struct {
	mu       sync.Mutex
	counters *Store[int]
	window   time.Duration

	baseThreshold int
	minThreshold  int
	// rampStart is the count at which the geometric ramp is anchored;
	// counts between a tightened threshold and the anchor produce
	// sub-millisecond delays, which is the intended gentle onset.
	rampStart int
	maxDelay  time.Duration
}

// SpeedLimiterConfig carries the throttle thresholds.
type SpeedLimiterConfig struct {
	MaxEntries    int
	Window        time.Duration
	BaseThreshold int
	MinThreshold  int
	MaxDelay      time.Duration
}

// NewSpeedLimiter creates a soft throttle over a fixed counting window.
func NewSpeedLimiter(cfg SpeedLimiterConfig) *SpeedLimiter {
	return &SpeedLimiter{
		counters:      NewStore[int](cfg.MaxEntries, cfg.Window),
		window:        cfg.Window,
		baseThreshold: cfg.BaseThreshold,
		minThreshold:  cfg.MinThreshold,
		rampStart:     cfg.BaseThreshold,
		maxDelay:      cfg.MaxDelay,
	}
}

// Delay increments the identity's window counter and returns the synthetic
// delay the request should suffer before proceeding. Zero while the count
// is within the adaptive threshold max(minThreshold, base - score*10).
func (sl *SpeedLimiter) Delay(key string, suspicionScore int) time.Duration {
	sl.mu.Lock()
	count, ok := sl.counters.Get(key)
	count++
	if !ok || !sl.counters.Replace(key, count) {
		sl.counters.Set(key, count)
	}
	sl.mu.Unlock()

	threshold := sl.baseThreshold - suspicionScore*10
	if threshold < sl.minThreshold {
		threshold = sl.minThreshold
	}
	if count <= threshold {
		return 0
	}

	ms := math.Pow(1.5, float64(count-sl.rampStart))
	delay := time.Duration(ms * float64(time.Millisecond))
	if delay > sl.maxDelay {
		delay = sl.maxDelay
	}
	return delay
}

// Len returns the number of identities with a live window counter.
func (sl *SpeedLimiter) Len() int { return sl.counters.Len() }

// PurgeExpired drops finished windows and returns how many were removed.
func (sl *SpeedLimiter) PurgeExpired() int { return sl.counters.PurgeExpired() }
