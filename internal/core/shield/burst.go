package shield

import (
	"sync"
	"time"
)

// BurstDetector keeps a short sliding window of request timestamps per
// identity and flags hammering that a minute-scale rate limiter would
// average away. It only detects; promoting a violator to the blacklist is
// the orchestrator's job, which keeps the detector pure and testable.
type BurstDetector struct {
	mu       sync.Mutex
	windows  *Store[[]time.Time]
	window   time.Duration
	maxBurst int
}

// NewBurstDetector creates a detector flagging identities that exceed
// maxBurst requests within window.
func NewBurstDetector(maxEntries int, window time.Duration, maxBurst int) *BurstDetector {
	return &BurstDetector{
		windows:  NewStore[[]time.Time](maxEntries, window),
		window:   window,
		maxBurst: maxBurst,
	}
}

// RecordAndCheck appends now to the identity's timing window, prunes
// timestamps that fell out of the window, and reports whether the remaining
// count exceeds the burst maximum.
func (d *BurstDetector) RecordAndCheck(key string, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	window, _ := d.windows.Get(key)
	cutoff := now.Add(-d.window)

	kept := window[:0]
	for _, ts := range window {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	kept = append(kept, now)
	d.windows.Set(key, kept)

	return len(kept) > d.maxBurst
}

// Len returns the number of identities with a live timing window.
func (d *BurstDetector) Len() int { return d.windows.Len() }

// PurgeExpired drops idle timing windows and returns how many were removed.
func (d *BurstDetector) PurgeExpired() int { return d.windows.PurgeExpired() }
