// Package shield protects the HTTP surface from abusive clients with an
// adaptive rate limiter, a progressive slow-down throttle, a burst detector
// and a temporary blacklist, all sharing bounded, time-expiring in-memory
// state. State is per-process: a deployment running several workers holds an
// independent copy in each, so abuse spread across workers is undercounted.
package shield

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Rejection bodies are a wire contract shared with the dashboard frontend;
// do not reword them.
const (
	msgBlacklisted = "Access temporarily blocked due to suspicious activity"
	msgBurst       = "Rate limit exceeded due to burst traffic"
	msgSuspicious  = "Access denied due to suspicious activity"
	msgRateLimited = "Too many requests, please try again later."
)

// Config carries every threshold of the gate sequence. The defaults mirror
// the historical constants; none of them carries demonstrated tuning
// rationale, which is exactly why they are all overridable.
type Config struct {
	// Hard rejection tier.
	RateWindow      time.Duration
	RateMax         int
	RateSuspicious  int
	RateAdmin       int
	SuspicionCutoff int

	// Burst detection.
	BurstWindow time.Duration
	MaxBurst    int

	// Temporary bans. Burst-detected and suspicion-detected bans share the
	// one TTL.
	BlacklistTTL time.Duration

	// Suspicion scoring.
	SuspicionTTL time.Duration
	BanThreshold int

	// Soft throttle.
	SpeedWindow        time.Duration
	SpeedBaseThreshold int
	SpeedMinThreshold  int
	SpeedMaxDelay      time.Duration

	// Capacity bound per store, protecting memory against adversarial key
	// cardinality (spoofed addresses, rotated user agents).
	MaxTrackedClients int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		RateWindow:         time.Minute,
		RateMax:            60,
		RateSuspicious:     20,
		RateAdmin:          300,
		SuspicionCutoff:    5,
		BurstWindow:        time.Second,
		MaxBurst:           20,
		BlacklistTTL:       time.Hour,
		SuspicionTTL:       15 * time.Minute,
		BanThreshold:       10,
		SpeedWindow:        15 * time.Minute,
		SpeedBaseThreshold: 100,
		SpeedMinThreshold:  30,
		SpeedMaxDelay:      2 * time.Second,
		MaxTrackedClients:  10000,
	}
}

// Shield owns the gate sequence and its stores. Construct one per process
// and inject it into the router; nothing here is package-level state.
type Shield struct {
	cfg       Config
	logger    *logrus.Logger
	metrics   *Metrics
	blacklist *Blacklist
	burst     *BurstDetector
	scorer    *SuspicionScorer
	rate      *RateLimiter
	speed     *SpeedLimiter

	// sleep is swapped out by tests.
	sleep func(time.Duration)
}

// New creates a Shield from cfg. metrics may be nil to run without
// collectors (tests).
func New(cfg Config, logger *logrus.Logger, metrics *Metrics) *Shield {
	return &Shield{
		cfg:       cfg,
		logger:    logger,
		metrics:   metrics,
		blacklist: NewBlacklist(cfg.MaxTrackedClients, cfg.BlacklistTTL),
		burst:     NewBurstDetector(cfg.MaxTrackedClients, cfg.BurstWindow, cfg.MaxBurst),
		scorer:    NewSuspicionScorer(cfg.MaxTrackedClients, cfg.SuspicionTTL),
		rate: NewRateLimiter(RateLimiterConfig{
			MaxEntries:      cfg.MaxTrackedClients,
			Window:          cfg.RateWindow,
			DefaultMax:      cfg.RateMax,
			SuspiciousMax:   cfg.RateSuspicious,
			AdminMax:        cfg.RateAdmin,
			SuspicionCutoff: cfg.SuspicionCutoff,
		}),
		speed: NewSpeedLimiter(SpeedLimiterConfig{
			MaxEntries:    cfg.MaxTrackedClients,
			Window:        cfg.SpeedWindow,
			BaseThreshold: cfg.SpeedBaseThreshold,
			MinThreshold:  cfg.SpeedMinThreshold,
			MaxDelay:      cfg.SpeedMaxDelay,
		}),
		sleep: time.Sleep,
	}
}

// Middleware returns the gin handler running the gate sequence: resolve
// identity, blacklist, burst, pattern/suspicion, rate limit, speed limit.
// Policy rejections are structured 403/429 responses, never errors; on any
// internal inconsistency the gate fails open rather than taking the service
// down with it.
func (s *Shield) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		isAdmin := c.GetBool("is_admin")
		key := ResolveIdentity(c.Request, userID)

		s.metrics.recordEvaluated()

		if s.blacklist.IsBanned(key) {
			s.reject(c, key, http.StatusForbidden, msgBlacklisted, ReasonBlacklisted)
			return
		}

		if s.burst.RecordAndCheck(key, time.Now()) {
			s.blacklist.Ban(key)
			s.reject(c, key, http.StatusTooManyRequests, msgBurst, ReasonBurst)
			return
		}

		// The score is evaluated once here and threaded through the
		// limiter calls; re-reading it downstream would let a request
		// react to its own bump twice.
		var score int
		if Suspicious(c.Request) {
			score = s.scorer.Bump(key)
			if score > s.cfg.BanThreshold {
				s.blacklist.Ban(key)
				s.reject(c, key, http.StatusForbidden, msgSuspicious, ReasonSuspicion)
				return
			}
		} else {
			score = s.scorer.Score(key)
		}

		// Exempt traffic is filtered before any counter increments.
		if !isAdmin && !isLoopback(clientAddress(c.Request)) {
			if !s.rate.Allow(key, isAdmin, score) {
				retryAfter := s.rate.RetryAfter(key)
				seconds := int(retryAfter.Round(time.Second).Seconds())
				s.metrics.recordBlocked(ReasonRateLimit)
				s.logDenied(key, c, ReasonRateLimit)
				c.Header("Retry-After", strconv.Itoa(seconds))
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
					"status":     http.StatusTooManyRequests,
					"error":      msgRateLimited,
					"retryAfter": seconds,
				})
				return
			}

			if delay := s.speed.Delay(key, score); delay > 0 {
				s.metrics.recordDelayed(delay)
				// Suspends only this request's goroutine; concurrent
				// requests keep flowing.
				s.sleep(delay)
			}
		}

		c.Next()
	}
}

func (s *Shield) reject(c *gin.Context, key string, status int, msg, reason string) {
	s.metrics.recordBlocked(reason)
	s.logDenied(key, c, reason)
	c.AbortWithStatusJSON(status, gin.H{"status": status, "error": msg})
}

func (s *Shield) logDenied(key string, c *gin.Context, reason string) {
	if s.logger == nil {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"event_type": "request_denied",
		"reason":     reason,
		"key":        key,
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}).Warn("Shield denied request")
}

// Stats is a point-in-time snapshot of store occupancy for the admin
// surface.
type Stats struct {
	Blacklisted     int `json:"blacklisted"`
	BurstWindows    int `json:"burst_windows"`
	SuspicionScores int `json:"suspicion_scores"`
	RateCounters    int `json:"rate_counters"`
	SpeedCounters   int `json:"speed_counters"`
}

// Stats returns current store sizes, counting entries not yet swept.
func (s *Shield) Stats() Stats {
	return Stats{
		Blacklisted:     s.blacklist.Len(),
		BurstWindows:    s.burst.Len(),
		SuspicionScores: s.scorer.Len(),
		RateCounters:    s.rate.Len(),
		SpeedCounters:   s.speed.Len(),
	}
}

// PurgeExpired sweeps expired entries from every store and returns the
// total removed. Wired to the periodic maintenance job; reads never depend
// on it.
func (s *Shield) PurgeExpired() int {
	return s.blacklist.PurgeExpired() +
		s.burst.PurgeExpired() +
		s.scorer.PurgeExpired() +
		s.rate.PurgeExpired() +
		s.speed.PurgeExpired()
}
