package shield

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestEngine wires the shield in front of a trivial handler, with an
// optional context seeder standing in for the auth middleware.
func newTestEngine(s *Shield, seed gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	if seed != nil {
		r.Use(seed)
	}
	r.Use(s.Middleware())
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func cleanGet(target, addr string) *http.Request {
	r := httptest.NewRequest("GET", target, nil)
	r.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64)")
	r.Header.Set("Accept", "text/html")
	r.Header.Set("X-Forwarded-For", addr)
	return r
}

func doRequest(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestShieldBurstThenBlacklist(t *testing.T) {
	s := New(DefaultConfig(), nil, nil)
	s.sleep = func(time.Duration) {}
	r := newTestEngine(s, nil)

	for i := 0; i < 20; i++ {
		w := doRequest(r, cleanGet("/dash", "203.0.113.10"))
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := doRequest(r, cleanGet("/dash", "203.0.113.10"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(429), body["status"])
	assert.Equal(t, "Rate limit exceeded due to burst traffic", body["error"])

	// The violator is banned: an immediate follow-up hits the blacklist
	// even with no further burst activity.
	w = doRequest(r, cleanGet("/dash", "203.0.113.10"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, float64(403), body["status"])
	assert.Equal(t, "Access temporarily blocked due to suspicious activity", body["error"])

	// An unrelated client is untouched.
	w = doRequest(r, cleanGet("/dash", "203.0.113.99"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShieldSuspicionEscalation(t *testing.T) {
	s := New(DefaultConfig(), nil, nil)
	s.sleep = func(time.Duration) {}
	r := newTestEngine(s, nil)

	// Ten flagged requests accumulate score without crossing the ban
	// threshold of 10.
	for i := 0; i < 10; i++ {
		w := doRequest(r, cleanGet("/files?path=../../etc/passwd", "203.0.113.20"))
		assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	// The 11th verdict pushes the score to 11 and bans.
	w := doRequest(r, cleanGet("/files?path=../../etc/passwd", "203.0.113.20"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Access denied due to suspicious activity", body["error"])

	// Subsequent requests, clean or not, hit the blacklist.
	w = doRequest(r, cleanGet("/dash", "203.0.113.20"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, "Access temporarily blocked due to suspicious activity", body["error"])
}

func TestShieldRateLimitWithRetryAfter(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBurst = 1000 // keep the burst gate out of this scenario
	s := New(cfg, nil, nil)
	s.sleep = func(time.Duration) {}
	r := newTestEngine(s, nil)

	for i := 0; i < 60; i++ {
		w := doRequest(r, cleanGet("/dash", "203.0.113.30"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}

	w := doRequest(r, cleanGet("/dash", "203.0.113.30"))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	body := decodeBody(t, w)
	assert.Equal(t, "Too many requests, please try again later.", body["error"])
	retryAfter, ok := body["retryAfter"].(float64)
	require.True(t, ok, "retryAfter must be numeric")
	assert.Greater(t, retryAfter, float64(0))
	assert.LessOrEqual(t, retryAfter, float64(60))
}

func TestShieldAdminBypass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBurst = 1000
	s := New(cfg, nil, nil)
	s.sleep = func(time.Duration) {}

	r := newTestEngine(s, func(c *gin.Context) {
		c.Set("user_id", "admin-1")
		c.Set("is_admin", true)
	})

	// Well past the default ceiling of 60; the limiter never even counts.
	for i := 0; i < 120; i++ {
		w := doRequest(r, cleanGet("/dash", "203.0.113.40"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestShieldLoopbackBypass(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBurst = 1000
	s := New(cfg, nil, nil)
	s.sleep = func(time.Duration) {}
	r := newTestEngine(s, nil)

	for i := 0; i < 120; i++ {
		w := doRequest(r, cleanGet("/dash", "127.0.0.1"))
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
	}
}

func TestShieldSpeedLimiterDelays(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBurst = 1000
	cfg.RateMax = 1000
	cfg.SpeedBaseThreshold = 5
	cfg.SpeedMinThreshold = 1
	s := New(cfg, nil, nil)

	var slept []time.Duration
	s.sleep = func(d time.Duration) { slept = append(slept, d) }
	r := newTestEngine(s, nil)

	for i := 0; i < 8; i++ {
		w := doRequest(r, cleanGet("/dash", "203.0.113.50"))
		require.Equal(t, http.StatusOK, w.Code, "a delayed request still succeeds")
	}

	// Requests 6..8 cross the threshold of 5 and are slowed, never
	// rejected, with a monotonically growing delay.
	require.Len(t, slept, 3)
	assert.True(t, slept[0] < slept[1] && slept[1] < slept[2],
		"delay must grow with the overshoot: %v", slept)
}

func TestShieldBlacklistChecksFirst(t *testing.T) {
	s := New(DefaultConfig(), nil, nil)
	s.sleep = func(time.Duration) {}
	r := newTestEngine(s, nil)

	req := cleanGet("/dash", "203.0.113.60")
	s.blacklist.Ban(ResolveIdentity(req, ""))

	w := doRequest(r, cleanGet("/dash", "203.0.113.60"))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Access temporarily blocked due to suspicious activity",
		decodeBody(t, w)["error"])
}

func TestShieldStatsAndPurge(t *testing.T) {
	s := New(DefaultConfig(), nil, nil)
	s.sleep = func(time.Duration) {}
	r := newTestEngine(s, nil)

	doRequest(r, cleanGet("/dash", "203.0.113.70"))
	doRequest(r, cleanGet("/dash", "203.0.113.71"))

	stats := s.Stats()
	assert.Equal(t, 2, stats.BurstWindows)
	assert.Equal(t, 2, stats.RateCounters)
	assert.Equal(t, 0, stats.Blacklisted)

	// Burst windows are the shortest-lived state; after the window they
	// are sweepable.
	time.Sleep(1100 * time.Millisecond)
	removed := s.PurgeExpired()
	assert.GreaterOrEqual(t, removed, 2)
	assert.Equal(t, 0, s.burst.Len())
}
