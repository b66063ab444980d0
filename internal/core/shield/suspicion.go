package shield

import (
	"sync"
	"time"
)

// SuspicionScorer accumulates a decaying count of heuristic "bad request"
// verdicts per identity. Each bump slides the TTL forward, so the score only
// resets after a quiet period with no new verdicts.
type SuspicionScorer struct {
	mu     sync.Mutex
	scores *Store[int]
}

// NewSuspicionScorer creates a scorer whose scores decay to zero ttl after
// the last bump.
func NewSuspicionScorer(maxEntries int, ttl time.Duration) *SuspicionScorer {
	return &SuspicionScorer{scores: NewStore[int](maxEntries, ttl)}
}

// Bump increments the identity's score, restarts its decay window, and
// returns the new score.
func (s *SuspicionScorer) Bump(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	score, _ := s.scores.Get(key)
	score++
	s.scores.Set(key, score)
	return score
}

// Score returns the current score, zero if none. This is a pure lookup: the
// rate and speed limiters read it to adapt their thresholds, and reading
// must not refresh the decay window or the recency of the entry.
func (s *SuspicionScorer) Score(key string) int {
	score, _ := s.scores.Peek(key)
	return score
}

// Len returns the number of identities with a live score.
func (s *SuspicionScorer) Len() int { return s.scores.Len() }

// PurgeExpired drops decayed scores and returns how many were removed.
func (s *SuspicionScorer) PurgeExpired() int { return s.scores.PurgeExpired() }
