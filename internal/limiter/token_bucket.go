package limiter

import (
	"math"
	"sync"
	"time"
)

// TokenBucketStore implements the token bucket algorithm with lazy refill.
//
// Each key owns a bucket that starts full. A request consumes one token;
// refills are computed on demand from the elapsed time rather than by a
// background timer, so the store is purely a function of (state, now) and
// there is no timer lifecycle to manage across reconfiguration.
//
// Refill is granted in whole intervals only: lastRefill advances by exactly
// the intervals credited, never past now, so partial progress toward the
// next token is carried forward instead of lost.
type TokenBucketStore struct {
	cfg     TokenBucketConfig
	entries sync.Map // string -> *tokenBucketEntry
}

type tokenBucketEntry struct {
	mu         sync.Mutex
	tokens     float64
	lastRefill time.Time
}

// NewTokenBucketStore creates a token bucket store. The config must already
// be validated.
func NewTokenBucketStore(cfg TokenBucketConfig) *TokenBucketStore {
	return &TokenBucketStore{cfg: cfg}
}

func (s *TokenBucketStore) Consume(key string, now time.Time) Decision {
	v, _ := s.entries.LoadOrStore(key, &tokenBucketEntry{
		tokens:     float64(s.cfg.Capacity),
		lastRefill: now,
	})
	e := v.(*tokenBucketEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if elapsed := now.Sub(e.lastRefill); elapsed >= s.cfg.RefillInterval {
		intervals := elapsed / s.cfg.RefillInterval
		e.tokens += float64(int64(intervals) * int64(s.cfg.RefillAmount))
		if e.tokens > float64(s.cfg.Capacity) {
			e.tokens = float64(s.cfg.Capacity)
		}
		e.lastRefill = e.lastRefill.Add(intervals * s.cfg.RefillInterval)
	}

	if e.tokens >= 1 {
		e.tokens--
		return Decision{
			Allowed:   true,
			Remaining: int(math.Floor(e.tokens)),
			Limit:     s.cfg.Capacity,
		}
	}

	// Denied: the next whole token arrives at the end of the interval
	// already in progress.
	return Decision{
		Allowed:    false,
		Remaining:  0,
		Limit:      s.cfg.Capacity,
		RetryAfter: e.lastRefill.Add(s.cfg.RefillInterval).Sub(now),
	}
}
