package limiter

import (
	"sync"
	"time"
)

// SlidingWindowStore implements the sliding window log algorithm.
//
// Each key keeps the raw timestamps of its admitted requests. On every
// consume, timestamps that have aged out of the trailing window are evicted,
// so quota recovers gradually as individual requests expire instead of all
// at once at a boundary. An optional block duration extends rejection beyond
// natural expiry: once a request is denied at the limit, the key stays
// blocked for that long regardless of how the log drains.
type SlidingWindowStore struct {
	cfg     SlidingWindowConfig
	entries sync.Map // string -> *slidingWindowEntry
}

type slidingWindowEntry struct {
	mu           sync.Mutex
	log          []time.Time
	blockedUntil time.Time // zero when not blocked
}

// NewSlidingWindowStore creates a sliding window store. The config must
// already be validated.
func NewSlidingWindowStore(cfg SlidingWindowConfig) *SlidingWindowStore {
	return &SlidingWindowStore{cfg: cfg}
}

func (s *SlidingWindowStore) Consume(key string, now time.Time) Decision {
	v, _ := s.entries.LoadOrStore(key, &slidingWindowEntry{})
	e := v.(*slidingWindowEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	// Evict timestamps that fell out of the trailing window. A timestamp
	// exactly one window old is expired.
	cutoff := now.Add(-s.cfg.Window)
	kept := e.log[:0]
	for _, ts := range e.log {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	e.log = kept

	if !e.blockedUntil.IsZero() {
		if now.Before(e.blockedUntil) {
			return Decision{
				Allowed:    false,
				Remaining:  0,
				Limit:      s.cfg.MaxPoints,
				RetryAfter: e.blockedUntil.Sub(now),
			}
		}
		e.blockedUntil = time.Time{}
	}

	if len(e.log) < s.cfg.MaxPoints {
		e.log = append(e.log, now)
		return Decision{
			Allowed:   true,
			Remaining: s.cfg.MaxPoints - len(e.log),
			Limit:     s.cfg.MaxPoints,
		}
	}

	// Denied: quota returns when the oldest logged request expires.
	retryAfter := e.log[0].Add(s.cfg.Window).Sub(now)
	if s.cfg.BlockFor > 0 {
		e.blockedUntil = now.Add(s.cfg.BlockFor)
	}

	return Decision{
		Allowed:    false,
		Remaining:  0,
		Limit:      s.cfg.MaxPoints,
		RetryAfter: retryAfter,
	}
}
