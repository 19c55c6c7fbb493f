package limiter

import (
	"sync"
	"time"
)

// FixedWindowStore implements the fixed window counter algorithm.
//
// Each key gets its own window anchored at its first request: a counter and
// a reset deadline. Requests increment the counter until the limit; when the
// deadline passes the counter drops straight back to zero. The reset is a
// hard cliff with no carryover, which is the documented boundary problem of
// this algorithm — up to 2x the limit can slip through around a boundary.
//
// State lives in a sync.Map of per-key entries, each with its own mutex, so
// different keys never contend.
type FixedWindowStore struct {
	cfg     FixedWindowConfig
	entries sync.Map // string -> *fixedWindowEntry
}

type fixedWindowEntry struct {
	mu      sync.Mutex
	count   int
	resetAt time.Time
}

// NewFixedWindowStore creates a fixed window store. The config must already
// be validated.
func NewFixedWindowStore(cfg FixedWindowConfig) *FixedWindowStore {
	return &FixedWindowStore{cfg: cfg}
}

func (s *FixedWindowStore) Consume(key string, now time.Time) Decision {
	v, _ := s.entries.LoadOrStore(key, &fixedWindowEntry{resetAt: now.Add(s.cfg.Window)})
	e := v.(*fixedWindowEntry)

	e.mu.Lock()
	defer e.mu.Unlock()

	// A timestamp exactly at the deadline starts a new window.
	if !now.Before(e.resetAt) {
		e.count = 0
		e.resetAt = now.Add(s.cfg.Window)
	}

	if e.count < s.cfg.MaxRequests {
		e.count++
		return Decision{
			Allowed:   true,
			Remaining: s.cfg.MaxRequests - e.count,
			Limit:     s.cfg.MaxRequests,
		}
	}

	return Decision{
		Allowed:    false,
		Remaining:  0,
		Limit:      s.cfg.MaxRequests,
		RetryAfter: e.resetAt.Sub(now),
	}
}
