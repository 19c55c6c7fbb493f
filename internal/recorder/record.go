package recorder

import (
	"time"

	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
)

// DecisionEvent is one admission decision in wire form, as streamed to the
// dashboard and exported to recording files. RetryAfterMs is set only on
// denials.
type DecisionEvent struct {
	Time         time.Time `json:"time"`
	Algorithm    string    `json:"algorithm"`
	Key          string    `json:"key"`
	Source       string    `json:"source"` // "api" or "simulation"
	Allowed      bool      `json:"allowed"`
	Remaining    int       `json:"remaining"`
	Limit        int       `json:"limit"`
	RetryAfterMs int64     `json:"retry_after_ms,omitempty"`
}

// NewDecisionEvent shapes a Decision into its wire form.
func NewDecisionEvent(at time.Time, kind limiter.Kind, key, source string, d limiter.Decision) DecisionEvent {
	e := DecisionEvent{
		Time:      at,
		Algorithm: string(kind),
		Key:       key,
		Source:    source,
		Allowed:   d.Allowed,
		Remaining: d.Remaining,
		Limit:     d.Limit,
	}
	if !d.Allowed {
		e.RetryAfterMs = d.RetryAfter.Milliseconds()
	}
	return e
}
