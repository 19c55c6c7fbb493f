package limiter

import (
	"fmt"
	"time"
)

// Kind identifies a rate limiting algorithm.
type Kind string

const (
	KindFixedWindow   Kind = "fixed_window"
	KindSlidingWindow Kind = "sliding_window"
	KindTokenBucket   Kind = "token_bucket"
)

// Kinds lists every supported algorithm.
func Kinds() []Kind {
	return []Kind{KindFixedWindow, KindSlidingWindow, KindTokenBucket}
}

// ParseKind converts a string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindFixedWindow, KindSlidingWindow, KindTokenBucket:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownKind, s)
	}
}

// Config is an algorithm configuration tagged with the Kind it belongs to.
type Config interface {
	// Kind reports which algorithm this configuration parameterizes.
	Kind() Kind
	// Validate checks the configuration fields for range errors.
	Validate() error
}

// Store holds per-key mutable state for one algorithm and decides whether a
// request is admitted. Implementations never retry, block, or touch I/O; a
// decision is a bounded local computation over (state, now).
type Store interface {
	// Consume records one request for key at time now and returns the decision.
	Consume(key string, now time.Time) Decision
}

// Decision is the outcome of a single consume. A denial is an expected
// outcome, not an error: callers translate it into transport semantics
// (status codes, Retry-After) themselves.
type Decision struct {
	Allowed   bool
	Remaining int // points/tokens left after this consume
	Limit     int // configured maximum

	// RetryAfter is how long the caller should wait before the next request
	// is likely to succeed. Zero when the request was allowed.
	RetryAfter time.Duration
}

// FixedWindowConfig parameterizes the fixed window counter algorithm.
type FixedWindowConfig struct {
	Window      time.Duration // duration of each window
	MaxRequests int           // requests admitted per window
}

func (FixedWindowConfig) Kind() Kind { return KindFixedWindow }

func (c FixedWindowConfig) Validate() error {
	if c.Window <= 0 {
		return &ValidationError{Field: "window", Reason: fmt.Sprintf("must be positive, got %s", c.Window)}
	}
	if c.MaxRequests <= 0 {
		return &ValidationError{Field: "max_requests", Reason: fmt.Sprintf("must be positive, got %d", c.MaxRequests)}
	}
	return nil
}

// SlidingWindowConfig parameterizes the sliding window log algorithm.
type SlidingWindowConfig struct {
	MaxPoints int           // requests admitted within the trailing window
	Window    time.Duration // span of the trailing window

	// BlockFor extends rejection beyond natural expiry: when a request is
	// denied at the limit, the key stays blocked for this long. Zero means
	// no extra penalty.
	BlockFor time.Duration
}

func (SlidingWindowConfig) Kind() Kind { return KindSlidingWindow }

func (c SlidingWindowConfig) Validate() error {
	if c.MaxPoints <= 0 {
		return &ValidationError{Field: "max_points", Reason: fmt.Sprintf("must be positive, got %d", c.MaxPoints)}
	}
	if c.Window <= 0 {
		return &ValidationError{Field: "window", Reason: fmt.Sprintf("must be positive, got %s", c.Window)}
	}
	if c.BlockFor < 0 {
		return &ValidationError{Field: "block_for", Reason: fmt.Sprintf("must not be negative, got %s", c.BlockFor)}
	}
	return nil
}

// TokenBucketConfig parameterizes the token bucket algorithm. Window is
// informational: it sizes burst accounting in the UI but plays no part in
// the refill math, which is driven by RefillAmount per RefillInterval.
type TokenBucketConfig struct {
	Capacity       int           // maximum tokens the bucket holds
	Window         time.Duration // informational burst-accounting span
	RefillAmount   int           // tokens added per refill interval
	RefillInterval time.Duration // how often tokens are added
}

func (TokenBucketConfig) Kind() Kind { return KindTokenBucket }

func (c TokenBucketConfig) Validate() error {
	if c.Capacity <= 0 {
		return &ValidationError{Field: "capacity", Reason: fmt.Sprintf("must be positive, got %d", c.Capacity)}
	}
	if c.Window <= 0 {
		return &ValidationError{Field: "window", Reason: fmt.Sprintf("must be positive, got %s", c.Window)}
	}
	if c.RefillAmount <= 0 {
		return &ValidationError{Field: "refill_amount", Reason: fmt.Sprintf("must be positive, got %d", c.RefillAmount)}
	}
	if c.RefillInterval <= 0 {
		return &ValidationError{Field: "refill_interval", Reason: fmt.Sprintf("must be positive, got %s", c.RefillInterval)}
	}
	return nil
}
