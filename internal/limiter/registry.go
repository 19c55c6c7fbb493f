package limiter

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/eliaskioni/RateLimitingDemo/internal/clock"
)

// state is the immutable (config, store) pair for one algorithm. The pair is
// swapped wholesale on reconfigure so no consume ever observes new limits
// against old per-key state.
type state struct {
	cfg   Config
	store Store
}

// Registry holds the active configuration and state store for every
// algorithm and is the single entry point the HTTP layer talks to.
//
// Per-algorithm state sits behind an atomic pointer: consumes load the
// current pair lock-free and reconfiguration publishes a fresh pair in one
// store. Reconfiguring one algorithm never touches the others.
type Registry struct {
	clock  clock.Clock
	states map[Kind]*atomic.Pointer[state]
}

// NewRegistry creates a registry from one configuration per algorithm. Every
// supported Kind must be configured exactly once.
func NewRegistry(clk clock.Clock, cfgs ...Config) (*Registry, error) {
	r := &Registry{
		clock:  clk,
		states: make(map[Kind]*atomic.Pointer[state], len(Kinds())),
	}

	for _, cfg := range cfgs {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.Kind(), err)
		}
		if _, dup := r.states[cfg.Kind()]; dup {
			return nil, fmt.Errorf("duplicate configuration for %s", cfg.Kind())
		}
		p := &atomic.Pointer[state]{}
		p.Store(&state{cfg: cfg, store: newStore(cfg)})
		r.states[cfg.Kind()] = p
	}

	for _, k := range Kinds() {
		if _, ok := r.states[k]; !ok {
			return nil, fmt.Errorf("missing configuration for %s", k)
		}
	}
	return r, nil
}

// newStore builds a fresh, empty store for cfg. cfg must be validated.
func newStore(cfg Config) Store {
	switch c := cfg.(type) {
	case FixedWindowConfig:
		return NewFixedWindowStore(c)
	case SlidingWindowConfig:
		return NewSlidingWindowStore(c)
	case TokenBucketConfig:
		return NewTokenBucketStore(c)
	default:
		panic(fmt.Sprintf("limiter: unhandled config type %T", cfg))
	}
}

// Consume records one request for key under the given algorithm and returns
// the admission decision. It never blocks and never retries.
func (r *Registry) Consume(_ context.Context, kind Kind, key string) (Decision, error) {
	p, ok := r.states[kind]
	if !ok {
		return Decision{}, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	st := p.Load()
	return st.store.Consume(key, r.clock.Now()), nil
}

// Reconfigure validates cfg and swaps it in for the given algorithm. All
// per-key state for that algorithm is discarded — every key starts fresh
// under the new parameters, even if cfg is unchanged. On error nothing is
// mutated.
func (r *Registry) Reconfigure(kind Kind, cfg Config) error {
	p, ok := r.states[kind]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if cfg == nil {
		return &ValidationError{Field: "config", Reason: "must not be nil"}
	}
	if cfg.Kind() != kind {
		return &ValidationError{
			Field:  "config",
			Reason: fmt.Sprintf("is for %s, not %s", cfg.Kind(), kind),
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.Store(&state{cfg: cfg, store: newStore(cfg)})
	return nil
}

// Config returns the active configuration for the given algorithm. Configs
// are value types, so the returned snapshot is safe to hold.
func (r *Registry) Config(kind Kind) (Config, error) {
	p, ok := r.states[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return p.Load().cfg, nil
}
