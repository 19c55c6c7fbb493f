// Package simulate replays synthetic request sequences against the admission
// engine to characterize algorithm behavior over time.
package simulate

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/eliaskioni/RateLimitingDemo/internal/clock"
	"github.com/eliaskioni/RateLimitingDemo/internal/limiter"
)

// Bounds on simulation parameters. Out-of-range input is a validation
// error, never clamped.
const (
	MinRequests = 1
	MaxRequests = 100
	MaxDelay    = 5 * time.Second
)

// Driver issues paced consume calls against a registry under a key unique to
// each run, so simulation traffic never perturbs real traffic or other
// concurrent simulations.
type Driver struct {
	registry *limiter.Registry
	clock    clock.Clock
	runSeq   atomic.Uint64
}

// TraceEntry records the decision for one simulated request.
type TraceEntry struct {
	Index    int // 1-based request number
	IssuedAt time.Time
	Decision limiter.Decision
}

// NewDriver creates a simulation driver over the given registry.
func NewDriver(reg *limiter.Registry, clk clock.Clock) *Driver {
	return &Driver{
		registry: reg,
		clock:    clk,
	}
}

// Run issues requests sequential consume calls against a fresh per-run key
// and returns the decisions in request order. When delay is positive, the
// driver waits that long before every request but the first; the wait holds
// no locks and is cancellable through ctx.
//
// A consume failure aborts the run: the entries collected so far are
// returned together with an error naming the failing request.
func (d *Driver) Run(ctx context.Context, kind limiter.Kind, requests int, delay time.Duration) ([]TraceEntry, error) {
	if requests < MinRequests || requests > MaxRequests {
		return nil, &limiter.ValidationError{
			Field:  "requests",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", MinRequests, MaxRequests, requests),
		}
	}
	if delay < 0 || delay > MaxDelay {
		return nil, &limiter.ValidationError{
			Field:  "delay",
			Reason: fmt.Sprintf("must be between 0 and %s, got %s", MaxDelay, delay),
		}
	}

	key := fmt.Sprintf("sim-%d-%d", d.clock.Now().UnixNano(), d.runSeq.Add(1))
	trace := make([]TraceEntry, 0, requests)

	for i := 0; i < requests; i++ {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return trace, ctx.Err()
			case <-d.clock.After(delay):
			}
		}

		issuedAt := d.clock.Now()
		decision, err := d.registry.Consume(ctx, kind, key)
		if err != nil {
			return trace, fmt.Errorf("simulated request %d: %w", i+1, err)
		}
		trace = append(trace, TraceEntry{
			Index:    i + 1,
			IssuedAt: issuedAt,
			Decision: decision,
		})
	}

	return trace, nil
}
