package clock

import (
	"sync"
	"time"
)

// Virtual is a controllable clock for deterministic testing and instant
// simulations. Time only moves when Advance or Set is called, so behavior
// spanning minutes or hours can be exercised without waiting.
//
// Safe for concurrent use.
type Virtual struct {
	mu      sync.RWMutex
	current time.Time
	waiters []waiter
}

type waiter struct {
	deadline time.Time
	ch       chan time.Time
}

// NewVirtual creates a Virtual clock starting at the given time.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{current: start}
}

// Now returns the current virtual time.
func (c *Virtual) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Since returns the virtual duration elapsed since t.
func (c *Virtual) Since(t time.Time) time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Sub(t)
}

// After returns a channel that receives the virtual time once the clock has
// been moved past the current time plus d. The channel fires from inside
// Advance or Set when the deadline is reached.
func (c *Virtual) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}

	c.waiters = append(c.waiters, waiter{
		deadline: c.current.Add(d),
		ch:       ch,
	})
	return ch
}

// Advance moves the virtual clock forward by d and fires any waiters whose
// deadlines have been reached. Panics if d is negative.
func (c *Virtual) Advance(d time.Duration) {
	if d < 0 {
		panic("clock: cannot advance by negative duration")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	c.fireDue()
}

// Set moves the virtual clock to an exact time and fires any waiters whose
// deadlines have been reached. Panics if t is before the current time.
func (c *Virtual) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Before(c.current) {
		panic("clock: cannot set time to the past")
	}

	c.current = t
	c.fireDue()
}

// fireDue delivers the current time to every waiter whose deadline has
// passed. Must be called with c.mu held.
func (c *Virtual) fireDue() {
	pending := c.waiters[:0]
	for _, w := range c.waiters {
		if w.deadline.After(c.current) {
			pending = append(pending, w)
		} else {
			w.ch <- c.current
		}
	}
	c.waiters = pending
}

// Instant wraps a Virtual clock so that waits complete immediately: After
// advances the clock by the requested duration and fires right away. It lets
// paced code (such as a delayed simulation run) execute instantly while still
// observing correct elapsed virtual time.
type Instant struct {
	*Virtual
}

// NewInstant creates an Instant clock starting at the given time.
func NewInstant(start time.Time) *Instant {
	return &Instant{Virtual: NewVirtual(start)}
}

func (c *Instant) After(d time.Duration) <-chan time.Time {
	ch := c.Virtual.After(d)
	if d > 0 {
		c.Virtual.Advance(d)
	}
	return ch
}
