package clock

import "time"

// Clock supplies the current time to the admission engine. Everything
// time-dependent takes a Clock instead of calling time.Now directly, so
// simulations and tests can run against synthetic time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Since returns the duration elapsed since t.
	Since(t time.Time) time.Duration
	// After returns a channel that receives the current time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// Real delegates to the standard time package.
type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now()
}

func (c *Real) Since(t time.Time) time.Duration {
	return time.Since(t)
}

func (c *Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
