package utils

import "time"

// Clock abstracts time.Now so that sync sessions, retry stamps, and package
// expiry can be driven deterministically in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock is a test Clock that returns a programmable instant.
type FixedClock struct {
	Instant time.Time
}

func (c *FixedClock) Now() time.Time { return c.Instant }

// Advance moves the clock forward by d and returns the new instant.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.Instant = c.Instant.Add(d)
	return c.Instant
}
