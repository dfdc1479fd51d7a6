package repo

import (
	"sync"
	"time"
)

// timestampPrecision matches what Postgres keeps for a timestamptz column.
const timestampPrecision = time.Microsecond

// Clock hands out strictly increasing timestamps. When the wall clock has
// not moved (or moved backwards) since the last call, the next value is
// last + 1µs, so ordering by timestamp always equals append order.
type Clock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Next returns the timestamp for the next stored message.
func (c *Clock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(timestampPrecision)
	if !t.After(c.last) {
		t = c.last.Add(timestampPrecision)
	}
	c.last = t
	return t
}

// Seed makes every later Next strictly after t.
func (c *Clock) Seed(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t = t.UTC().Truncate(timestampPrecision)
	if t.After(c.last) {
		c.last = t
	}
}
