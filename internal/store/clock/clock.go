// Package clock hands out write timestamps that never go backwards.
package clock

import (
	"sync"
	"time"
)

// Monotonic returns UTC timestamps strictly increasing across calls, so two
// appends in the same nanosecond still sort in issue order.
type Monotonic struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// New returns a Monotonic backed by time.Now.
func New() *Monotonic {
	return &Monotonic{now: time.Now}
}

// NewWithSource is New with a custom time source.
func NewWithSource(now func() time.Time) *Monotonic {
	return &Monotonic{now: now}
}

// Next returns a timestamp after every previously returned one.
func (c *Monotonic) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC()
	if !t.After(c.last) {
		t = c.last.Add(time.Nanosecond)
	}
	c.last = t
	return t
}

// Stamp returns t in UTC, or Next() when t is zero.
func (c *Monotonic) Stamp(t time.Time) time.Time {
	if t.IsZero() {
		return c.Next()
	}
	return t.UTC()
}
