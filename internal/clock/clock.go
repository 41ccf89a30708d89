// ABOUTME: Logical clock supplying the monotonic ticks recorded on every ledger row
// ABOUTME: Provides a wall-clock backed system clock and a manually driven test clock

package clock

import (
	"sync"
	"time"
)

// Clock yields monotonically non-decreasing logical ticks. Ticks are opaque
// to the code that records them; nothing computes durations from them.
type Clock interface {
	Now() uint64
}

// System is a Clock backed by wall-clock nanoseconds. Successive calls never
// go backwards even if the wall clock does.
type System struct {
	mu   sync.Mutex
	last uint64
}

// NewSystem returns a System clock starting from the current wall-clock time.
func NewSystem() *System {
	return &System{}
}

// Now returns the next tick. Calls from the same process are strictly
// increasing.
func (c *System) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	tick := uint64(time.Now().UnixNano())
	if tick <= c.last {
		tick = c.last + 1
	}
	c.last = tick
	return tick
}

// Manual is a Clock driven entirely by the code that owns it. Intended for
// tests that assert on recorded ticks.
type Manual struct {
	mu   sync.Mutex
	tick uint64
}

// NewManual returns a Manual clock positioned at start.
func NewManual(start uint64) *Manual {
	return &Manual{tick: start}
}

// Now returns the current tick without advancing.
func (c *Manual) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tick
}

// Advance moves the clock forward by n ticks.
func (c *Manual) Advance(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick += n
}

// Set positions the clock at an absolute tick.
func (c *Manual) Set(tick uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick = tick
}
