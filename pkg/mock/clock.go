package mock

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/itohio/floodmon/pkg/hal"
)

// Clock is a virtual hal.Clock. Sleep advances virtual time immediately
// instead of suspending, which makes actuator timing deterministic in tests.
//
// A task whose loop only sleeps (the sensor reader) would spin on this clock,
// so use it for tasks that block on a queue between sleeps.
type Clock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

var _ hal.Clock = (*Clock)(nil)

// NewClock creates a virtual clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the virtual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Sleep advances virtual time by d.
func (c *Clock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()

	// Let other goroutines observe the new state
	runtime.Gosched()
	return nil
}

// Advance moves virtual time forward without recording a sleep.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Sleeps returns a copy of all recorded sleep durations.
func (c *Clock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make([]time.Duration, len(c.sleeps))
	copy(result, c.sleeps)
	return result
}
