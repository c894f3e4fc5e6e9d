package core

import "math"

// Acquire registers a user of the clock. The first user starts the
// backend. Backends without Start and narrow clocks are armed as if a long
// timer were pending, so the counter keeps running. Reports whether this was
// the first user.
func (c *Clock) Acquire() bool {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()

	first := c.acquire()
	if first && c.onDemand && c.head == nil && (c.extended() || c.starter == nil) {
		c.update()
	}
	return first
}

// Release drops a user of the clock. The last user cancels the alarm and
// stops the backend, whether or not timers are still queued. Reports
// whether this was the last user.
func (c *Clock) Release() bool {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()
	return c.release()
}

// Users returns the current reference count
func (c *Clock) Users() int {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()
	return c.users
}

func (c *Clock) acquire() bool {
	c.users++
	if c.users != 1 {
		return false
	}
	if c.onDemand && c.starter != nil {
		RecordTiming(EvtStart, c.id, c.base, 0, 0)
		c.starter.Start()
	}
	return true
}

func (c *Clock) release() bool {
	if c.users == 0 {
		panic("ztimer: release without acquire")
	}
	c.users--
	if c.users != 0 {
		return false
	}
	if c.onDemand {
		c.cancel()
		if c.starter != nil {
			RecordTiming(EvtStop, c.id, c.base, 0, 0)
			c.starter.Stop()
		}
	}
	return true
}

// idleTicks is what a running on-demand clock without start/stop is armed
// for while nothing is queued
const idleTicks = math.MaxUint32
