package core

import "math"

// extended reports whether the backend is narrower than 32 bits
func (c *Clock) extended() bool {
	return c.maxValue < math.MaxUint32
}

// now reads the backend and, on narrow clocks, folds the reading into the
// 32-bit checkpoint. A reading below the previous one means the counter
// wrapped once. Handler re-enters at least every maxValue/2 ticks, which
// keeps that assumption true.
func (c *Clock) now() uint32 {
	raw := c.backend.Now()
	if !c.extended() {
		return raw
	}

	if raw >= c.lastRaw {
		c.checkpoint += raw - c.lastRaw
	} else {
		c.checkpoint += c.maxValue - c.lastRaw + raw + 1
	}
	c.lastRaw = raw
	return c.checkpoint
}
