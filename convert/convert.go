// Package convert derives clocks of one frequency from a clock of another.
//
// A converted clock is a regular core.Clock whose backend translates ticks
// and keeps exactly one proxy entry on the lower clock, armed for the
// soonest deadline of everything queued above it. Converted clocks can be
// chained.
package convert

import (
	"ztimer/core"
)

// Converter translates tick counts between a clock and its lower clock
type Converter interface {
	// ToLower converts an interval of this clock to lower clock ticks
	ToLower(ticks uint32) uint32
	// ToSelf converts a lower clock value to this clock
	ToSelf(ticks uint32) uint32
}

// Clock is a clock derived from a lower clock through a Converter
type Clock struct {
	lower *core.Clock
	proxy core.Entry
	conv  Converter
	clock *core.Clock
}

// New builds a converted clock on top of lower. cfg.MaxValue must already
// reflect the range of conv.ToSelf.
func New(lower *core.Clock, conv Converter, cfg core.Config) *Clock {
	if lower == nil {
		panic("convert: nil lower clock")
	}
	c := &Clock{
		lower: lower,
		conv:  conv,
	}
	c.proxy.Callback = c.expired
	c.clock = core.NewClock(c, cfg)
	return c
}

// Clock returns the timer interface of the converted clock
func (c *Clock) Clock() *core.Clock {
	return c.clock
}

// Lower returns the clock this one is derived from
func (c *Clock) Lower() *core.Clock {
	return c.lower
}

// Converter returns the tick translation in use
func (c *Clock) Converter() Converter {
	return c.conv
}

// expired runs in the lower clock's alarm context
func (c *Clock) expired(any) {
	c.clock.Handler()
}

// Ack drops a delayed alarm when a task re-armed the proxy after the lower
// clock popped it. The re-armed proxy carries the current deadline.
func (c *Clock) Ack() bool {
	return !c.lower.IsSet(&c.proxy)
}

// Set arms the proxy entry on the lower clock
func (c *Clock) Set(ticks uint32) {
	c.lower.Set(&c.proxy, c.conv.ToLower(ticks))
}

// Now returns the lower clock's time in this clock's ticks
func (c *Clock) Now() uint32 {
	return c.conv.ToSelf(c.lower.Now())
}

// Cancel removes the proxy entry from the lower clock
func (c *Clock) Cancel() {
	c.lower.Remove(&c.proxy)
}

// Start keeps the lower clock running while this clock has users
func (c *Clock) Start() {
	c.lower.Acquire()
}

// Stop releases the lower clock
func (c *Clock) Stop() {
	c.lower.Release()
}
