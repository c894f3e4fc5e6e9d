// Package mock provides a software clock backend for deterministic tests.
// Time only moves when the test calls Advance or Jump, and every backend
// operation the clock core performs is counted.
package mock

import (
	"ztimer/core"
)

// Calls counts backend operations
type Calls struct {
	Now    uint32
	Set    uint32
	Cancel uint32
	Start  uint32
	Stop   uint32
}

// Mock is a counter of configurable width with one alarm
type Mock struct {
	mask    uint32
	now     uint32
	target  uint32 // ticks left until the alarm
	armed   bool
	running bool

	Calls Calls

	clock *core.Clock
}

// New creates a bits wide mock backend and the clock on top of it. The
// counter is running unless cfg.OnDemand is set, in which case it starts
// with its first user.
func New(bits uint, cfg core.Config) *Mock {
	if bits == 0 || bits > 32 {
		panic("mock: width out of range")
	}
	m := &Mock{
		mask:    uint32((uint64(1) << bits) - 1),
		running: !cfg.OnDemand,
	}
	cfg.MaxValue = m.mask
	if cfg.Name == "" {
		cfg.Name = "mock"
	}
	m.clock = core.NewClock(m, cfg)
	return m
}

// Clock returns the clock driven by this backend
func (m *Mock) Clock() *core.Clock {
	return m.clock
}

// Set arms the alarm ticks from now
func (m *Mock) Set(ticks uint32) {
	m.Calls.Set++
	m.target = ticks
	m.armed = true
}

// Now returns the counter value
func (m *Mock) Now() uint32 {
	m.Calls.Now++
	return m.now
}

// Cancel disarms the alarm
func (m *Mock) Cancel() {
	m.Calls.Cancel++
	m.armed = false
}

// Start resumes counting
func (m *Mock) Start() {
	m.Calls.Start++
	m.running = true
}

// Stop halts counting
func (m *Mock) Stop() {
	m.Calls.Stop++
	m.running = false
}

// Advance moves the counter forward by ticks. Whenever the armed target is
// reached the clock's handler runs, and the walk continues with whatever
// the handler armed next. A stopped counter does not move.
func (m *Mock) Advance(ticks uint32) {
	for m.running {
		step := ticks
		if m.armed && m.target < step {
			step = m.target
		}
		m.now = (m.now + step) & m.mask
		ticks -= step

		if m.armed {
			m.target -= step
			if m.target == 0 {
				m.armed = false
				m.clock.Handler()
				continue
			}
		}
		if ticks == 0 {
			return
		}
	}
}

// Jump sets the counter without evaluating the alarm
func (m *Mock) Jump(value uint32) {
	m.now = value & m.mask
}

// Fire runs the clock's handler as an interrupt would, armed or not
func (m *Mock) Fire() {
	m.armed = false
	m.clock.Handler()
}

// Running reports whether the counter is started
func (m *Mock) Running() bool {
	return m.running
}

// Armed reports whether an alarm is pending
func (m *Mock) Armed() bool {
	return m.armed
}

// Target returns the ticks left until the pending alarm
func (m *Mock) Target() uint32 {
	return m.target
}

// Value returns the counter without counting a Now call
func (m *Mock) Value() uint32 {
	return m.now
}
