package core

import (
	"math"
	"sync/atomic"
)

// Config holds the board-level tuning of one clock
type Config struct {
	// Name identifies the clock in debug output
	Name string

	// MaxValue is the largest raw value the backend reports before wrapping.
	// Zero means a full 32-bit counter. Anything narrower enables extension.
	MaxValue uint32

	// AdjustSet is subtracted from every interval passed to Set to cover
	// the fixed overhead of arming a timer.
	AdjustSet uint32

	// AdjustSleep is subtracted by Wakeup before arming, covering the
	// overhead of waking a waiting goroutine.
	AdjustSleep uint32

	// AdjustClockStart is subtracted from the first interval scheduled
	// right after an on-demand clock was started.
	AdjustClockStart uint32

	// OnDemand enables reference-counted start/stop of the backend
	OnDemand bool
}

// Stats counts how often a clock was used
type Stats struct {
	Sets     uint64
	Removes  uint64
	Fires    uint64
	Arms     uint64
	Cancels  uint64
	Handlers uint64
}

var clockIDs uint32

// Clock multiplexes any number of Entries onto the single alarm of its
// Backend. The list is sorted by due time and each entry stores its
// distance to the previous one, so the sum of offsets from the head up to
// an entry is that entry's target minus base.
type Clock struct {
	backend Backend
	starter Starter
	acker   Acknowledger

	name string
	id   uint8

	irq irqLock

	head    *Entry
	last    *Entry
	tailSum uint32 // sum of all offsets, i.e. target of last minus base
	base    uint32

	maxValue   uint32
	checkpoint uint32
	lastRaw    uint32

	onDemand         bool
	users            int
	adjustClockStart uint32

	adjustSet   uint32
	adjustSleep uint32

	stats Stats
}

// NewClock creates a clock on top of b. A clock narrower than 32 bits
// arms itself right away so that overflows are tracked even while no timer
// is pending; on-demand clocks defer that until their first user.
func NewClock(b Backend, cfg Config) *Clock {
	if b == nil {
		panic("ztimer: nil backend")
	}

	c := &Clock{
		backend:          b,
		name:             cfg.Name,
		id:               uint8(atomic.AddUint32(&clockIDs, 1)),
		maxValue:         cfg.MaxValue,
		onDemand:         cfg.OnDemand,
		adjustSet:        cfg.AdjustSet,
		adjustSleep:      cfg.AdjustSleep,
		adjustClockStart: cfg.AdjustClockStart,
	}
	if c.maxValue == 0 {
		c.maxValue = math.MaxUint32
	}
	c.starter, _ = b.(Starter)
	c.acker, _ = b.(Acknowledger)

	DebugPrintln("[ZTIMER] clock " + itoa(int(c.id)) + " " + c.name +
		" max=" + utoa(c.maxValue))

	if c.extended() && !c.onDemand {
		c.irq.disableInterrupts()
		c.update()
		c.irq.restoreInterrupts()
	}
	return c
}

// Name returns the configured clock name
func (c *Clock) Name() string {
	return c.name
}

// ID returns the small number identifying the clock in timing events
func (c *Clock) ID() uint8 {
	return c.id
}

// MaxValue returns the largest raw value of the backend
func (c *Clock) MaxValue() uint32 {
	return c.maxValue
}

// AdjustSleep returns the configured sleep overhead in ticks
func (c *Clock) AdjustSleep() uint32 {
	return c.adjustSleep
}

// Set arms e to fire no earlier than ticks from the returned now value.
// An entry that is already queued on c is moved. A zero interval fires
// as soon as possible.
func (c *Clock) Set(e *Entry, ticks uint32) uint32 {
	if e.Callback == nil {
		panic("ztimer: entry without callback")
	}

	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()

	if e.owner != nil && e.owner != c {
		panic("ztimer: entry is queued on another clock")
	}

	started := false
	if c.onDemand && c.head == nil {
		started = c.acquire()
	}

	now := c.updateHeadOffset()
	oldHead := c.head
	c.unlink(e)

	if ticks > c.adjustSet {
		ticks -= c.adjustSet
	} else {
		ticks = 0
	}
	if started {
		if ticks > c.adjustClockStart {
			ticks -= c.adjustClockStart
		} else {
			ticks = 0
		}
	}

	e.offset = ticks
	c.insert(e)
	c.stats.Sets++
	RecordTiming(EvtSet, c.id, now, ticks, 0)

	if c.head != oldHead || c.head == e {
		c.update()
	}
	return now
}

// Remove unqueues e. It reports whether e was still pending; false means it
// already fired or was never set, and the list is left untouched.
func (c *Clock) Remove(e *Entry) bool {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()

	if !c.isSet(e) {
		return false
	}

	now := c.updateHeadOffset()
	oldHead := c.head
	c.unlink(e)
	c.stats.Removes++
	RecordTiming(EvtRemove, c.id, now, 0, 0)

	if c.onDemand && c.head == nil {
		c.release()
	}
	if c.head != oldHead {
		c.update()
	}
	return true
}

// IsSet reports whether e is queued on c
func (c *Clock) IsSet(e *Entry) bool {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()
	return c.isSet(e)
}

// Now returns the current clock time.
//
// Clocks narrower than 32 bits extend the raw value in software. Two
// readings can only be compared if the clock ran continuously in between:
// it was acquired, or a timer was pending the whole time.
func (c *Clock) Now() uint32 {
	if !c.extended() {
		return c.backend.Now()
	}
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()
	return c.now()
}

// Handler processes an expired alarm. It is called by the backend from
// alarm context only. Every entry that is due fires, in list order, and
// the backend is re-armed for the next one.
func (c *Clock) Handler() {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()

	if c.acker != nil && !c.acker.Ack() {
		return
	}
	c.stats.Handlers++

	if c.extended() {
		// May be an intermediate wake-up that only refreshes the checkpoint
		c.updateHeadOffset()
		if c.head == nil || c.head.offset > 0 {
			RecordTiming(EvtCheckpoint, c.id, c.base, c.checkpoint, 0)
			c.update()
			return
		}
	} else if c.head != nil {
		// Rebase to the expected fire time, not the observed one
		c.base += c.head.offset
		c.tailSum -= c.head.offset
		c.head.offset = 0
	}

	e := c.popDue()
	for e != nil {
		RecordTiming(EvtFire, c.id, c.base, 0, 0)

		c.irq.restoreInterrupts()
		e.Callback(e.Arg)
		c.irq.disableInterrupts()

		e = c.popDue()
		if e == nil {
			// Catch entries that became due while callbacks ran
			c.updateHeadOffset()
			e = c.popDue()
		}
	}

	c.update()
}

// Pending returns a snapshot of the queued entries in firing order
func (c *Clock) Pending() []Pending {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()

	var out []Pending
	target := c.base
	for e := c.head; e != nil; e = e.next {
		target += e.offset
		out = append(out, Pending{Entry: e, Offset: e.offset, Target: target})
	}
	return out
}

// Len returns the number of queued entries
func (c *Clock) Len() int {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()

	n := 0
	for e := c.head; e != nil; e = e.next {
		n++
	}
	return n
}

// Stats returns a copy of the usage counters
func (c *Clock) Stats() Stats {
	c.irq.disableInterrupts()
	defer c.irq.restoreInterrupts()
	return c.stats
}

// update programs the backend for the current head, or idles it
func (c *Clock) update() {
	if c.head != nil {
		c.arm(c.head.offset)
		return
	}

	if c.onDemand && c.users == 0 {
		// Released: the backend was cancelled and stopped
		return
	}

	switch {
	case c.extended():
		c.arm(c.maxValue >> 1)
	case c.onDemand && c.starter == nil:
		// Keep a backend without start/stop running for its users
		c.arm(idleTicks)
	default:
		c.cancel()
	}
}

// arm programs the backend alarm, splitting long intervals on narrow clocks
func (c *Clock) arm(ticks uint32) {
	if c.extended() && ticks > c.maxValue>>1 {
		ticks = c.maxValue >> 1
	}
	c.stats.Arms++
	RecordTiming(EvtArm, c.id, c.base, ticks, 0)
	c.backend.Set(ticks)
}

// cancel disarms the backend alarm
func (c *Clock) cancel() {
	c.stats.Cancels++
	RecordTiming(EvtCancel, c.id, c.base, 0, 0)
	c.backend.Cancel()
}
