// Package hostclock is a clock backend for the host, counting at a fixed
// frequency off the monotonic clock and raising alarms with time.AfterFunc.
// Alarms run on the timer goroutine, which stands in for interrupt context.
package hostclock

import (
	"math/bits"
	"sync"
	"time"

	"ztimer/core"
)

// Backend counts width-bit ticks at freq Hz
type Backend struct {
	freq uint64
	mask uint32

	mu      sync.Mutex
	running bool
	since   time.Time     // start of the current running stretch
	elapsed time.Duration // running time before since

	timer   *time.Timer
	gen     uint64 // bumped on every Set and Cancel
	fired   uint64 // generation of the alarm that last went off
	pending bool

	clock *core.Clock
}

// New creates a backend and the clock on top of it. An on-demand clock
// does not count until its first user.
func New(freq uint32, width uint, cfg core.Config) *Backend {
	if freq == 0 {
		panic("hostclock: zero frequency")
	}
	if width == 0 || width > 32 {
		panic("hostclock: width out of range")
	}

	b := &Backend{
		freq:    uint64(freq),
		mask:    uint32((uint64(1) << width) - 1),
		running: !cfg.OnDemand,
		since:   time.Now(),
	}
	cfg.MaxValue = b.mask
	b.clock = core.NewClock(b, cfg)
	return b
}

// Clock returns the clock driven by this backend
func (b *Backend) Clock() *core.Clock {
	return b.clock
}

// Frequency returns the tick rate in Hz
func (b *Backend) Frequency() uint32 {
	return uint32(b.freq)
}

// Now returns the counter value
func (b *Backend) Now() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ticks()
}

func (b *Backend) ticks() uint32 {
	d := b.elapsed
	if b.running {
		d += time.Since(b.since)
	}
	hi, lo := bits.Mul64(uint64(d), b.freq)
	q, _ := bits.Div64(hi, lo, uint64(time.Second))
	return uint32(q) & b.mask
}

// Set arms the alarm ticks from now, replacing any pending one
func (b *Backend) Set(ticks uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stop()
	b.gen++
	b.pending = true

	gen := b.gen
	d := (uint64(ticks)*uint64(time.Second) + b.freq - 1) / b.freq
	b.timer = time.AfterFunc(time.Duration(d), func() { b.expire(gen) })
}

// Cancel disarms the alarm
func (b *Backend) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stop()
	b.gen++
	b.pending = false
}

func (b *Backend) stop() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Ack consumes the outstanding alarm. It fails when the alarm that went off
// was replaced or cancelled before the handler got to it.
func (b *Backend) Ack() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.pending || b.fired != b.gen {
		return false
	}
	b.pending = false
	return true
}

// expire runs on the timer goroutine. Only the current alarm is recorded,
// so a late stale one cannot hide it from Ack.
func (b *Backend) expire(gen uint64) {
	b.mu.Lock()
	current := gen == b.gen
	if current {
		b.fired = gen
	}
	b.mu.Unlock()

	if current {
		b.clock.Handler()
	}
}

// Start resumes counting
func (b *Backend) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		b.running = true
		b.since = time.Now()
	}
}

// Stop freezes the counter
func (b *Backend) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		b.elapsed += time.Since(b.since)
		b.running = false
	}
}

// Running reports whether the counter is started
func (b *Backend) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}
