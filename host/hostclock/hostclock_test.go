package hostclock

import (
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"ztimer/core"
)

func TestTimerFires(t *testing.T) {
	defer leaktest.Check(t)()

	b := New(1000000, 32, core.Config{Name: "usec"})
	clock := b.Clock()
	w := core.NewWakeup()

	start := w.Arm(clock, 2000)
	select {
	case <-w.C():
	case <-time.After(2 * time.Second):
		t.Fatal("Alarm did not fire")
	}

	if elapsed := clock.Now() - start; elapsed < 2000 {
		t.Errorf("Fired after %d ticks, want at least 2000", elapsed)
	}
	if clock.Len() != 0 {
		t.Errorf("Expected empty list after firing, got %d", clock.Len())
	}
}

func TestAckDropsStaleAlarm(t *testing.T) {
	b := New(1000, 32, core.Config{})
	defer b.Cancel()

	b.Set(100000)
	stale := b.gen
	b.Set(100000)

	b.expire(stale)
	if n := b.Clock().Stats().Handlers; n != 0 {
		t.Fatalf("Stale alarm reached the handler: %d runs", n)
	}

	b.expire(b.gen)
	if n := b.Clock().Stats().Handlers; n != 1 {
		t.Errorf("Expected one handler run, got %d", n)
	}
	if b.Ack() {
		t.Error("Alarm acknowledged twice")
	}
}

func TestStaleExpireKeepsCurrentAlarm(t *testing.T) {
	b := New(1000, 32, core.Config{})
	defer b.Cancel()

	b.Set(100000)
	stale := b.gen
	b.Set(100000)
	fresh := b.gen

	// The fresh alarm has been recorded but its handler has not run yet
	// when the replaced one is delivered
	b.mu.Lock()
	b.fired = fresh
	b.mu.Unlock()
	b.expire(stale)

	b.mu.Lock()
	fired := b.fired
	b.mu.Unlock()
	if fired != fresh {
		t.Fatalf("Stale alarm overwrote fired generation: %d, want %d", fired, fresh)
	}

	b.Clock().Handler()
	if n := b.Clock().Stats().Handlers; n != 1 {
		t.Errorf("Current alarm was dropped: %d handler runs, want 1", n)
	}
}

func TestStoppedCounterHolds(t *testing.T) {
	b := New(1000000, 32, core.Config{OnDemand: true})
	if b.Running() {
		t.Fatal("On-demand backend should start stopped")
	}

	time.Sleep(2 * time.Millisecond)
	if v := b.Now(); v != 0 {
		t.Errorf("Stopped counter moved to %d", v)
	}

	b.Clock().Acquire()
	time.Sleep(2 * time.Millisecond)
	b.Clock().Release()

	held := b.Now()
	if held < 2000 {
		t.Errorf("Counter at %d after 2ms running", held)
	}
	time.Sleep(2 * time.Millisecond)
	if v := b.Now(); v != held {
		t.Errorf("Counter moved from %d to %d while stopped", held, v)
	}
}

func TestNarrowCounterExtends(t *testing.T) {
	b := New(1000000, 16, core.Config{OnDemand: true})
	clock := b.Clock()

	clock.Acquire()
	defer clock.Release()

	before := clock.Now()
	time.Sleep(150 * time.Millisecond)
	if d := clock.Now() - before; d <= 0xffff {
		t.Errorf("Extended clock advanced %d ticks in 150ms", d)
	}
}
