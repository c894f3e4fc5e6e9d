package convert

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"ztimer/core"
	"ztimer/mock"
)

func TestShiftRoundTrip(t *testing.T) {
	s := NewShiftConverter(3)

	for _, y := range []uint32{0, 1, 125, 1 << 20, 1<<29 - 1} {
		if got := s.ToLower(s.ToSelf(y)); got != y {
			t.Errorf("ToLower(ToSelf(%d)) = %d", y, got)
		}
	}
	for _, x := range []uint32{0, 8, 1000, 1 << 31, 0xfffffff8} {
		if got := s.ToSelf(s.ToLower(x)); got != x {
			t.Errorf("ToSelf(ToLower(%d)) = %d", x, got)
		}
	}
}

func TestMulDivRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 2, 999, 1000, 65535, 123456, 2000000}

	// msec on top of a 32768 Hz counter
	slow := NewMulDivConverter(4096, 125)
	for _, x := range values {
		if got := slow.ToSelf(slow.ToLower(x)); got != x {
			t.Errorf("mul>div: ToSelf(ToLower(%d)) = %d", x, got)
		}
	}

	// 32768 Hz on top of msec
	fast := NewMulDivConverter(125, 4096)
	for _, y := range values {
		if got := fast.ToLower(fast.ToSelf(y)); got != y {
			t.Errorf("mul<div: ToLower(ToSelf(%d)) = %d", y, got)
		}
	}
}

func TestMulDivRoundsUp(t *testing.T) {
	m := NewMulDivConverter(4096, 125)
	// 1 ms is 32.768 ticks
	if got := m.ToLower(1); got != 33 {
		t.Errorf("ToLower(1) = %d, want 33", got)
	}
	if got := m.MaxValue(); got != uint32(uint64(0xffffffff)*125/4096) {
		t.Errorf("MaxValue() = %d", got)
	}
	if got := NewMulDivConverter(1, 1000).MaxValue(); got != 0xffffffff {
		t.Errorf("Faster clock should be unbounded, got %d", got)
	}
}

func TestFracRoundTripBounded(t *testing.T) {
	cases := []struct {
		self, lower uint32
	}{
		{1000000, 32768},
		{1000, 32768},
		{1000, 1000000},
		{32768, 1000},
		{12000000, 1000000},
		{1000000, 1000000},
	}
	values := []uint32{0, 1, 17, 1000, 65535, 1000003, 1 << 22}

	for _, c := range cases {
		f := NewFracConverter(c.self, c.lower)
		ratio := (c.self + c.lower - 1) / c.lower
		bound := int64(2*ratio + 3)

		for _, x := range values {
			if c.self < c.lower && x > f.ToSelf(0xffffffff)/2 {
				continue
			}
			got := int64(f.ToSelf(f.ToLower(x)))
			if diff := got - int64(x); diff > bound || diff < -bound {
				t.Errorf("%d Hz on %d Hz: ToSelf(ToLower(%d)) = %d, error above %d", c.self, c.lower, x, got, bound)
			}
		}
	}
}

func TestToLowerSaturates(t *testing.T) {
	f := NewFracConverter(1000000, 32768)
	top := f.ToLower(0xffffffff)
	if near := f.ToLower(0xffffffff - 100); top < near {
		t.Errorf("Frac ToLower(0xffffffff) = %d wrapped below ToLower(0xffffff9b) = %d", top, near)
	}
	// 2^32 usec is a little over 2^27 ticks at 32768 Hz
	if top < 1<<27 {
		t.Errorf("Frac ToLower(0xffffffff) = %d, want at least %d", top, 1<<27)
	}

	m := NewMulDivConverter(4096, 125)
	if got := m.ToLower(0xffffffff); got != 0xffffffff {
		t.Errorf("MulDiv ToLower(0xffffffff) = %d, want saturation", got)
	}
}

func TestChoose(t *testing.T) {
	cases := []struct {
		self, lower uint32
		want        Strategy
	}{
		{1000000, 250000, StrategyShift},
		{32768, 32768, StrategyShift},
		{1000, 1000000, StrategyMulDiv},
		{1000, 32768, StrategyMulDiv},
		{1000000, 32768, StrategyMulDiv},
		{999983, 1000003, StrategyFrac},
	}
	for _, c := range cases {
		if got := Choose(c.self, c.lower); got != c.want {
			t.Errorf("Choose(%d, %d) = %s, want %s", c.self, c.lower, got, c.want)
		}
	}
}

func TestBuildRejectsBadShift(t *testing.T) {
	lower := mock.New(32, core.Config{})
	if _, err := Build(lower.Clock(), StrategyShift, 1000, 3, core.Config{}); err == nil {
		t.Error("Expected error for non power-of-two shift")
	}
	if _, err := Build(lower.Clock(), Strategy("bogus"), 1000, 1000, core.Config{}); err == nil {
		t.Error("Expected error for unknown strategy")
	}
	if _, err := Build(lower.Clock(), StrategyFrac, 0, 1000, core.Config{}); err == nil {
		t.Error("Expected error for zero frequency")
	}
}

func TestSingleProxyOnLowerClock(t *testing.T) {
	lower := mock.New(32, core.Config{})
	msec := NewMulDiv(lower.Clock(), 1000, 1, core.Config{Name: "msec"})
	clock := msec.Clock()

	var fired []int
	for i := 1; i <= 3; i++ {
		clock.Set(&core.Entry{
			Callback: func(arg any) { fired = append(fired, arg.(int)) },
			Arg:      i,
		}, uint32(i)*5)
	}

	if n := lower.Clock().Len(); n != 1 {
		t.Fatalf("Expected one proxy entry on lower clock, got %d", n)
	}
	if lower.Target() != 5000 {
		t.Errorf("Proxy armed for %d lower ticks, want 5000", lower.Target())
	}

	lower.Advance(5000)
	if diff := cmp.Diff([]int{1}, fired); diff != "" {
		t.Errorf("Fired mismatch (-want +got):\n%s", diff)
	}
	if n := lower.Clock().Len(); n != 1 {
		t.Errorf("Expected one proxy entry after firing, got %d", n)
	}

	lower.Advance(10000)
	if diff := cmp.Diff([]int{1, 2, 3}, fired); diff != "" {
		t.Errorf("Fired mismatch (-want +got):\n%s", diff)
	}
	if n := lower.Clock().Len(); n != 1 {
		t.Errorf("Narrow converted clock should keep its checkpoint proxy, got %d", n)
	}
}

func TestDelayedProxyAlarmAfterRearm(t *testing.T) {
	lower := mock.New(32, core.Config{})
	usec := NewShift(lower.Clock(), 0, core.Config{Name: "usec"})
	clock := usec.Clock()

	fired := 0
	e := &core.Entry{Callback: func(any) { fired++ }}
	clock.Set(e, 1000)

	// The lower handler has popped the proxy at t=1000 but not yet called
	// into the converted clock when a task moves e out to 5000 ticks
	lower.Clock().Remove(&usec.proxy)
	lower.Jump(1000)
	clock.Set(e, 5000)
	usec.expired(nil)

	if fired != 0 || !clock.IsSet(e) {
		t.Fatalf("Re-armed entry fired on the stale alarm: fired=%d set=%v", fired, clock.IsSet(e))
	}
	if got := clock.Stats().Handlers; got != 0 {
		t.Errorf("Stale alarm counted as a handler run: %d", got)
	}
	if lower.Target() != 5000 {
		t.Errorf("Proxy armed for %d lower ticks, want 5000", lower.Target())
	}

	lower.Advance(4999)
	if fired != 0 {
		t.Fatalf("Entry fired at %d, before its deadline", lower.Value())
	}
	lower.Advance(1)
	if fired != 1 {
		t.Errorf("Entry due at 6000 not fired at %d", lower.Value())
	}
}

func TestConvertedNow(t *testing.T) {
	lower := mock.New(32, core.Config{})
	msec := NewMulDiv(lower.Clock(), 1000, 1, core.Config{})

	lower.Advance(123456)
	if got := msec.Clock().Now(); got != 123 {
		t.Errorf("Now() = %d, want 123", got)
	}
}

func TestConvertedNowAcrossLowerWrap(t *testing.T) {
	lower := mock.New(32, core.Config{})
	lower.Jump(0xffffffff - 1999)
	sec := NewShift(lower.Clock(), 0, core.Config{})
	slow := NewMulDiv(lower.Clock(), 1000, 1, core.Config{})

	before := slow.Clock().Now()
	lower.Advance(4000)
	after := slow.Clock().Now()
	// 2^32 lower ticks are not a whole number of msec, so the wrap may
	// add up to one tick
	if d := after - before; d < 4 || d > 5 {
		t.Errorf("Converted clock moved %d across lower wrap, want 4 or 5", d)
	}
	if got := sec.Clock().Now(); got != 2000 {
		t.Errorf("Identity shift Now() = %d, want 2000", got)
	}
}

func TestCancelRemovesProxy(t *testing.T) {
	lower := mock.New(32, core.Config{})
	fast := NewShift(lower.Clock(), 3, core.Config{})
	clock := fast.Clock()

	e := &core.Entry{Callback: func(any) {}}
	clock.Set(e, 80)
	if lower.Clock().Len() != 1 || lower.Target() != 10 {
		t.Fatalf("Proxy not armed: len=%d target=%d", lower.Clock().Len(), lower.Target())
	}

	clock.Remove(e)
	if lower.Clock().Len() != 0 {
		t.Errorf("Proxy still queued after cancel")
	}
	if lower.Calls.Cancel != 1 {
		t.Errorf("Expected lower backend cancelled once, got %d", lower.Calls.Cancel)
	}
}

func TestOnDemandChain(t *testing.T) {
	lower := mock.New(32, core.Config{OnDemand: true})
	fast := NewShift(lower.Clock(), 2, core.Config{OnDemand: true})
	clock := fast.Clock()

	clock.Acquire()
	if !lower.Running() || lower.Clock().Users() != 1 {
		t.Fatalf("Acquire did not start lower clock: running=%v users=%d", lower.Running(), lower.Clock().Users())
	}
	clock.Release()
	if lower.Running() || lower.Calls.Stop != 1 {
		t.Fatalf("Release did not stop lower clock: running=%v calls=%+v", lower.Running(), lower.Calls)
	}

	count := 0
	clock.Set(&core.Entry{Callback: func(any) { count++ }}, 40)
	if !lower.Running() {
		t.Fatal("Set did not start lower clock")
	}

	lower.Advance(10)
	if count != 1 {
		t.Fatalf("Expected one callback, got %d", count)
	}
	if lower.Running() || lower.Clock().Users() != 0 || clock.Users() != 0 {
		t.Errorf("Chain not released: running=%v lower users=%d users=%d",
			lower.Running(), lower.Clock().Users(), clock.Users())
	}
}

func TestFromFrequencies(t *testing.T) {
	lower := mock.New(32, core.Config{})
	usec, err := FromFrequencies(lower.Clock(), 1000000, 250000, core.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := usec.Converter().(*Shift); !ok {
		t.Errorf("Expected shift converter, got %T", usec.Converter())
	}

	msec, err := FromFrequencies(lower.Clock(), 1000, 1000000, core.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := msec.Converter().(*MulDiv); !ok {
		t.Errorf("Expected muldiv converter, got %T", msec.Converter())
	}
	if msec.Lower() != lower.Clock() {
		t.Error("Lower() does not return the lower clock")
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{
		"":       StrategyAuto,
		"auto":   StrategyAuto,
		"frac":   StrategyFrac,
		"shift":  StrategyShift,
		"muldiv": StrategyMulDiv,
	} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseStrategy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("exact"); err == nil {
		t.Error("Expected error for unknown strategy")
	}
}
