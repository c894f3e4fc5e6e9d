//go:build rp2040

package main

import (
	"machine"

	"ztimer/board"
	"ztimer/convert"
	"ztimer/core"
)

const (
	blinkMillis  = 500
	reportBlinks = 10
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	// Debug output over USB CDC
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s))
		machine.Serial.Write([]byte("\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	setupClocks()

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	msec := board.Default.MustClock(board.Msec)
	sec := board.Default.MustClock(board.Sec)
	w := core.NewWakeup()

	for n := 1; ; n++ {
		w.Arm(msec, blinkMillis)
		<-w.C()
		led.Set(!led.Get())

		if n%reportBlinks == 0 {
			core.DebugPrintln("[RUN] uptime " + itoa(int(sec.Now())) + "s")
			core.DumpTimingRing()
		}
	}
}

// setupClocks registers the board's clocks: the 1 MHz TIMER as usec, with
// msec and sec derived from it
func setupClocks() {
	usec := newTimerClock(core.Config{Name: board.Usec, AdjustSet: 1, AdjustSleep: 2})
	mustRegister(board.Info{Name: board.Usec, Frequency: 1000000, Clock: usec})

	msec, err := convert.FromFrequencies(usec, 1000, 1000000, core.Config{Name: board.Msec})
	if err != nil {
		panic(err)
	}
	mustRegister(board.Info{Name: board.Msec, Frequency: 1000, Lower: board.Usec, Clock: msec.Clock()})

	sec, err := convert.FromFrequencies(msec.Clock(), 1, 1000, core.Config{Name: board.Sec})
	if err != nil {
		panic(err)
	}
	mustRegister(board.Info{Name: board.Sec, Frequency: 1, Lower: board.Msec, Clock: sec.Clock()})
}

func mustRegister(info board.Info) {
	if err := board.Default.Register(info); err != nil {
		panic(err)
	}
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	// Handle negative numbers
	negative := i < 0
	if negative {
		i = -i
	}

	// Convert to string
	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
