//go:build rp2040

package main

import (
	"device/rp"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"ztimer/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerALARM3   = timerBase + 0x1C // Alarm 3 target, writing arms it
	timerARMED    = timerBase + 0x20 // Armed alarms, write 1 to disarm
	timerTIMERAWL = timerBase + 0x28 // Raw timer low word, no latching
	timerINTR     = timerBase + 0x34 // Raw interrupts, write 1 to clear
	timerINTE     = timerBase + 0x38 // Interrupt enable
	timerINTF     = timerBase + 0x3C // Interrupt force

	alarmBit = 1 << 3

	// An alarm closer than this may be missed while it is being written
	minAlarmTicks = 2
)

var (
	timerAlarm = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM3)))
	timerArmed = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	timerRAWL  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	timerIntr  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerInte  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
	timerIntf  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTF)))
)

// alarmBackend drives a clock from the 1 MHz TIMER and its alarm 3. The
// runtime keeps alarm 0 for its own sleeps.
type alarmBackend struct {
	clock *core.Clock
}

// newTimerClock sets up alarm 3 and returns the microsecond clock on top
// of it
func newTimerClock(cfg core.Config) *core.Clock {
	b := &alarmBackend{}
	b.clock = core.NewClock(b, cfg)
	timerClock = b

	timerArmed.Set(alarmBit)
	timerIntr.Set(alarmBit)
	timerInte.SetBits(alarmBit)

	intr := interrupt.New(rp.IRQ_TIMER_IRQ_3, timerIRQ)
	intr.Enable()
	return b.clock
}

var timerClock *alarmBackend

func timerIRQ(interrupt.Interrupt) {
	timerIntf.ClearBits(alarmBit)
	timerIntr.Set(alarmBit)
	if timerClock != nil {
		timerClock.clock.Handler()
	}
}

// Set arms alarm 3 ticks from now. The alarm matches on equality, so a
// target that went by while it was written is forced instead.
func (b *alarmBackend) Set(ticks uint32) {
	if ticks < minAlarmTicks {
		ticks = minAlarmTicks
	}
	target := timerRAWL.Get() + ticks
	timerAlarm.Set(target)

	if int32(timerRAWL.Get()-target) >= 0 && timerArmed.HasBits(alarmBit) {
		timerArmed.Set(alarmBit)
		timerIntf.SetBits(alarmBit)
	}
}

// Now returns the low word of the microsecond counter
func (b *alarmBackend) Now() uint32 {
	return timerRAWL.Get()
}

// Cancel disarms alarm 3 and drops a pending interrupt
func (b *alarmBackend) Cancel() {
	timerArmed.Set(alarmBit)
	timerIntf.ClearBits(alarmBit)
	timerIntr.Set(alarmBit)
}
