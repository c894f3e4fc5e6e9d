//go:build tinygo

package core

import "runtime/interrupt"

// irqLock is the per-clock critical section. Each clock keeps its own saved
// state so that nested sections on an upper and a lower clock restore in
// the right order.
type irqLock struct {
	state interrupt.State
}

// disableInterrupts disables interrupts and remembers the previous state
func (l *irqLock) disableInterrupts() {
	l.state = interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func (l *irqLock) restoreInterrupts() {
	interrupt.Restore(l.state)
}
