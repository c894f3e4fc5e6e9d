//go:build !tinygo

package core

import "sync"

// irqLock is the per-clock critical section. On regular Go the alarm
// "interrupt" is a goroutine, so a mutex stands in for disabling interrupts.
type irqLock struct {
	mu sync.Mutex
}

// disableInterrupts enters the critical section
func (l *irqLock) disableInterrupts() {
	l.mu.Lock()
}

// restoreInterrupts leaves the critical section
func (l *irqLock) restoreInterrupts() {
	l.mu.Unlock()
}
