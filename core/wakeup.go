package core

// Wakeup carries an alarm from alarm context over to a waiting goroutine.
// Its callback only posts to a buffered channel and never blocks, so it is
// safe at interrupt priority; the receiver does the real work.
type Wakeup struct {
	entry Entry
	ch    chan struct{}
}

// NewWakeup creates an idle Wakeup
func NewWakeup() *Wakeup {
	w := &Wakeup{ch: make(chan struct{}, 1)}
	w.entry.Callback = w.fire
	return w
}

func (w *Wakeup) fire(any) {
	select {
	case w.ch <- struct{}{}:
	default:
		// Receiver has not consumed the previous signal yet
	}
}

// Arm schedules a signal ticks from now on c, minus the clock's sleep
// adjustment. An earlier arm still pending is cancelled and a signal left
// over from an earlier expiry is discarded. Arm must not be called while
// the previous expiry's callback may still be running, which holds once
// its signal was received or Disarm returned true.
func (w *Wakeup) Arm(c *Clock, ticks uint32) uint32 {
	adjust := c.AdjustSleep()
	if ticks > adjust {
		ticks -= adjust
	} else {
		ticks = 0
	}

	// Unqueue first so the old arm cannot post after the drain
	c.Remove(&w.entry)
	select {
	case <-w.ch:
	default:
	}
	return c.Set(&w.entry, ticks)
}

// Disarm cancels a pending signal. It returns false once the alarm has
// fired, in which case C has been or will be signalled.
func (w *Wakeup) Disarm(c *Clock) bool {
	return c.Remove(&w.entry)
}

// C returns the channel signalled when the alarm fires
func (w *Wakeup) C() <-chan struct{} {
	return w.ch
}
