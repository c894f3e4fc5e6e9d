package core

// insert links e into the list in sorted order. e.offset holds the
// interval from base on entry and the distance to its predecessor on
// return. Entries due at the same time keep insertion order.
func (c *Clock) insert(e *Entry) {
	e.owner = c

	if c.head == nil {
		e.next = nil
		c.head = e
		c.last = e
		c.tailSum = e.offset
		return
	}

	// Fast path: due after everything else
	if e.offset >= c.tailSum {
		e.offset -= c.tailSum
		e.next = nil
		c.last.next = e
		c.last = e
		c.tailSum += e.offset
		return
	}

	var prev *Entry
	sum := uint32(0)
	cur := c.head
	for cur != nil && sum+cur.offset <= e.offset {
		sum += cur.offset
		prev = cur
		cur = cur.next
	}

	// cur is never nil here, the fast path took everything past the tail
	e.offset -= sum
	cur.offset -= e.offset
	e.next = cur
	if prev == nil {
		c.head = e
	} else {
		prev.next = e
	}
}

// unlink removes e from the list, handing its offset to its successor so
// every later target stays the same. It reports whether e was found.
func (c *Clock) unlink(e *Entry) bool {
	if e.owner != c {
		return false
	}

	var prev *Entry
	for cur := c.head; cur != nil; prev, cur = cur, cur.next {
		if cur != e {
			continue
		}

		if prev == nil {
			c.head = e.next
		} else {
			prev.next = e.next
		}
		if e.next != nil {
			e.next.offset += e.offset
		} else {
			c.last = prev
			c.tailSum -= e.offset
		}
		e.next = nil
		e.owner = nil
		return true
	}
	return false
}

// isSet walks the list looking for e
func (c *Clock) isSet(e *Entry) bool {
	if e.owner != c {
		return false
	}
	if e == c.last {
		return true
	}
	for cur := c.head; cur != nil; cur = cur.next {
		if cur == e {
			return true
		}
	}
	return false
}

// popDue unlinks and returns the head if it is due, nil otherwise. Taking
// the last entry off an on-demand clock drops the list's implicit user.
func (c *Clock) popDue() *Entry {
	e := c.head
	if e == nil || e.offset != 0 {
		return nil
	}

	c.head = e.next
	e.next = nil
	e.owner = nil
	if c.head == nil {
		c.last = nil
		c.tailSum = 0
		if c.onDemand {
			c.release()
		}
	}
	c.stats.Fires++
	return e
}

// updateHeadOffset moves base to the current time, consuming elapsed ticks
// from the front of the list. Entries that are overdue end up with a zero
// offset.
func (c *Clock) updateHeadOffset() uint32 {
	now := c.now()
	diff := now - c.base

	consumed := diff
	if consumed > c.tailSum {
		consumed = c.tailSum
	}
	c.tailSum -= consumed

	for e := c.head; e != nil; e = e.next {
		if diff < e.offset {
			e.offset -= diff
			break
		}
		diff -= e.offset
		e.offset = 0
	}

	c.base = now
	return now
}
