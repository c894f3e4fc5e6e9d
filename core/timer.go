package core

// Callback is run when an Entry expires. It executes in alarm context with
// the clock's critical section released: it may call Set or Remove on any
// clock, but it must not block. Work that needs task context is handed off
// with a Wakeup.
type Callback func(arg any)

// Entry represents one pending alarm. Entries are owned by the caller and
// linked into a clock's list in place; the clock never allocates or frees
// them. An Entry must stay reachable until it fires or is removed, and it
// may be queued on at most one clock at a time.
type Entry struct {
	Callback Callback
	Arg      any

	next   *Entry
	offset uint32 // ticks after the previous entry
	owner  *Clock // clock whose list holds the entry, nil when idle
}

// Pending describes a queued entry in a Clock snapshot
type Pending struct {
	Entry  *Entry
	Offset uint32 // ticks after the previous pending entry
	Target uint32 // absolute clock time the entry is due at
}
