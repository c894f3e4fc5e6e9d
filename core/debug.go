package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// TimingEvent captures a clock event for post-mortem analysis
type TimingEvent struct {
	EventType uint8  // Event type code
	Clock     uint8  // Clock id, see Clock.ID
	Time      uint32 // Clock time at the event
	Value1    uint32 // Context-dependent value
	Value2    uint32 // Context-dependent value
}

// Event type codes
const (
	EvtSet        = 1 // Entry set, Value1 = interval after adjustment
	EvtRemove     = 2 // Entry removed
	EvtFire       = 3 // Entry callback about to run
	EvtArm        = 4 // Backend armed, Value1 = ticks
	EvtCancel     = 5 // Backend cancelled
	EvtCheckpoint = 6 // Intermediate wake-up of a narrow clock, Value1 = checkpoint
	EvtStart      = 7 // On-demand backend started
	EvtStop       = 8 // On-demand backend stopped
)

const (
	TimingRingSize = 32 // Keep last 32 events for post-mortem
)

var (
	// debugPrintln is the global debug print function (can be set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether debug output is active
	debugEnabled bool = false

	// Timing capture ring buffer (non-blocking, for post-mortem)
	timingRing     [TimingRingSize]TimingEvent
	timingRingHead uint8 // Next write position
	timingEnabled  bool  = true
	ringLock       irqLock

	// Async debug output channel
	debugChan chan string
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, logs, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// SetTimingEnabled turns timing capture on or off
func SetTimingEnabled(enabled bool) {
	ringLock.disableInterrupts()
	timingEnabled = enabled
	ringLock.restoreInterrupts()
}

// InitAsyncDebug starts the async debug output goroutine
// Call this after SetDebugWriter
func InitAsyncDebug() {
	debugChan = make(chan string, 16) // Buffer 16 messages
	go debugOutputWorker()
}

// debugOutputWorker runs in background, drains debug channel
func debugOutputWorker() {
	for msg := range debugChan {
		if debugPrintln != nil {
			debugPrintln(msg)
		}
	}
}

// DebugPrintln writes a debug message using the platform-specific writer
// Blocks if debug is enabled, so never call it from a timer callback
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// DebugAsync queues a debug message for async output (non-blocking)
// Safe from timer callbacks. Drops the message if the channel is full.
func DebugAsync(msg string) {
	if debugChan != nil {
		select {
		case debugChan <- msg:
		default:
			// Channel full, drop message (non-blocking)
		}
	}
}

// RecordTiming captures a timing event in the ring buffer
func RecordTiming(eventType, clock uint8, now, value1, value2 uint32) {
	ringLock.disableInterrupts()
	defer ringLock.restoreInterrupts()

	if !timingEnabled {
		return
	}
	idx := timingRingHead
	timingRing[idx] = TimingEvent{
		EventType: eventType,
		Clock:     clock,
		Time:      now,
		Value1:    value1,
		Value2:    value2,
	}
	timingRingHead = (idx + 1) % TimingRingSize
}

// TimingEvents returns the captured events, oldest first
func TimingEvents() []TimingEvent {
	ringLock.disableInterrupts()
	defer ringLock.restoreInterrupts()

	var out []TimingEvent
	start := timingRingHead
	for i := uint8(0); i < TimingRingSize; i++ {
		evt := timingRing[(start+i)%TimingRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns the printable name of an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtSet:
		return "SET"
	case EvtRemove:
		return "REMOVE"
	case EvtFire:
		return "FIRE"
	case EvtArm:
		return "ARM"
	case EvtCancel:
		return "CANCEL"
	case EvtCheckpoint:
		return "CHECKPOINT"
	case EvtStart:
		return "START"
	case EvtStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// DumpTimingRing outputs the timing ring buffer (call on shutdown/error)
func DumpTimingRing() {
	if debugPrintln == nil {
		return
	}

	debugPrintln("[TIMING] === Timing Ring Dump ===")
	for _, evt := range TimingEvents() {
		debugPrintln("[TIMING] " + EventName(evt.EventType) +
			" clock=" + itoa(int(evt.Clock)) +
			" now=" + utoa(evt.Time) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[TIMING] === End Dump ===")
}

// ClearTimingRing clears the timing buffer
func ClearTimingRing() {
	ringLock.disableInterrupts()
	defer ringLock.restoreInterrupts()

	for i := range timingRing {
		timingRing[i] = TimingEvent{}
	}
	timingRingHead = 0
}
