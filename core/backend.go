package core

// Backend is the set of operations a concrete clock must provide.
// Hardware peripherals, derived (converted) clocks and the test mock all
// implement it. The Clock never calls a Backend outside its own critical
// section, except Now on clocks without extension.
type Backend interface {
	// Set arms the alarm to fire ticks from the backend's current value.
	// Any previously armed alarm is replaced. When the alarm fires the
	// backend must call Handler on the owning Clock from alarm context.
	Set(ticks uint32)

	// Now returns the raw counter value
	Now() uint32

	// Cancel disarms the alarm. Cancelling an idle alarm is a no-op.
	Cancel()
}

// Starter is implemented by backends that can be powered down while no
// timer needs them. It is only used by on-demand clocks.
type Starter interface {
	Start()
	Stop()
}

// Acknowledger is implemented by backends whose alarm can be delivered
// after it was re-armed or cancelled. Handler drops the invocation when
// Ack reports that no alarm is outstanding, the same job a peripheral does
// by clearing its pending interrupt flag on re-arm.
type Acknowledger interface {
	Ack() bool
}
