package convert

import (
	"math"

	"ztimer/core"
)

// Shift converts between clocks whose frequencies differ by a power of two.
// This clock runs 1<<shift times faster than its lower clock.
type Shift struct {
	shift uint8
}

// NewShiftConverter returns the converter for a ratio of 1<<shift. The
// ratio must be an exact power of two; nothing checks that.
func NewShiftConverter(shift uint8) *Shift {
	if shift >= 32 {
		panic("convert: shift out of range")
	}
	return &Shift{shift: shift}
}

// ToLower converts an interval of this clock to lower ticks
func (s *Shift) ToLower(ticks uint32) uint32 {
	return ticks >> s.shift
}

// ToSelf converts lower ticks to this clock
func (s *Shift) ToSelf(ticks uint32) uint32 {
	return ticks << s.shift
}

// NewShift derives a clock running 1<<shift times faster than lower
func NewShift(lower *core.Clock, shift uint8, cfg core.Config) *Clock {
	cfg.MaxValue = math.MaxUint32
	return New(lower, NewShiftConverter(shift), cfg)
}
