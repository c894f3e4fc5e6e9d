package convert

import (
	"math"

	"ztimer/core"
	"ztimer/frac"
)

// Frac converts between arbitrary frequencies with fixed-point factors.
// Conversions are approximate: see the package tests for the error bound.
type Frac struct {
	scaleSet frac.Frac // self ticks to lower ticks
	scaleNow frac.Frac // lower ticks to self ticks
	round    uint32
}

// NewFracConverter returns the converter for freqSelf on top of freqLower
func NewFracConverter(freqSelf, freqLower uint32) *Frac {
	if freqSelf == 0 || freqLower == 0 {
		panic("convert: zero frequency")
	}
	f := &Frac{
		scaleSet: frac.New(freqLower, freqSelf),
		scaleNow: frac.New(freqSelf, freqLower),
	}
	if freqSelf >= freqLower {
		// Compensates truncation so alarms do not land early. This is the
		// integer part of the ratio, not an exact round-up.
		f.round = freqSelf / freqLower
	}
	return f
}

// ToLower converts an interval of this clock to lower ticks
func (f *Frac) ToLower(ticks uint32) uint32 {
	if ticks > math.MaxUint32-f.round {
		ticks = math.MaxUint32
	} else {
		ticks += f.round
	}
	return f.scaleSet.Scale(ticks)
}

// ToSelf converts lower ticks to this clock
func (f *Frac) ToSelf(ticks uint32) uint32 {
	return f.scaleNow.Scale(ticks)
}

// NewFrac derives a freqSelf clock from lower running at freqLower. A clock
// slower than its lower clock wraps before 2^32 and gets extension.
func NewFrac(lower *core.Clock, freqSelf, freqLower uint32, cfg core.Config) *Clock {
	f := NewFracConverter(freqSelf, freqLower)
	cfg.MaxValue = math.MaxUint32
	if freqSelf < freqLower {
		cfg.MaxValue = f.ToSelf(math.MaxUint32)
	}
	return New(lower, f, cfg)
}
