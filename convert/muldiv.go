package convert

import (
	"math"

	"ztimer/core"
)

// MulDiv converts exactly between clocks whose frequencies have the ratio
// freqLower/freqSelf = mul/div, using 64-bit intermediates. Intervals are
// rounded up so an alarm never fires early.
type MulDiv struct {
	mul uint32
	div uint32
}

// NewMulDivConverter returns the converter for freqLower/freqSelf = mul/div
func NewMulDivConverter(mul, div uint32) *MulDiv {
	if mul == 0 || div == 0 {
		panic("convert: zero mul or div")
	}
	return &MulDiv{mul: mul, div: div}
}

// ToLower converts an interval of this clock to lower ticks, rounding up
func (m *MulDiv) ToLower(ticks uint32) uint32 {
	res := uint64(ticks) * uint64(m.mul)
	res = (res + uint64(m.div) - 1) / uint64(m.div)
	if res > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(res)
}

// ToSelf converts lower ticks to this clock, rounding down
func (m *MulDiv) ToSelf(ticks uint32) uint32 {
	return uint32(uint64(ticks) * uint64(m.div) / uint64(m.mul))
}

// MaxValue returns the value this clock reaches when the lower clock wraps
func (m *MulDiv) MaxValue() uint32 {
	if m.mul > m.div {
		return uint32(uint64(math.MaxUint32) * uint64(m.div) / uint64(m.mul))
	}
	return math.MaxUint32
}

// NewMulDiv derives a clock from lower where freqLower/freqSelf = mul/div
func NewMulDiv(lower *core.Clock, mul, div uint32, cfg core.Config) *Clock {
	m := NewMulDivConverter(mul, div)
	cfg.MaxValue = m.MaxValue()
	return New(lower, m, cfg)
}
