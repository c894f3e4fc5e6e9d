package convert

import (
	"fmt"
	"math/bits"

	"ztimer/core"
)

// Strategy names a conversion method
type Strategy string

const (
	StrategyAuto   Strategy = "auto"
	StrategyFrac   Strategy = "frac"
	StrategyShift  Strategy = "shift"
	StrategyMulDiv Strategy = "muldiv"
)

// maxMulDivFactor bounds the reduced factors for which auto selection
// prefers exact 64-bit arithmetic over fixed-point scaling
const maxMulDivFactor = 1 << 16

// Choose returns the strategy auto selection uses for a freqSelf clock on
// top of freqLower
func Choose(freqSelf, freqLower uint32) Strategy {
	if _, ok := shiftFor(freqSelf, freqLower); ok {
		return StrategyShift
	}
	mul, div := reduce(freqLower, freqSelf)
	if mul <= maxMulDivFactor && div <= maxMulDivFactor {
		return StrategyMulDiv
	}
	return StrategyFrac
}

// Build derives a freqSelf clock from lower with the given strategy
func Build(lower *core.Clock, strategy Strategy, freqSelf, freqLower uint32, cfg core.Config) (*Clock, error) {
	if freqSelf == 0 || freqLower == 0 {
		return nil, fmt.Errorf("convert: zero frequency (self %d, lower %d)", freqSelf, freqLower)
	}
	if strategy == "" || strategy == StrategyAuto {
		strategy = Choose(freqSelf, freqLower)
	}

	switch strategy {
	case StrategyShift:
		shift, ok := shiftFor(freqSelf, freqLower)
		if !ok {
			return nil, fmt.Errorf("convert: %d Hz is not %d Hz times a power of two", freqSelf, freqLower)
		}
		return NewShift(lower, shift, cfg), nil
	case StrategyMulDiv:
		mul, div := reduce(freqLower, freqSelf)
		return NewMulDiv(lower, mul, div, cfg), nil
	case StrategyFrac:
		return NewFrac(lower, freqSelf, freqLower, cfg), nil
	default:
		return nil, fmt.Errorf("convert: unknown strategy %q", strategy)
	}
}

// FromFrequencies derives a freqSelf clock from lower with the strategy
// Choose picks
func FromFrequencies(lower *core.Clock, freqSelf, freqLower uint32, cfg core.Config) (*Clock, error) {
	return Build(lower, StrategyAuto, freqSelf, freqLower, cfg)
}

// ParseStrategy maps a configuration string to a Strategy. The empty
// string means auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", StrategyAuto:
		return StrategyAuto, nil
	case StrategyFrac, StrategyShift, StrategyMulDiv:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("convert: unknown strategy %q", s)
}

// shiftFor returns s when freqSelf == freqLower << s
func shiftFor(freqSelf, freqLower uint32) (uint8, bool) {
	if freqSelf < freqLower || freqSelf%freqLower != 0 {
		return 0, false
	}
	ratio := freqSelf / freqLower
	if bits.OnesCount32(ratio) != 1 {
		return 0, false
	}
	return uint8(bits.TrailingZeros32(ratio)), true
}

// reduce divides a and b by their greatest common divisor
func reduce(a, b uint32) (uint32, uint32) {
	x, y := a, b
	for y != 0 {
		x, y = y, x%y
	}
	return a / x, b / x
}
