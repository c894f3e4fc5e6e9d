// Package frac scales 32-bit tick counts by a rational factor without
// dividing on every call. The factor num/den is split into an integer part
// and a 32-bit binary fraction computed once up front, so Scale costs two
// multiplications and a shift.
package frac

// Frac is a precomputed num/den scaling factor
type Frac struct {
	whole uint32 // integer part of num/den
	frac  uint32 // fractional part of num/den, in units of 2^-32
}

// New returns the factor num/den. den must not be zero.
func New(num, den uint32) Frac {
	if den == 0 {
		panic("frac: zero denominator")
	}
	rem := uint64(num % den)
	return Frac{
		whole: num / den,
		frac:  uint32((rem << 32) / uint64(den)),
	}
}

// Scale returns x*num/den modulo 2^32. The result is floor(x*num/den) or
// one less, since the fraction is truncated when it is computed and again
// when it is applied.
func (f Frac) Scale(x uint32) uint32 {
	return uint32(uint64(x)*uint64(f.whole) + (uint64(x)*uint64(f.frac))>>32)
}
