package ieee

import "math/big"

// WidePrec is the working precision (mantissa bits, including the implicit
// leading bit) used as the binary128 substitute for binary64 operations.
// No hardware or software quad type ships in the Go ecosystem's example
// corpus; math/big.Float fixed at 113 bits (112 explicit mantissa bits, per
// spec's binary64 range) is the sanctioned stand-in per the design notes.
const WidePrec = 113

// NewWide returns a zero-valued Wide-precision float, rounding to nearest
// even as IEEE-754 does.
func NewWide() *big.Float {
	return new(big.Float).SetPrec(WidePrec).SetMode(big.ToNearestEven)
}

// WideFromFloat64 widens x into Wide precision. The conversion is exact:
// WidePrec exceeds float64's 53 significant bits.
func WideFromFloat64(x float64) *big.Float {
	return NewWide().SetFloat64(x)
}

// WideToFloat64 narrows x to float64, rounding to nearest even.
func WideToFloat64(x *big.Float) float64 {
	v, _ := x.Float64()
	return v
}

// ClassWide classifies a Wide value. big.Float has no subnormal encoding and
// cannot hold NaN (arithmetic that would produce one panics with
// big.ErrNaN, which callers must catch before classifying); ClassWide only
// ever returns Zero, Normal or Inf.
func ClassWide(x *big.Float) Class {
	switch {
	case x.IsInf():
		return Inf
	case x.Sign() == 0:
		return Zero
	default:
		return Normal
	}
}

// GetExpWide returns the unbiased exponent e such that 2^e <= |x| < 2^(e+1).
// The caller must check ClassWide(x) == Normal first.
func GetExpWide(x *big.Float) int32 {
	mant := NewWide()
	exp := x.MantExp(mant)
	return int32(exp) - 1
}

// AddExpWide returns a value with the same sign and mantissa bit pattern as
// x but with its binary exponent incremented by delta.
func AddExpWide(x *big.Float, delta int32) *big.Float {
	mant := NewWide()
	exp := x.MantExp(mant)
	return NewWide().SetMantExp(mant, exp+int(delta))
}

// RepresentableWide reports whether x is exactly representable with t
// significant mantissa bits: rounding x to t bits of precision and comparing
// against the original is equivalent to the low-bits-are-zero definition,
// and is the only practical test math/big.Float exposes.
func RepresentableWide(x *big.Float, t int) bool {
	if ClassWide(x) != Normal {
		return true
	}
	if t >= WidePrec {
		return true
	}
	rounded := new(big.Float).SetPrec(uint(t)).SetMode(big.ToNearestEven).Set(x)
	return rounded.Cmp(x) == 0
}

// DazWide and FtzWide exist for symmetry with the narrow-precision
// primitives; Wide values never classify as Subnormal; see ClassWide.
func DazWide(x *big.Float) *big.Float { return x }
func FtzWide(x *big.Float) *big.Float { return x }

// SafeOp runs a Wide arithmetic closure, converting the big.ErrNaN panic
// math/big raises for invalid operations (0*Inf, Inf-Inf, 0/0) into a bool
// result instead of letting it escape. Callers that observe nan=true must
// fall back to computing the operation natively to obtain a correctly
// signed IEEE NaN, since Wide cannot represent one.
func SafeOp(op func() *big.Float) (result *big.Float, nan bool) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(big.ErrNaN); ok {
				nan = true
				return
			}
			panic(r)
		}
	}()
	return op(), false
}
