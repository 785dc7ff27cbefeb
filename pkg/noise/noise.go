// Package noise draws the perturbation the MCA engine adds to a value:
// noise = rand() * 2^e for a caller-supplied exponent e, built by drawing a
// uniform float64 in (-0.5, 0.5) and retargeting its exponent field rather
// than multiplying, so the result stays exactly representable at the
// requested scale with no rounding of its own.
package noise

import (
	"math/big"

	"github.com/vfc-go/mca/pkg/ieee"
	"github.com/vfc-go/mca/pkg/rngstream"
)

// Binary64 returns a noise sample (u-0.5)*2^e drawn from s; its magnitude
// is strictly below 2^(e-1).
func Binary64(e int32, s *rngstream.Stream) float64 {
	u := s.Uniform01() - 0.5
	return ieee.AddExp64(u, e)
}

// Wide returns a working-precision noise sample (u-0.5)*2^e; its magnitude
// is strictly below 2^(e-1).
func Wide(e int32, s *rngstream.Stream) *big.Float {
	u := s.Uniform01() - 0.5
	return ieee.AddExpWide(ieee.WideFromFloat64(u), e)
}
