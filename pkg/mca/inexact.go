// Package mca implements the Monte Carlo Arithmetic noise-injection engine:
// the binary32/binary64 operator drivers that widen, perturb, narrow, and
// optionally flush subnormal results, plus the direct "inexact" hook a
// caller can invoke on an arbitrary value outside of the four arithmetic
// operators.
package mca

import (
	"math/big"

	"github.com/vfc-go/mca/pkg/ieee"
	"github.com/vfc-go/mca/pkg/mcaconfig"
	"github.com/vfc-go/mca/pkg/noise"
	"github.com/vfc-go/mca/pkg/rngstream"
)

// inexact64 perturbs a float64 (the binary32 driver's working-precision
// value) toward virtual precision t, honoring mode, sparsity, and the
// active error model. Mode is assumed already gated by the caller for the
// binary-op drivers; the IEEE-mode check here is defense in depth and
// makes the function correct standalone too.
func (e *Engine) inexact64(x float64, t int, s *rngstream.Stream, format string) float64 {
	if e.ctx.Mode() == mcaconfig.ModeIEEE {
		return x
	}
	class := ieee.Class64(x)
	if !class.Noised() {
		return x
	}
	if e.ctx.Mode() == mcaconfig.ModeRR && ieee.Representable64(x, t) {
		e.recordSkip(format, "representable")
		return x
	}
	if s.Skip(e.ctx.Sparsity()) {
		e.recordSkip(format, "sparsity")
		return x
	}

	errMode := e.ctx.ErrorMode()
	result := x
	if errMode.RelEnabled() {
		eA := ieee.GetExp64(x)
		eRel := eA - int32(t-1)
		result += noise.Binary64(eRel, s)
	}
	if errMode.AbsEnabled() {
		result += noise.Binary64(e.ctx.MaxAbsErrorExponent(), s)
	}
	return result
}

// inexactWide is inexact64's analogue for the binary64 driver's Wide
// (binary128 substitute) working-precision value.
func (e *Engine) inexactWide(x *big.Float, t int, s *rngstream.Stream, format string) *big.Float {
	if e.ctx.Mode() == mcaconfig.ModeIEEE {
		return x
	}
	class := ieee.ClassWide(x)
	if class != ieee.Normal {
		return x
	}
	if e.ctx.Mode() == mcaconfig.ModeRR && ieee.RepresentableWide(x, t) {
		e.recordSkip(format, "representable")
		return x
	}
	if s.Skip(e.ctx.Sparsity()) {
		e.recordSkip(format, "sparsity")
		return x
	}

	errMode := e.ctx.ErrorMode()
	result := x
	if errMode.RelEnabled() {
		eA := ieee.GetExpWide(x)
		eRel := eA - int32(t-1)
		result = new(big.Float).SetPrec(ieee.WidePrec).Add(result, noise.Wide(eRel, s))
	}
	if errMode.AbsEnabled() {
		result = new(big.Float).SetPrec(ieee.WidePrec).Add(result, noise.Wide(e.ctx.MaxAbsErrorExponent(), s))
	}
	return result
}

// fastInexact64 implements the always-on relative-noise hook a caller
// invokes directly on a value outside of the four arithmetic operators: it
// skips the representability and sparsity checks inexact64 applies, and
// never contributes absolute-mode noise, matching the direct hook's
// "always adds noise even if X is exact" contract.
func (e *Engine) fastInexact64(x float64, t int, s *rngstream.Stream) float64 {
	if e.ctx.Mode() == mcaconfig.ModeIEEE {
		return x
	}
	if !ieee.Class64(x).Noised() {
		return x
	}
	eA := ieee.GetExp64(x)
	eRel := eA - int32(t-1)
	return x + noise.Binary64(eRel, s)
}

// fastInexactWide is fastInexact64's analogue on a Wide value.
func (e *Engine) fastInexactWide(x *big.Float, t int, s *rngstream.Stream) *big.Float {
	if e.ctx.Mode() == mcaconfig.ModeIEEE {
		return x
	}
	if ieee.ClassWide(x) != ieee.Normal {
		return x
	}
	eA := ieee.GetExpWide(x)
	eRel := eA - int32(t-1)
	return new(big.Float).SetPrec(ieee.WidePrec).Add(x, noise.Wide(eRel, s))
}
