package mca

import (
	"math/big"

	"github.com/vfc-go/mca/pkg/ieee"
	"github.com/vfc-go/mca/pkg/mcaconfig"
)

// binary32 perturbs a op b for binary32 operands. Intermediate computation
// widens to float64, so the injected perturbation survives the operator
// itself instead of being absorbed by double-rounding.
func (e *Engine) binary32(a, b float32, op Op) float32 {
	if e.ctx.DAZ() {
		a = ieee.Daz32(a)
		b = ieee.Daz32(b)
	}

	s := e.stream()
	defer e.release(s)

	wa := float64(a)
	wb := float64(b)

	mode := e.ctx.Mode()
	t := e.ctx.PrecisionBinary32()
	if mode == mcaconfig.ModePB || mode == mcaconfig.ModeMCA {
		wa = e.inexact64(wa, t, s, "binary32")
		wb = e.inexact64(wb, t, s, "binary32")
	}

	res := nativeOp64(op, wa, wb)

	if mode == mcaconfig.ModeRR || mode == mcaconfig.ModeMCA {
		res = e.inexact64(res, t, s, "binary32")
	}

	out := float32(res)
	if e.ctx.FTZ() {
		out = ieee.Ftz32(out)
	}
	e.recordOp("binary32", op)
	return out
}

// binary64 perturbs a op b for binary64 operands. Intermediate computation
// widens to Wide (the binary128 substitute): see pkg/ieee for why, and
// SafeOp for how an invalid Wide operation (0/0, Inf-Inf, 0*Inf) is caught
// and re-computed natively to obtain a correctly signed NaN, since Wide
// cannot represent one.
func (e *Engine) binary64(a, b float64, op Op) float64 {
	if e.ctx.DAZ() {
		a = ieee.Daz64(a)
		b = ieee.Daz64(b)
	}

	s := e.stream()
	defer e.release(s)

	wa := ieee.WideFromFloat64(a)
	wb := ieee.WideFromFloat64(b)

	mode := e.ctx.Mode()
	t := e.ctx.PrecisionBinary64()
	if mode == mcaconfig.ModePB || mode == mcaconfig.ModeMCA {
		wa = e.inexactWide(wa, t, s, "binary64")
		wb = e.inexactWide(wb, t, s, "binary64")
	}

	res, isNaN := performWide(op, wa, wb)
	var out float64
	if isNaN {
		e.recordNaNFallback()
		out = nativeOp64(op, ieee.WideToFloat64(wa), ieee.WideToFloat64(wb))
	} else {
		if mode == mcaconfig.ModeRR || mode == mcaconfig.ModeMCA {
			res = e.inexactWide(res, t, s, "binary64")
		}
		out = ieee.WideToFloat64(res)
	}

	if e.ctx.FTZ() {
		out = ieee.Ftz64(out)
	}
	e.recordOp("binary64", op)
	return out
}

func performWide(op Op, a, b *big.Float) (*big.Float, bool) {
	return ieee.SafeOp(func() *big.Float {
		r := new(big.Float).SetPrec(ieee.WidePrec).SetMode(big.ToNearestEven)
		switch op {
		case OpAdd:
			r.Add(a, b)
		case OpSub:
			r.Sub(a, b)
		case OpMul:
			r.Mul(a, b)
		case OpDiv:
			r.Quo(a, b)
		default:
			panic("mca: invalid operator")
		}
		return r
	})
}

// AddFloat32 returns mca(a + b).
func (e *Engine) AddFloat32(a, b float32) float32 { return e.binary32(a, b, OpAdd) }

// SubFloat32 returns mca(a - b).
func (e *Engine) SubFloat32(a, b float32) float32 { return e.binary32(a, b, OpSub) }

// MulFloat32 returns mca(a * b).
func (e *Engine) MulFloat32(a, b float32) float32 { return e.binary32(a, b, OpMul) }

// DivFloat32 returns mca(a / b).
func (e *Engine) DivFloat32(a, b float32) float32 { return e.binary32(a, b, OpDiv) }

// AddFloat64 returns mca(a + b).
func (e *Engine) AddFloat64(a, b float64) float64 { return e.binary64(a, b, OpAdd) }

// SubFloat64 returns mca(a - b).
func (e *Engine) SubFloat64(a, b float64) float64 { return e.binary64(a, b, OpSub) }

// MulFloat64 returns mca(a * b).
func (e *Engine) MulFloat64(a, b float64) float64 { return e.binary64(a, b, OpMul) }

// DivFloat64 returns mca(a / b).
func (e *Engine) DivFloat64(a, b float64) float64 { return e.binary64(a, b, OpDiv) }

// InexactFloat32 perturbs x directly, outside of the four arithmetic
// operators, always adding relative-mode noise (never absolute, never
// representability- or sparsity-gated) at the given precision. A
// precision <= 0 means "precision relative to the context's current
// binary32 virtual precision" — precision -1 asks for one bit less than
// whatever the context currently carries.
func (e *Engine) InexactFloat32(x float32, precision int) float32 {
	t := resolvePrecisionCall(precision, e.ctx.PrecisionBinary32())
	s := e.stream()
	defer e.release(s)
	return float32(e.fastInexact64(float64(x), t, s))
}

// InexactFloat64 is InexactFloat32's binary64 analogue, widening to Wide.
func (e *Engine) InexactFloat64(x float64, precision int) float64 {
	t := resolvePrecisionCall(precision, e.ctx.PrecisionBinary64())
	s := e.stream()
	defer e.release(s)
	w := e.fastInexactWide(ieee.WideFromFloat64(x), t, s)
	return ieee.WideToFloat64(w)
}

func resolvePrecisionCall(precision, current int) int {
	if precision <= 0 {
		return current + precision
	}
	return precision
}
