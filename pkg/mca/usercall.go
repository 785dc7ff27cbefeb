package mca

import (
	"github.com/vfc-go/mca/pkg/ieee"
	"github.com/vfc-go/mca/pkg/logging"
	"github.com/vfc-go/mca/pkg/telemetry"
)

// UserCallID identifies one of the backend's variadic user-call entries —
// the vtable slot a host uses for operations that don't fit the four
// binary arithmetic functions.
type UserCallID int

const (
	// UserCallInexact applies the fast relative perturbation to a single
	// value, in place of one of the four binary operators.
	UserCallInexact UserCallID = iota
	// UserCallSetPrecisionBinary32 replaces the binary32 virtual precision.
	UserCallSetPrecisionBinary32
	// UserCallSetPrecisionBinary64 replaces the binary64 virtual precision.
	UserCallSetPrecisionBinary64
)

// FType names the operand width INEXACT perturbs, mirroring the host
// language's float/double/quad triad. QUAD has no native Go
// representation; it is perturbed at the engine's internal Wide working
// precision and narrowed back to float64.
type FType int

const (
	FTypeFloat FType = iota
	FTypeDouble
	FTypeQuad
)

// UserCall dispatches id against args, matching the backend vtable's
// variadic entry point. An unrecognized id or malformed args logs a
// warning and returns (nil, nil) — non-fatal, per the backend's own
// "unknown user-call: warn and return" contract.
func (e *Engine) UserCall(id UserCallID, args ...interface{}) (interface{}, error) {
	switch id {
	case UserCallInexact:
		return e.userCallInexact(args)
	case UserCallSetPrecisionBinary32:
		return nil, e.userCallSetPrecision(args, e.ctx.SetPrecisionBinary32)
	case UserCallSetPrecisionBinary64:
		return nil, e.userCallSetPrecision(args, e.ctx.SetPrecisionBinary64)
	default:
		e.warnf("unknown user-call id", "id", int(id))
		return nil, nil
	}
}

func (e *Engine) userCallInexact(args []interface{}) (interface{}, error) {
	if len(args) != 3 {
		e.warnf("usercall inexact: expected 3 args (ftype, value, precision)", "got", len(args))
		return nil, nil
	}
	ftype, ok := args[0].(FType)
	if !ok {
		e.warnf("usercall inexact: bad ftype argument")
		return nil, nil
	}
	precision, ok := args[2].(int)
	if !ok {
		e.warnf("usercall inexact: bad precision argument")
		return nil, nil
	}

	switch ftype {
	case FTypeFloat:
		value, ok := args[1].(float32)
		if !ok {
			e.warnf("usercall inexact: value does not match ftype float")
			return nil, nil
		}
		return e.InexactFloat32(value, precision), nil
	case FTypeDouble:
		value, ok := args[1].(float64)
		if !ok {
			e.warnf("usercall inexact: value does not match ftype double")
			return nil, nil
		}
		return e.InexactFloat64(value, precision), nil
	case FTypeQuad:
		value, ok := args[1].(float64)
		if !ok {
			e.warnf("usercall inexact: value does not match ftype quad")
			return nil, nil
		}
		t := resolvePrecisionCall(precision, ieee.WidePrec)
		s := e.stream()
		defer e.release(s)
		w := e.fastInexactWide(ieee.WideFromFloat64(value), t, s)
		return ieee.WideToFloat64(w), nil
	default:
		e.warnf("usercall inexact: unknown ftype", "ftype", int(ftype))
		return nil, nil
	}
}

func (e *Engine) userCallSetPrecision(args []interface{}, set func(int) error) error {
	if len(args) != 1 {
		e.warnf("usercall set-precision: expected 1 arg (precision)", "got", len(args))
		return nil
	}
	precision, ok := args[0].(int)
	if !ok {
		e.warnf("usercall set-precision: bad precision argument")
		return nil
	}
	return set(precision)
}

func (e *Engine) warnf(msg string, kv ...interface{}) {
	if e.logger == nil {
		return
	}
	e.logger.Warn(msg, kv...)
}

// WithLogger attaches a logger an Engine uses to report non-fatal
// conditions — chiefly UserCall's "unknown id: warn and return" path.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithCollector attaches a telemetry Collector an Engine updates as it
// perturbs operations: OperationsTotal per call, NoiseSkipped on the
// sparsity/representability early-outs, and NaNFallbacks on binary64's
// native-arithmetic NaN recovery.
func WithCollector(c *telemetry.Collector) Option {
	return func(e *Engine) { e.collector = c }
}

// Option configures an Engine at construction.
type Option func(*Engine)
