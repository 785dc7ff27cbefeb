package mca

import (
	"github.com/pkg/errors"

	"github.com/vfc-go/mca/pkg/logging"
	"github.com/vfc-go/mca/pkg/mcaconfig"
	"github.com/vfc-go/mca/pkg/rngstream"
	"github.com/vfc-go/mca/pkg/telemetry"
)

// Op identifies one of the four binary arithmetic operators the engine
// perturbs.
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	default:
		return "?"
	}
}

// ParseOp parses a CLI-friendly operator token (+, -, *, / or their
// add/sub/mul/div spellings) into an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "+", "add":
		return OpAdd, nil
	case "-", "sub":
		return OpSub, nil
	case "*", "mul":
		return OpMul, nil
	case "/", "div":
		return OpDiv, nil
	default:
		return 0, errors.Errorf("op: invalid value %q, must be one of +|-|*|/", s)
	}
}

// Engine perturbs binary32/binary64 arithmetic per a mcaconfig.Context. An
// Engine is safe for concurrent use: each call borrows its own RNG stream
// from the pool for the duration of the call.
type Engine struct {
	ctx       *mcaconfig.Context
	pool      *rngstream.Pool
	logger    *logging.Logger
	collector *telemetry.Collector
}

// New builds an Engine over ctx. ctx may be reconfigured concurrently
// (pkg/reload does this); the Engine always reads the live precision/mode.
// When a logger is attached (WithLogger), New logs every effective option
// once as a single Info event.
func New(ctx *mcaconfig.Context, opts ...Option) *Engine {
	e := &Engine{
		ctx:  ctx,
		pool: rngstream.NewPool(ctx.Seed(), ctx.ChooseSeed()),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger != nil {
		e.logger.Info("mca configuration",
			"precision_binary32", ctx.PrecisionBinary32(),
			"precision_binary64", ctx.PrecisionBinary64(),
			"mode", ctx.Mode().String(),
			"error_mode", ctx.ErrorMode().String(),
			"max_abs_error_exponent", ctx.MaxAbsErrorExponent(),
			"daz", ctx.DAZ(),
			"ftz", ctx.FTZ(),
			"sparsity", ctx.Sparsity(),
			"seed", ctx.Seed(),
			"choose_seed", ctx.ChooseSeed(),
		)
	}
	return e
}

// Context returns the configuration this Engine perturbs against.
func (e *Engine) Context() *mcaconfig.Context { return e.ctx }

// Collector returns the telemetry Collector this Engine reports to, or nil
// if none was attached via WithCollector.
func (e *Engine) Collector() *telemetry.Collector { return e.collector }

// recordOp increments the per-format/operator operation counter, a no-op
// when no Collector is attached.
func (e *Engine) recordOp(format string, op Op) {
	if e.collector == nil {
		return
	}
	e.collector.OperationsTotal.WithLabelValues(format, op.String()).Inc()
}

// recordSkip increments the noise-skip counter for the given reason
// (sparsity, representable), a no-op when no Collector is attached.
func (e *Engine) recordSkip(format, reason string) {
	if e.collector == nil {
		return
	}
	e.collector.NoiseSkipped.WithLabelValues(format, reason).Inc()
}

// recordNaNFallback increments the binary64 NaN-recomputation counter, a
// no-op when no Collector is attached.
func (e *Engine) recordNaNFallback() {
	if e.collector == nil {
		return
	}
	e.collector.NaNFallbacks.Inc()
}

func (e *Engine) stream() *rngstream.Stream {
	return e.pool.Get()
}

func (e *Engine) release(s *rngstream.Stream) {
	e.pool.Put(s)
}

func nativeOp64(op Op, a, b float64) float64 {
	switch op {
	case OpAdd:
		return a + b
	case OpSub:
		return a - b
	case OpMul:
		return a * b
	case OpDiv:
		return a / b
	default:
		panic("mca: invalid operator")
	}
}
