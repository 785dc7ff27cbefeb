package mcaconfig

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

// Context is the validated, runtime-usable form of Options. The virtual
// precisions and the mode are stored atomically because pkg/reload can
// swap them while arithmetic is in flight on other goroutines; every other
// field is fixed for the Context's lifetime, matching the backend's own
// contract that only precision and mode are ever changed after init.
type Context struct {
	t32  atomic.Int64
	t64  atomic.Int64
	mode atomic.Int64

	errorMode           ErrorMode
	maxAbsErrorExponent int32
	seed                uint64
	chooseSeed          bool
	daz                 bool
	ftz                 bool
	sparsity            float64
}

// New validates opts and builds a Context from it.
func New(opts Options) (*Context, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(err, "mca config")
	}

	mode, err := ParseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	errMode, err := ParseErrorMode(opts.ErrorMode)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		errorMode:           errMode,
		maxAbsErrorExponent: int32(opts.MaxAbsErrorExponent),
		seed:                opts.Seed,
		chooseSeed:          opts.ChooseSeed,
		daz:                 opts.DAZ,
		ftz:                 opts.FTZ,
		sparsity:            opts.Sparsity,
	}
	ctx.t32.Store(int64(opts.PrecisionBinary32))
	ctx.t64.Store(int64(opts.PrecisionBinary64))
	ctx.mode.Store(int64(mode))
	return ctx, nil
}

// PrecisionBinary32 returns the current virtual precision for binary32.
func (c *Context) PrecisionBinary32() int { return int(c.t32.Load()) }

// PrecisionBinary64 returns the current virtual precision for binary64.
func (c *Context) PrecisionBinary64() int { return int(c.t64.Load()) }

// Mode returns the current operating mode.
func (c *Context) Mode() Mode { return Mode(c.mode.Load()) }

// SetPrecisionBinary32 atomically updates the binary32 virtual precision,
// matching the backend's SET_PRECISION_BINARY32 usercall. A value of zero
// or less is an offset from the format's default precision: 0 selects the
// default itself, -3 three bits fewer.
func (c *Context) SetPrecisionBinary32(t int) error {
	t = resolvePrecision(t, PrecisionBinary32Default)
	if t < PrecisionBinary32Min || t > PrecisionBinary32Max {
		return errors.Errorf("precision_binary32: %d out of range [%d,%d]", t, PrecisionBinary32Min, PrecisionBinary32Max)
	}
	c.t32.Store(int64(t))
	return nil
}

// SetPrecisionBinary64 atomically updates the binary64 virtual precision.
func (c *Context) SetPrecisionBinary64(t int) error {
	t = resolvePrecision(t, PrecisionBinary64Default)
	if t < PrecisionBinary64Min || t > PrecisionBinary64Max {
		return errors.Errorf("precision_binary64: %d out of range [%d,%d]", t, PrecisionBinary64Min, PrecisionBinary64Max)
	}
	c.t64.Store(int64(t))
	return nil
}

// SetMode atomically updates the operating mode.
func (c *Context) SetMode(m Mode) {
	c.mode.Store(int64(m))
}

// resolvePrecision implements the "precision <= 0 is an offset from the
// format default" convention: it returns format + t for t <= 0, else t.
func resolvePrecision(t, format int) int {
	if t <= 0 {
		return format + t
	}
	return t
}

func (c *Context) ErrorMode() ErrorMode             { return c.errorMode }
func (c *Context) MaxAbsErrorExponent() int32       { return c.maxAbsErrorExponent }
func (c *Context) Seed() uint64                     { return c.seed }
func (c *Context) ChooseSeed() bool                 { return c.chooseSeed }
func (c *Context) DAZ() bool                        { return c.daz }
func (c *Context) FTZ() bool                        { return c.ftz }

// Snapshot captures the Context's current state as an Options value —
// useful for building a derived Context (pkg/experiment's IEEE-mode
// reference engine borrows everything but the mode) or for persisting the
// live configuration back to disk.
func (c *Context) Snapshot() Options {
	return Options{
		PrecisionBinary32:   c.PrecisionBinary32(),
		PrecisionBinary64:   c.PrecisionBinary64(),
		Mode:                c.Mode().String(),
		ErrorMode:           c.errorMode.String(),
		MaxAbsErrorExponent: int(c.maxAbsErrorExponent),
		Seed:                c.seed,
		ChooseSeed:          c.chooseSeed,
		DAZ:                 c.daz,
		FTZ:                 c.ftz,
		Sparsity:            c.sparsity,
	}
}
func (c *Context) Sparsity() float64                { return c.sparsity }
