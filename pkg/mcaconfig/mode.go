package mcaconfig

import (
	"strings"

	"github.com/pkg/errors"
)

// Mode selects which side(s) of an operation get perturbed.
type Mode int

const (
	// ModeIEEE disables perturbation entirely; every operation is the plain
	// IEEE-754 result.
	ModeIEEE Mode = iota
	// ModeMCA perturbs both operands (precision bounding) and the result
	// (random rounding).
	ModeMCA
	// ModePB (precision bounding) perturbs only the operands.
	ModePB
	// ModeRR (random rounding) perturbs only the result, and only when the
	// exact result is not already representable at the virtual precision.
	ModeRR
)

func (m Mode) String() string {
	switch m {
	case ModeIEEE:
		return "ieee"
	case ModeMCA:
		return "mca"
	case ModePB:
		return "pb"
	case ModeRR:
		return "rr"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "ieee":
		return ModeIEEE, nil
	case "mca":
		return ModeMCA, nil
	case "pb":
		return ModePB, nil
	case "rr":
		return ModeRR, nil
	default:
		return 0, errors.Errorf("mode: invalid value %q, must be one of ieee|mca|pb|rr", s)
	}
}

// ErrorMode selects which error model(s) contribute noise.
type ErrorMode int

const (
	// ErrorModeRel scales the noise exponent to the operand's own exponent.
	ErrorModeRel ErrorMode = iota
	// ErrorModeAbs fixes the noise exponent regardless of operand magnitude.
	ErrorModeAbs
	// ErrorModeAll applies both relative and absolute noise.
	ErrorModeAll
)

// RelEnabled reports whether this error mode contributes relative noise.
func (e ErrorMode) RelEnabled() bool { return e == ErrorModeRel || e == ErrorModeAll }

// AbsEnabled reports whether this error mode contributes absolute noise.
func (e ErrorMode) AbsEnabled() bool { return e == ErrorModeAbs || e == ErrorModeAll }

func (e ErrorMode) String() string {
	switch e {
	case ErrorModeRel:
		return "rel"
	case ErrorModeAbs:
		return "abs"
	case ErrorModeAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseErrorMode parses an error-mode name, case-insensitively.
func ParseErrorMode(s string) (ErrorMode, error) {
	switch strings.ToLower(s) {
	case "rel":
		return ErrorModeRel, nil
	case "abs":
		return ErrorModeAbs, nil
	case "all":
		return ErrorModeAll, nil
	default:
		return 0, errors.Errorf("error-mode: invalid value %q, must be one of rel|abs|all", s)
	}
}
