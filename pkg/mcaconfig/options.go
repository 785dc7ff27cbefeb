package mcaconfig

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	PrecisionBinary32Min = 1
	PrecisionBinary32Max = 53
	PrecisionBinary64Min = 1
	PrecisionBinary64Max = 112

	PrecisionBinary32Default = 24
	PrecisionBinary64Default = 53
	ModeDefault              = ModeMCA
	ErrorModeDefault         = ErrorModeRel
	MaxAbsErrorExponentDefault = 112
	SparsityDefault          = 1.0
)

// Options is the on-disk / CLI-facing configuration surface for an MCA
// engine: every field the original backend exposed as a command-line
// option, carried here as a YAML document so it composes with cobra flags
// the way the rest of the ambient stack does.
type Options struct {
	PrecisionBinary32   int     `yaml:"precision_binary32"`
	PrecisionBinary64   int     `yaml:"precision_binary64"`
	Mode                string  `yaml:"mode"`
	ErrorMode           string  `yaml:"error_mode"`
	MaxAbsErrorExponent int     `yaml:"max_abs_error_exponent"`
	Seed                uint64  `yaml:"seed"`
	ChooseSeed          bool    `yaml:"choose_seed"`
	DAZ                 bool    `yaml:"daz"`
	FTZ                 bool    `yaml:"ftz"`
	Sparsity            float64 `yaml:"sparsity"`
}

// DefaultOptions mirrors the backend's built-in defaults: MCA mode,
// relative error, full precision on both formats, no sparsity skipping.
func DefaultOptions() Options {
	return Options{
		PrecisionBinary32:   PrecisionBinary32Default,
		PrecisionBinary64:   PrecisionBinary64Default,
		Mode:                ModeDefault.String(),
		ErrorMode:           ErrorModeDefault.String(),
		MaxAbsErrorExponent: MaxAbsErrorExponentDefault,
		Seed:                0,
		ChooseSeed:          false,
		DAZ:                 false,
		FTZ:                 false,
		Sparsity:            SparsityDefault,
	}
}

// Load reads Options from a YAML file at path, starting from the defaults
// so a partial file only overrides what it mentions. A missing file is not
// an error: the defaults are returned as-is, matching how the rest of this
// codebase treats an absent config file as "use the defaults."
func Load(path string) (Options, error) {
	opts := DefaultOptions()

	if path == "" {
		return opts, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return opts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, errors.Wrap(err, "read mca config file")
	}

	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, errors.Wrap(err, "parse mca config file")
	}

	return opts, nil
}

// Save writes opts to path as YAML.
func (o Options) Save(path string) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return errors.Wrap(err, "marshal mca config")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(err, "write mca config file")
	}
	return nil
}

// Validate checks opts for internal consistency, returning the first
// violation found. It does not mutate opts.
func (o Options) Validate() error {
	if o.PrecisionBinary32 < PrecisionBinary32Min || o.PrecisionBinary32 > PrecisionBinary32Max {
		return errors.Errorf("precision_binary32: %d out of range [%d,%d]",
			o.PrecisionBinary32, PrecisionBinary32Min, PrecisionBinary32Max)
	}
	if o.PrecisionBinary64 < PrecisionBinary64Min || o.PrecisionBinary64 > PrecisionBinary64Max {
		return errors.Errorf("precision_binary64: %d out of range [%d,%d]",
			o.PrecisionBinary64, PrecisionBinary64Min, PrecisionBinary64Max)
	}
	if _, err := ParseMode(o.Mode); err != nil {
		return err
	}
	if _, err := ParseErrorMode(o.ErrorMode); err != nil {
		return err
	}
	if o.Sparsity <= 0 || o.Sparsity > 1 {
		return errors.Errorf("sparsity: %v out of range (0,1]", o.Sparsity)
	}
	return nil
}
