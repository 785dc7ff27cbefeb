package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vfc-go/mca/pkg/mcaconfig"
)

// loadConfig loads Options from cfgFile, auto-generating a default file if
// none exists yet, then overlays any flags the caller actually set on cmd
// — CLI flags take precedence over the YAML file, which takes precedence
// over built-in defaults.
func loadConfig(cmd *cobra.Command) (mcaconfig.Options, error) {
	configPath := cfgFile
	if configPath == "" {
		configPath = "mca-bench.yaml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		fmt.Printf("config file not found, creating default configuration at: %s\n", configPath)
		opts := mcaconfig.DefaultOptions()
		if err := opts.Save(configPath); err != nil {
			return mcaconfig.Options{}, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	opts, err := mcaconfig.Load(configPath)
	if err != nil {
		return mcaconfig.Options{}, fmt.Errorf("failed to load config from %s: %w", configPath, err)
	}

	applyFlagOverrides(cmd, &opts)

	if err := opts.Validate(); err != nil {
		return mcaconfig.Options{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return opts, nil
}

// applyFlagOverrides overlays any explicitly-set flag from cmd onto opts.
// Flags left at their zero value (not passed on the command line) do not
// override the loaded file.
func applyFlagOverrides(cmd *cobra.Command, opts *mcaconfig.Options) {
	flags := cmd.Flags()
	if flags.Changed("precision-binary32") {
		opts.PrecisionBinary32, _ = flags.GetInt("precision-binary32")
	}
	if flags.Changed("precision-binary64") {
		opts.PrecisionBinary64, _ = flags.GetInt("precision-binary64")
	}
	if flags.Changed("mode") {
		opts.Mode, _ = flags.GetString("mode")
	}
	if flags.Changed("error-mode") {
		opts.ErrorMode, _ = flags.GetString("error-mode")
	}
	if flags.Changed("seed") {
		seed, _ := flags.GetInt64("seed")
		opts.Seed = uint64(seed)
		opts.ChooseSeed = true
	}
	if flags.Changed("choose-seed") {
		opts.ChooseSeed, _ = flags.GetBool("choose-seed")
	}
	if flags.Changed("daz") {
		opts.DAZ, _ = flags.GetBool("daz")
	}
	if flags.Changed("ftz") {
		opts.FTZ, _ = flags.GetBool("ftz")
	}
	if flags.Changed("sparsity") {
		opts.Sparsity, _ = flags.GetFloat64("sparsity")
	}
}

// registerConfigFlags registers the long flags common to any subcommand
// that builds an Engine from Options.
func registerConfigFlags(cmd *cobra.Command) {
	cmd.Flags().Int("precision-binary32", 0, "virtual precision in bits for binary32, in [1,53] (unset = use config/default)")
	cmd.Flags().Int("precision-binary64", 0, "virtual precision in bits for binary64, in [1,112] (unset = use config/default)")
	cmd.Flags().String("mode", "", "operating mode: ieee|mca|pb|rr")
	cmd.Flags().String("error-mode", "", "error model: rel|abs|all")
	cmd.Flags().Int64("seed", 0, "RNG seed (implies a fixed, non-random seed)")
	cmd.Flags().Bool("choose-seed", false, "use the fixed --seed value instead of seeding each RNG stream from entropy")
	cmd.Flags().Bool("daz", false, "flush subnormal operands to zero before perturbing")
	cmd.Flags().Bool("ftz", false, "flush subnormal results to zero after perturbing")
	cmd.Flags().Float64("sparsity", 0, "fraction of operations actually perturbed, in (0,1]")
}
