package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "mca-bench",
	Short: "Monte Carlo Arithmetic benchmarking tool",
	Long: `mca-bench drives the MCA perturbation engine directly: run a single
arithmetic operation many times under a chosen mode and precision, observe
how much its result moves, and print or persist the result.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mca-bench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

// Commands are defined in separate files:
// - runCmd in run.go
// - infoCmd in info.go
// - serveMetricsCmd in serve_metrics.go

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
