package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vfc-go/mca/pkg/experiment"
	"github.com/vfc-go/mca/pkg/logging"
	"github.com/vfc-go/mca/pkg/mca"
	"github.com/vfc-go/mca/pkg/mcaconfig"
	"github.com/vfc-go/mca/pkg/reload"
	"github.com/vfc-go/mca/pkg/telemetry"
)

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Args:  cobra.NoArgs,
	Short: "Serve Prometheus metrics for a long-running engine",
	Long: `Builds an mca context from configuration, drives a repeating
background workload (--workload-*) against it, and serves the resulting
telemetry over HTTP until interrupted. With --watch-config, the context's
precision and mode are hot-reloaded from the config file (or on SIGHUP)
without restarting the process.`,
	RunE: serveMetrics,
}

func init() {
	registerConfigFlags(serveMetricsCmd)
	serveMetricsCmd.Flags().String("addr", ":9090", "address to serve metrics on")
	serveMetricsCmd.Flags().String("path", "/metrics", "HTTP path to serve metrics on")
	serveMetricsCmd.Flags().Bool("watch-config", false, "poll the config file and SIGHUP for live precision/mode reload")
	serveMetricsCmd.Flags().String("workload-op", "+", "operator the background workload repeats: + - * /")
	serveMetricsCmd.Flags().Float64("workload-a", 1, "left operand of the background workload")
	serveMetricsCmd.Flags().Float64("workload-b", 3, "right operand of the background workload")
	serveMetricsCmd.Flags().String("workload-format", "binary64", "operand width of the background workload: binary32|binary64")
	serveMetricsCmd.Flags().Duration("workload-interval", time.Second, "how often the background workload runs a batch of trials")
	serveMetricsCmd.Flags().Int("workload-batch", 100, "trials run per workload-interval tick")
}

func serveMetrics(cmd *cobra.Command, args []string) error {
	opts, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logLevel := logging.LevelInfo
	if verbose {
		logLevel = logging.LevelDebug
	}
	logger := logging.New(logging.Config{Level: logLevel, Format: logging.FormatText, Output: os.Stdout})

	ctx, err := mcaconfig.New(opts)
	if err != nil {
		return fmt.Errorf("failed to build mca context: %w", err)
	}

	collector := telemetry.New()
	addr, _ := cmd.Flags().GetString("addr")
	path, _ := cmd.Flags().GetString("path")
	server := telemetry.NewServer(telemetry.Config{Addr: addr, Path: path}, collector)

	runCtx, stop := signal.NotifyContext(cmdContext(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchConfig, _ := cmd.Flags().GetBool("watch-config")
	if watchConfig {
		watcher := reload.New(ctx, reload.Config{Path: configPathOrDefault(), EnableSignalReload: true}, logger)
		watcher.OnReload(func(o mcaconfig.Options) {
			logger.Info("configuration hot-reloaded", "mode", o.Mode,
				"precision_binary32", o.PrecisionBinary32, "precision_binary64", o.PrecisionBinary64)
		})
		watcher.Start(runCtx)
	}

	engine := mca.New(ctx, mca.WithLogger(logger), mca.WithCollector(collector))
	go runBackgroundWorkload(runCtx, cmd, engine, logger)

	logger.Info("serving metrics", "addr", addr, "path", path)
	return server.Run(runCtx)
}

// runBackgroundWorkload repeats a configurable trial against engine at a
// fixed interval until ctx is cancelled, so the telemetry this command
// serves reflects a genuinely running engine rather than an idle registry.
func runBackgroundWorkload(ctx context.Context, cmd *cobra.Command, engine *mca.Engine, logger *logging.Logger) {
	opStr, _ := cmd.Flags().GetString("workload-op")
	op, err := mca.ParseOp(opStr)
	if err != nil {
		logger.Error("invalid workload-op, background workload disabled", "error", err)
		return
	}
	a, _ := cmd.Flags().GetFloat64("workload-a")
	b, _ := cmd.Flags().GetFloat64("workload-b")
	formatStr, _ := cmd.Flags().GetString("workload-format")
	format := experiment.Binary64
	if formatStr == "binary32" {
		format = experiment.Binary32
	}
	interval, _ := cmd.Flags().GetDuration("workload-interval")
	batch, _ := cmd.Flags().GetInt("workload-batch")

	runner := experiment.NewRunner(engine, 0)
	trial := experiment.Trial{Name: "serve-metrics-workload", Format: format, A: a, B: b, Op: op}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := runner.Run(ctx, trial, batch); err != nil && ctx.Err() == nil {
				logger.Warn("background workload trial failed", "error", err)
			}
		}
	}
}

// configPathOrDefault mirrors loadConfig's own fallback so the reload
// watcher polls the same file run/info resolved.
func configPathOrDefault() string {
	if cfgFile != "" {
		return cfgFile
	}
	return "mca-bench.yaml"
}

// cmdContext is the base context subcommands derive their cancellation
// context from; factored out so tests could substitute a cancellable one.
func cmdContext() context.Context {
	return context.Background()
}
