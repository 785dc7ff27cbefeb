package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vfc-go/mca/pkg/experiment"
	"github.com/vfc-go/mca/pkg/logging"
	"github.com/vfc-go/mca/pkg/mca"
	"github.com/vfc-go/mca/pkg/mcaconfig"
	"github.com/vfc-go/mca/pkg/report"
	"github.com/vfc-go/mca/pkg/telemetry"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Args:  cobra.NoArgs,
	Short: "Repeat one arithmetic operation under noise and report its variability",
	Long: `Runs a binary arithmetic operation (+ - * /) n times through the MCA
engine and reports the mean, standard deviation, and deviation bounds
observed against the unperturbed IEEE result.`,
	RunE: runBench,
}

func init() {
	registerConfigFlags(runCmd)
	runCmd.Flags().String("op", "+", "operator: + - * /")
	runCmd.Flags().Float64("a", 0, "left operand")
	runCmd.Flags().Float64("b", 0, "right operand")
	runCmd.Flags().String("format", "binary64", "operand width: binary32|binary64")
	runCmd.Flags().Int("n", 1000, "number of repetitions")
	runCmd.Flags().Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	runCmd.Flags().String("output-format", "text", "report format: text|json")
	runCmd.Flags().String("output-dir", "", "if set, persist the report as JSON under this directory")
	runCmd.Flags().Int("keep-last", 0, "when output-dir is set, prune to the N most recent reports (0 = keep all)")
	runCmd.Flags().String("metrics-addr", "", "if set, serve this run's telemetry on this address until interrupted, after the trial completes")
	runCmd.Flags().String("metrics-path", "/metrics", "HTTP path to serve metrics on, when --metrics-addr is set")
}

func runBench(cmd *cobra.Command, args []string) error {
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

	logger.Info("mca-bench starting",
		"precision_binary32", ctx.PrecisionBinary32(),
		"precision_binary64", ctx.PrecisionBinary64(),
		"mode", ctx.Mode().String(),
		"error_mode", ctx.ErrorMode().String(),
		"sparsity", ctx.Sparsity(),
		"daz", ctx.DAZ(),
		"ftz", ctx.FTZ(),
	)

	opStr, _ := cmd.Flags().GetString("op")
	op, err := mca.ParseOp(opStr)
	if err != nil {
		return err
	}
	a, _ := cmd.Flags().GetFloat64("a")
	b, _ := cmd.Flags().GetFloat64("b")
	formatStr, _ := cmd.Flags().GetString("format")
	format := experiment.Binary64
	if formatStr == "binary32" {
		format = experiment.Binary32
	}
	n, _ := cmd.Flags().GetInt("n")
	workers, _ := cmd.Flags().GetInt("workers")

	collector := telemetry.New()
	engine := mca.New(ctx, mca.WithLogger(logger), mca.WithCollector(collector))
	runner := experiment.NewRunner(engine, workers)

	trial := experiment.Trial{
		Name:   "a" + strconv.FormatFloat(a, 'g', -1, 64) + op.String() + "b" + strconv.FormatFloat(b, 'g', -1, 64),
		Format: format,
		A:      a,
		B:      b,
		Op:     op,
	}

	runCtx := context.Background()
	rep, err := runner.Run(runCtx, trial, n)
	if err != nil {
		return fmt.Errorf("trial failed: %w", err)
	}

	doc := report.FromExperiment(rep, time.Now())

	outputFormat, _ := cmd.Flags().GetString("output-format")
	if outputFormat == "json" {
		if err := doc.WriteJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		if err := doc.WriteText(os.Stdout); err != nil {
			return err
		}
	}

	outputDir, _ := cmd.Flags().GetString("output-dir")
	if outputDir != "" {
		keepLast, _ := cmd.Flags().GetInt("keep-last")
		storage, err := report.NewStorage(outputDir, keepLast, logger)
		if err != nil {
			return fmt.Errorf("failed to create report storage: %w", err)
		}
		path, err := storage.Save(doc)
		if err != nil {
			return fmt.Errorf("failed to save report: %w", err)
		}
		logger.Info("report saved", "path", path)
	}

	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr != "" {
		metricsPath, _ := cmd.Flags().GetString("metrics-path")
		server := telemetry.NewServer(telemetry.Config{Addr: metricsAddr, Path: metricsPath}, collector)
		metricsCtx, stop := signal.NotifyContext(cmdContext(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		logger.Info("serving this run's telemetry", "addr", metricsAddr, "path", metricsPath)
		return server.Run(metricsCtx)
	}

	return nil
}
