// Package experiment runs a single arithmetic operation through an
// mca.Engine many times and aggregates the resulting variability, the
// "run many times, observe variability" workflow the single-operation
// engine only implies.
package experiment

import (
	"context"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/vfc-go/mca/pkg/mca"
	"github.com/vfc-go/mca/pkg/mcaconfig"
)

// Trial is one binary64 operation to repeat under noise. float32 operands
// are widened once at construction; the engine still perturbs at binary32
// width when Format is Binary32.
type Trial struct {
	Name   string
	Format Format
	A, B   float64
	Op     mca.Op
}

// Format selects which of the engine's two operand widths a Trial runs at.
type Format int

const (
	Binary32 Format = iota
	Binary64
)

// Sample is one observed repetition of a Trial.
type Sample struct {
	Value     float64
	Perturbed bool
	Elapsed   time.Duration
}

// Report aggregates n Samples of a single Trial against the IEEE
// (unperturbed) reference value for that trial.
type Report struct {
	Trial        Trial
	N            int
	Reference    float64
	Mean         float64
	Variance     float64
	StdDev       float64
	MinDeviation float64
	MaxDeviation float64
	Perturbed    int
	Samples      []Sample
}

// PerturbedFraction returns the fraction of samples that were actually
// perturbed — the quantity a sparsity setting is stated in terms of.
func (r *Report) PerturbedFraction() float64 {
	if r.N == 0 {
		return 0
	}
	return float64(r.Perturbed) / float64(r.N)
}

// Runner executes Trials against a shared Engine, spreading repetitions
// across a bounded worker pool.
type Runner struct {
	engine    *mca.Engine
	reference *mca.Engine // same config, mode forced to IEEE
	workers   int
}

// NewRunner builds a Runner. workers <= 0 defaults to GOMAXPROCS.
func NewRunner(engine *mca.Engine, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		engine:    engine,
		reference: ieeeEngineLike(engine),
		workers:   workers,
	}
}

// ieeeEngineLike builds an Engine sharing e's DAZ/FTZ/precision settings
// but forced to IEEE mode, used to compute the exact reference value a
// Report's deviations are measured against.
func ieeeEngineLike(e *mca.Engine) *mca.Engine {
	opts := e.Context().Snapshot()
	opts.Mode = mcaconfig.ModeIEEE.String()
	ctx, err := mcaconfig.New(opts)
	if err != nil {
		// Snapshot of an already-validated Context with only Mode replaced
		// by a constant that always parses; this cannot fail.
		panic(err)
	}
	return mca.New(ctx)
}

// Run executes trial n times concurrently and returns the aggregated
// Report. Each worker goroutine pulls its own RNG stream from the
// engine's pool (see pkg/rngstream), so trials never share perturbation
// state across goroutines.
func (r *Runner) Run(ctx context.Context, trial Trial, n int) (*Report, error) {
	reference := r.apply(trial, r.reference)

	samples := make([]Sample, n)
	var wg sync.WaitGroup
	jobs := make(chan int)

	collector := r.engine.Collector()
	worker := func() {
		defer wg.Done()
		for i := range jobs {
			start := time.Now()
			before := r.apply(trial, r.engine)
			elapsed := time.Since(start)
			samples[i] = Sample{
				Value:     before,
				Perturbed: before != reference,
				Elapsed:   elapsed,
			}
			if collector != nil {
				collector.TrialDuration.Observe(elapsed.Seconds())
			}
		}
	}

	for w := 0; w < r.workers; w++ {
		wg.Add(1)
		go worker()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return summarize(trial, reference, samples), nil
}

func (r *Runner) apply(t Trial, e *mca.Engine) float64 {
	switch t.Format {
	case Binary32:
		a, b := float32(t.A), float32(t.B)
		return float64(applyOp32(e, t.Op, a, b))
	default:
		return applyOp64(e, t.Op, t.A, t.B)
	}
}

func applyOp32(e *mca.Engine, op mca.Op, a, b float32) float32 {
	switch op {
	case mca.OpAdd:
		return e.AddFloat32(a, b)
	case mca.OpSub:
		return e.SubFloat32(a, b)
	case mca.OpMul:
		return e.MulFloat32(a, b)
	default:
		return e.DivFloat32(a, b)
	}
}

func applyOp64(e *mca.Engine, op mca.Op, a, b float64) float64 {
	switch op {
	case mca.OpAdd:
		return e.AddFloat64(a, b)
	case mca.OpSub:
		return e.SubFloat64(a, b)
	case mca.OpMul:
		return e.MulFloat64(a, b)
	default:
		return e.DivFloat64(a, b)
	}
}

func summarize(trial Trial, reference float64, samples []Sample) *Report {
	n := len(samples)
	report := &Report{Trial: trial, N: n, Reference: reference, Samples: samples}
	if n == 0 {
		return report
	}

	sum := 0.0
	report.MinDeviation = samples[0].Value - reference
	report.MaxDeviation = samples[0].Value - reference
	for _, s := range samples {
		sum += s.Value
		if s.Perturbed {
			report.Perturbed++
		}
		dev := s.Value - reference
		if dev < report.MinDeviation {
			report.MinDeviation = dev
		}
		if dev > report.MaxDeviation {
			report.MaxDeviation = dev
		}
	}
	mean := sum / float64(n)

	sqDiff := 0.0
	for _, s := range samples {
		d := s.Value - mean
		sqDiff += d * d
	}
	variance := 0.0
	if n > 1 {
		variance = sqDiff / float64(n-1)
	}

	report.Mean = mean
	report.Variance = variance
	report.StdDev = math.Sqrt(variance)
	return report
}
