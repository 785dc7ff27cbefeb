package experiment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfc-go/mca/pkg/mca"
	"github.com/vfc-go/mca/pkg/mcaconfig"
	"github.com/vfc-go/mca/pkg/telemetry"
)

func newTestEngine(t *testing.T, mutate func(*mcaconfig.Options)) *mca.Engine {
	t.Helper()
	opts := mcaconfig.DefaultOptions()
	opts.Seed = 9
	opts.ChooseSeed = true
	if mutate != nil {
		mutate(&opts)
	}
	ctx, err := mcaconfig.New(opts)
	require.NoError(t, err)
	return mca.New(ctx)
}

func TestRunIEEEModeHasNoPerturbation(t *testing.T) {
	e := newTestEngine(t, func(o *mcaconfig.Options) { o.Mode = "ieee" })
	r := NewRunner(e, 4)

	report, err := r.Run(context.Background(), Trial{
		Name: "add", Format: Binary64, A: 1, B: 2, Op: mca.OpAdd,
	}, 50)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Perturbed)
	assert.Equal(t, float64(3), report.Mean)
	assert.Equal(t, float64(0), report.StdDev)
}

func TestRunMCAModeObservesVariability(t *testing.T) {
	e := newTestEngine(t, func(o *mcaconfig.Options) {
		o.Mode = "mca"
		o.PrecisionBinary64 = 15
	})
	r := NewRunner(e, 4)

	report, err := r.Run(context.Background(), Trial{
		Name: "mul", Format: Binary64, A: 1.5, B: 2.5, Op: mca.OpMul,
	}, 300)
	require.NoError(t, err)

	assert.Greater(t, report.PerturbedFraction(), 0.5)
	assert.Greater(t, report.StdDev, 0.0)
	assert.InDelta(t, 3.75, report.Mean, 0.1)
}

func TestRunRespectsContextCancellation(t *testing.T) {
	e := newTestEngine(t, func(o *mcaconfig.Options) { o.Mode = "mca" })
	r := NewRunner(e, 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Run(ctx, Trial{Format: Binary64, A: 1, B: 1, Op: mca.OpAdd}, 1000)
	assert.Error(t, err)
}

func TestBinary32Trial(t *testing.T) {
	e := newTestEngine(t, func(o *mcaconfig.Options) { o.Mode = "ieee" })
	r := NewRunner(e, 1)

	report, err := r.Run(context.Background(), Trial{
		Format: Binary32, A: 2, B: 4, Op: mca.OpDiv,
	}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, report.Mean)
}

func TestElapsedRecorded(t *testing.T) {
	e := newTestEngine(t, nil)
	r := NewRunner(e, 1)

	report, err := r.Run(context.Background(), Trial{
		Format: Binary64, A: 1, B: 2, Op: mca.OpAdd,
	}, 5)
	require.NoError(t, err)
	for _, s := range report.Samples {
		assert.GreaterOrEqual(t, s.Elapsed, time.Duration(0))
	}
}

func TestRunFeedsTrialDurationToCollector(t *testing.T) {
	opts := mcaconfig.DefaultOptions()
	opts.Seed = 9
	opts.ChooseSeed = true
	ctx, err := mcaconfig.New(opts)
	require.NoError(t, err)

	collector := telemetry.New()
	e := mca.New(ctx, mca.WithCollector(collector))
	r := NewRunner(e, 1)

	_, err = r.Run(context.Background(), Trial{
		Format: Binary64, A: 1, B: 2, Op: mca.OpAdd,
	}, 5)
	require.NoError(t, err)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	var sampleCount uint64
	for _, fam := range families {
		if fam.GetName() == "mca_trial_duration_seconds" {
			sampleCount = fam.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(5), sampleCount)
}
