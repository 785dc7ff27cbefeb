package mca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfc-go/mca/pkg/mcaconfig"
	"github.com/vfc-go/mca/pkg/telemetry"
)

func newEngineWithCollector(t *testing.T, mutate func(*mcaconfig.Options)) (*Engine, *telemetry.Collector) {
	t.Helper()
	opts := mcaconfig.DefaultOptions()
	opts.Seed = 1
	opts.ChooseSeed = true
	if mutate != nil {
		mutate(&opts)
	}
	ctx, err := mcaconfig.New(opts)
	require.NoError(t, err)
	collector := telemetry.New()
	return New(ctx, WithCollector(collector)), collector
}

func counterValue(t *testing.T, c *telemetry.Collector) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	var total float64
	for _, fam := range families {
		if fam.GetName() != "mca_operations_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestCollectorRecordsOperationsTotal(t *testing.T) {
	e, collector := newEngineWithCollector(t, func(o *mcaconfig.Options) { o.Mode = "ieee" })

	e.AddFloat64(1, 2)
	e.MulFloat32(2, 3)

	assert.Equal(t, float64(2), counterValue(t, collector))
}

func TestCollectorRecordsNaNFallback(t *testing.T) {
	e, collector := newEngineWithCollector(t, nil)

	result := e.DivFloat64(0, 0)
	assert.True(t, math.IsNaN(result))

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	var nanFallbacks float64
	for _, fam := range families {
		if fam.GetName() == "mca_nan_fallbacks_total" {
			nanFallbacks = fam.GetMetric()[0].GetCounter().GetValue()
		}
	}
	assert.Equal(t, float64(1), nanFallbacks)
}

func TestCollectorRecordsNoiseSkippedOnSparsity(t *testing.T) {
	e, collector := newEngineWithCollector(t, func(o *mcaconfig.Options) {
		o.Mode = "mca"
		o.Sparsity = 1e-12 // Validate rejects 0; this skips all but ~1e-12 of draws
	})

	e.AddFloat64(1, 2)

	families, err := collector.Registry().Gather()
	require.NoError(t, err)
	var skipped float64
	for _, fam := range families {
		if fam.GetName() != "mca_noise_skipped_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			skipped += m.GetCounter().GetValue()
		}
	}
	assert.True(t, skipped > 0)
}

func TestEngineWithoutCollectorDoesNotPanic(t *testing.T) {
	e := newEngine(t, nil)
	assert.NotPanics(t, func() {
		e.AddFloat64(1, 2)
		e.DivFloat64(0, 0)
	})
}
