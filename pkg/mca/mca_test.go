package mca

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfc-go/mca/pkg/mcaconfig"
)

func newEngine(t *testing.T, mutate func(*mcaconfig.Options)) *Engine {
	t.Helper()
	opts := mcaconfig.DefaultOptions()
	opts.Seed = 1
	opts.ChooseSeed = true
	if mutate != nil {
		mutate(&opts)
	}
	ctx, err := mcaconfig.New(opts)
	require.NoError(t, err)
	return New(ctx)
}

func TestIEEEModeIsExact(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) { o.Mode = "ieee" })

	assert.Equal(t, float64(5), e.AddFloat64(2, 3))
	assert.Equal(t, float32(6), e.MulFloat32(2, 3))
	assert.Equal(t, float64(0.5), e.DivFloat64(1, 2))
}

func TestZeroInfNaNPassThroughUnnoised(t *testing.T) {
	e := newEngine(t, nil)

	assert.Equal(t, float64(0), e.AddFloat64(0, 0))
	assert.True(t, math.IsInf(e.DivFloat64(1, 0), 1))
	assert.True(t, math.IsNaN(e.DivFloat64(0, 0)))
	assert.True(t, math.IsNaN(e.AddFloat64(math.Inf(1), math.Inf(-1))))
}

func TestMCAModePerturbsResult(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) {
		o.Mode = "mca"
		o.PrecisionBinary64 = 10
	})

	sawDifference := false
	for i := 0; i < 200; i++ {
		r := e.AddFloat64(1.0, 2.0)
		if r != 3.0 {
			sawDifference = true
			break
		}
	}
	assert.True(t, sawDifference)
}

func TestSparsityZeroDisablesNoise(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) {
		o.Mode = "mca"
		o.PrecisionBinary64 = 5
		o.Sparsity = 1e-12 // effectively never fires across a small sample
	})

	for i := 0; i < 50; i++ {
		assert.Equal(t, float64(3), e.AddFloat64(1, 2))
	}
}

func TestDAZFlushesSubnormalOperand(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) {
		o.Mode = "ieee"
		o.DAZ = true
	})

	subnormal := math.Float64frombits(1) // smallest positive subnormal
	assert.Equal(t, float64(0), e.MulFloat64(subnormal, 1))
}

func TestFTZFlushesSubnormalResult(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) {
		o.Mode = "ieee"
		o.FTZ = true
	})

	tiny := math.Float64frombits(2)
	r := e.MulFloat64(tiny, 0.25)
	assert.Equal(t, float64(0), r)
}

func TestInexactFloat64AlwaysPerturbs(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) { o.Mode = "mca" })

	changed := false
	for i := 0; i < 200; i++ {
		r := e.InexactFloat64(1.0, 10)
		if r != 1.0 {
			changed = true
			break
		}
	}
	assert.True(t, changed)
}

func TestInexactIEEEModeNoOp(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) { o.Mode = "ieee" })
	assert.Equal(t, 1.0, e.InexactFloat64(1.0, 10))
}

func TestEngineConcurrentUse(t *testing.T) {
	e := newEngine(t, func(o *mcaconfig.Options) { o.Mode = "mca" })

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 500; j++ {
				_ = e.AddFloat64(float64(j), 1.5)
				_ = e.MulFloat32(float32(j), 1.5)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
