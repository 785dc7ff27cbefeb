package rngstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniform01Range(t *testing.T) {
	s := NewSingle(1, true)
	for i := 0; i < 10000; i++ {
		u := s.Uniform01()
		assert.Greater(t, u, 0.0)
		assert.Less(t, u, 1.0)
	}
}

func TestSkipBounds(t *testing.T) {
	s := NewSingle(2, true)
	assert.False(t, s.Skip(1))
	assert.False(t, s.Skip(1.5))
	assert.True(t, s.Skip(0))
	assert.True(t, s.Skip(-1))
}

func TestSkipProportion(t *testing.T) {
	s := NewSingle(3, true)
	const n = 20000
	perturbed := 0
	for i := 0; i < n; i++ {
		if !s.Skip(0.25) {
			perturbed++
		}
	}
	frac := float64(perturbed) / n
	assert.InDelta(t, 0.25, frac, 0.02)
}

func TestSeedReproducibility(t *testing.T) {
	a := NewSingle(42, true)
	b := NewSingle(42, true)

	for i := 0; i < 100; i++ {
		require.Equal(t, a.Uniform01(), b.Uniform01())
	}
}

func TestPoolReusesAcrossGetPut(t *testing.T) {
	p := NewPool(7, true)

	s1 := p.Get()
	first := s1.Uniform01()
	p.Put(s1)

	s2 := p.Get()
	require.Same(t, s1, s2)

	second := s2.Uniform01()
	assert.NotEqual(t, first, second)
}

func TestPoolDeterministicAcquisitionOrder(t *testing.T) {
	pa := NewPool(11, true)
	pb := NewPool(11, true)

	a1, a2 := pa.Get(), pa.Get()
	b1, b2 := pb.Get(), pb.Get()

	require.Equal(t, a1.Uniform01(), b1.Uniform01())
	require.Equal(t, a2.Uniform01(), b2.Uniform01())
}
