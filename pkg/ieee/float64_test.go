package ieee

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass64(t *testing.T) {
	cases := []struct {
		name string
		x    float64
		want Class
	}{
		{"zero", 0, Zero},
		{"neg zero", math.Copysign(0, -1), Zero},
		{"normal", 1.5, Normal},
		{"subnormal", math.Float64frombits(1), Subnormal},
		{"inf", math.Inf(1), Inf},
		{"neg inf", math.Inf(-1), Inf},
		{"nan", math.NaN(), NaN},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, Class64(c.x))
		})
	}
}

func TestNoised(t *testing.T) {
	assert.True(t, Normal.Noised())
	assert.True(t, Subnormal.Noised())
	assert.False(t, Zero.Noised())
	assert.False(t, Inf.Noised())
	assert.False(t, NaN.Noised())
}

func TestGetExp64(t *testing.T) {
	assert.Equal(t, int32(0), GetExp64(1.0))
	assert.Equal(t, int32(1), GetExp64(2.0))
	assert.Equal(t, int32(-1), GetExp64(0.5))
	assert.Equal(t, int32(3), GetExp64(12.0)) // 8 <= 12 < 16
}

func TestGetExp64Subnormal(t *testing.T) {
	// smallest subnormal: 2^-1074
	x := math.Float64frombits(1)
	assert.Equal(t, int32(-1074), GetExp64(x))
}

func TestAddExp64(t *testing.T) {
	x := AddExp64(1.0, 3)
	assert.Equal(t, 8.0, x)

	y := AddExp64(8.0, -3)
	assert.Equal(t, 1.0, y)
}

func TestPow64(t *testing.T) {
	assert.Equal(t, 1.0, Pow64(0))
	assert.Equal(t, 8.0, Pow64(3))
	assert.Equal(t, 0.25, Pow64(-2))
}

func TestDaz64(t *testing.T) {
	sub := math.Float64frombits(1)
	assert.Equal(t, 0.0, Daz64(sub))
	assert.Equal(t, math.Signbit(Daz64(-sub)), true)
	assert.Equal(t, 1.5, Daz64(1.5))
	assert.True(t, math.IsInf(Daz64(math.Inf(1)), 1))
}

func TestFtz64MatchesDaz64(t *testing.T) {
	sub := math.Float64frombits(1)
	assert.Equal(t, Daz64(sub), Ftz64(sub))
}

func TestRepresentable64(t *testing.T) {
	// 1.0 is exact at any precision.
	assert.True(t, Representable64(1.0, 1))
	assert.True(t, Representable64(1.0, 53))

	// 1/3 is not exactly representable at reduced precision.
	third := 1.0 / 3.0
	assert.False(t, Representable64(third, 10))
	assert.True(t, Representable64(third, 53))

	// Zero/Inf/NaN are always representable (not subject to the test).
	assert.True(t, Representable64(0, 1))
	assert.True(t, Representable64(math.Inf(1), 1))
}
