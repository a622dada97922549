package stat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 1.5, Mean([]float64{1.0, 1.0, 1.0, 2.0, 2.0, 2.0}))
	assert.Equal(t, 0.0, Mean(nil))
}

func TestVariance(t *testing.T) {
	values := []float64{1.0, 1.0, 1.0, 2.0, 2.0, 2.0}
	assert.Equal(t, 0.3, Variance(values, 1.5))
	assert.Equal(t, 0.0, Variance([]float64{5.0}, 5.0))
}

func TestStdDev(t *testing.T) {
	// mean 10, squared deviations sum to 6, variance 6/9
	values := []float64{9, 10, 11, 10, 9, 11, 10, 10, 11, 9}
	assert.InDelta(t, 0.816497, StdDev(values), 0.00001)
}

func TestMovingRanges(t *testing.T) {
	tt := []struct {
		name   string
		values []float64
		exp    []float64
	}{
		{name: "increasing", values: []float64{1, 3, 6}, exp: []float64{2, 3}},
		{name: "mixed", values: []float64{10, 12, 11, 13, 12}, exp: []float64{2, 1, 2, 1}},
		{name: "single point", values: []float64{4}, exp: nil},
	}
	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.exp, MovingRanges(tc.values))
		})
	}
}

func TestRange(t *testing.T) {
	assert.Equal(t, 4.0, Range([]float64{3, 7, 5, 4}))
	assert.Equal(t, 0.0, Range([]float64{2.5}))
	assert.Equal(t, 0.0, Range(nil))
}

func TestConstantTables(t *testing.T) {
	tt := []struct {
		n      int
		d2, a2 float64
		d3, d4 float64
	}{
		{n: 2, d2: 1.128, a2: 1.880, d3: 0.0, d4: 3.267},
		{n: 5, d2: 2.326, a2: 0.577, d3: 0.0, d4: 2.114},
		{n: 7, d2: 2.704, a2: 0.419, d3: 0.076, d4: 1.924},
		{n: 10, d2: 3.078, a2: 0.308, d3: 0.223, d4: 1.777},
	}
	for _, tc := range tt {
		d2, ok := D2(tc.n)
		assert.True(t, ok)
		assert.Equal(t, tc.d2, d2)
		a2, ok := A2(tc.n)
		assert.True(t, ok)
		assert.Equal(t, tc.a2, a2)
		d3, ok := D3(tc.n)
		assert.True(t, ok)
		assert.Equal(t, tc.d3, d3)
		d4, ok := D4(tc.n)
		assert.True(t, ok)
		assert.Equal(t, tc.d4, d4)
	}
}

func TestConstantTablesUnsupported(t *testing.T) {
	for _, n := range []int{0, 1, 11, 25} {
		_, ok := D2(n)
		assert.False(t, ok)
		_, ok = A2(n)
		assert.False(t, ok)
	}
}
