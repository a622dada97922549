package rules

import (
	"testing"

	"github.com/machshop/spc/pkg/chart"
	"github.com/machshop/spc/pkg/series"
	"github.com/stretchr/testify/assert"
)

// unitLimits centers at 0 with sigma 1 so test values read directly as
// sigma deviations
var unitLimits = chart.ControlLimits{UCL: 3, CenterLine: 0, LCL: -3, Sigma: 1}

func scanValues(t *testing.T, values []float64, limits chart.ControlLimits, enabled []int, sens Sensitivity) []Violation {
	t.Helper()
	out, err := Scan(series.FromValues(values), limits, enabled, sens)
	assert.NoError(t, err)
	return out
}

func TestRule1SinglePointBeyondThreeSigma(t *testing.T) {
	limits := chart.ControlLimits{UCL: 100, CenterLine: 90, LCL: 80, Sigma: 3.33}
	out := scanValues(t, []float64{90, 91, 89, 105, 90}, limits, []int{1}, Normal)
	assert.Len(t, out, 1)
	assert.Equal(t, 1, out[0].Rule)
	assert.Equal(t, Critical, out[0].Severity)
	assert.Equal(t, []int{3}, out[0].Indices)
}

func TestRule1BothSides(t *testing.T) {
	out := scanValues(t, []float64{4.0, 0.0, -3.5}, unitLimits, []int{1}, Normal)
	assert.Len(t, out, 2)
	assert.Equal(t, []int{0}, out[0].Indices)
	assert.Equal(t, []int{2}, out[1].Indices)
}

func TestRule2NinePointsSameSide(t *testing.T) {
	values := []float64{0.5, 0.4, 0.6, 0.5, 0.7, 0.4, 0.5, 0.6, 0.5}

	t.Run("enabled", func(t *testing.T) {
		out := scanValues(t, values, unitLimits, []int{2}, Normal)
		assert.NotEmpty(t, out)
		assert.Equal(t, 2, out[0].Rule)
		assert.Equal(t, Warning, out[0].Severity)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8}, out[0].Indices)
	})
	t.Run("disabled", func(t *testing.T) {
		out := scanValues(t, values, unitLimits, nil, Normal)
		assert.Empty(t, out)
	})
}

func TestRule2CenterLineBreaksRun(t *testing.T) {
	// a point exactly on the center line splits two four-point runs
	values := []float64{0.5, 0.4, 0.6, 0.5, 0.0, 0.5, 0.6, 0.4, 0.5}
	out := scanValues(t, values, unitLimits, []int{2}, Normal)
	assert.Empty(t, out)
}

func TestRule3MonotonicRun(t *testing.T) {
	t.Run("increasing", func(t *testing.T) {
		out := scanValues(t, []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}, unitLimits, []int{3}, Normal)
		assert.Len(t, out, 1)
		assert.Equal(t, 3, out[0].Rule)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, out[0].Indices)
	})
	t.Run("decreasing", func(t *testing.T) {
		out := scanValues(t, []float64{0.6, 0.5, 0.4, 0.3, 0.2, 0.1}, unitLimits, []int{3}, Normal)
		assert.Len(t, out, 1)
	})
	t.Run("equal value breaks the run", func(t *testing.T) {
		out := scanValues(t, []float64{0.1, 0.2, 0.3, 0.3, 0.4, 0.5, 0.6}, unitLimits, []int{3}, Normal)
		assert.Empty(t, out)
	})
}

func TestRule4AlternatingRun(t *testing.T) {
	values := make([]float64, 14)
	for i := range values {
		v := 0.5 + float64(i)*0.01
		if i%2 == 1 {
			v = -v
		}
		values[i] = v
	}
	out := scanValues(t, values, unitLimits, []int{4}, Normal)
	assert.Len(t, out, 1)
	assert.Equal(t, 4, out[0].Rule)
	assert.Len(t, out[0].Indices, 14)
}

func TestRule5TwoOfThreeBeyondTwoSigma(t *testing.T) {
	out := scanValues(t, []float64{2.5, 0.0, 2.6}, unitLimits, []int{5}, Normal)
	assert.Len(t, out, 1)
	assert.Equal(t, 5, out[0].Rule)
	assert.Equal(t, Warning, out[0].Severity)
	assert.Equal(t, []int{0, 2}, out[0].Indices)
}

func TestRule5OppositeSidesDoNotCombine(t *testing.T) {
	out := scanValues(t, []float64{2.5, 0.0, -2.6}, unitLimits, []int{5}, Normal)
	assert.Empty(t, out)
}

func TestRule6FourOfFiveBeyondOneSigma(t *testing.T) {
	out := scanValues(t, []float64{1.5, 1.6, 0.0, 1.7, 1.8, 1.9}, unitLimits, []int{6}, Normal)
	assert.Len(t, out, 2)
	assert.Equal(t, Info, out[0].Severity)
	assert.Equal(t, []int{0, 1, 3, 4}, out[0].Indices)
	assert.Equal(t, []int{1, 3, 4, 5}, out[1].Indices)
}

func TestRule7Stratification(t *testing.T) {
	values := make([]float64, 15)
	for i := range values {
		values[i] = 0.2 + float64(i%3)*0.1
	}
	out := scanValues(t, values, unitLimits, []int{7}, Normal)
	assert.Len(t, out, 1)
	assert.Equal(t, 7, out[0].Rule)
	assert.Equal(t, Info, out[0].Severity)
	assert.Len(t, out[0].Indices, 15)
}

func TestRule8Mixture(t *testing.T) {
	values := []float64{1.5, -1.5, 1.6, -1.6, 1.5, -1.5, 1.4, -1.4}
	out := scanValues(t, values, unitLimits, []int{8}, Normal)
	assert.Len(t, out, 1)
	assert.Equal(t, 8, out[0].Rule)
	assert.Len(t, out[0].Indices, 8)
}

func allRules() []int { return []int{1, 2, 3, 4, 5, 6, 7, 8} }

func TestInControlSeriesIsClean(t *testing.T) {
	// stable mean, all points within 1 sigma, no drift or alternation
	values := []float64{0.2, -0.2, 0.5, -0.5, 0.1, 0.4, -0.3, -0.1, 0.3, -0.4}
	out := scanValues(t, values, unitLimits, allRules(), Normal)
	assert.Empty(t, out)
}

func TestSensitivityMonotonic(t *testing.T) {
	// a drifting series with a run above center and two excursions
	values := []float64{0.1, 0.8, 1.2, 1.5, 1.1, 1.4, 1.3, 2.4, 1.6, 2.5, 1.2, 0.9, -0.4, -1.1, 0.3}
	counts := map[Sensitivity]int{}
	for _, sens := range []Sensitivity{Strict, Normal, Relaxed} {
		counts[sens] = len(scanValues(t, values, unitLimits, allRules(), sens))
	}
	assert.GreaterOrEqual(t, counts[Strict], counts[Normal])
	assert.GreaterOrEqual(t, counts[Normal], counts[Relaxed])
	assert.Greater(t, counts[Strict], 0)
}

func TestSingleRuleFiltering(t *testing.T) {
	// triggers rules 1, 2, 5 and 6 if all were enabled
	values := []float64{3.5, 1.5, 1.6, 1.7, 1.8, 2.4, 2.5, 1.9, 1.4, 1.3}
	for _, r := range allRules() {
		out := scanValues(t, values, unitLimits, []int{r}, Normal)
		for _, v := range out {
			assert.Equal(t, r, v.Rule)
		}
	}
}

func TestScanOrdering(t *testing.T) {
	values := []float64{0.5, 0.4, 0.6, 0.5, 0.7, 0.4, 0.5, 0.6, 0.5, 3.5}
	out := scanValues(t, values, unitLimits, allRules(), Normal)
	for i := 1; i < len(out); i++ {
		if out[i-1].Rule == out[i].Rule {
			assert.LessOrEqual(t, out[i-1].Indices[0], out[i].Indices[0])
		} else {
			assert.Less(t, out[i-1].Rule, out[i].Rule)
		}
	}
}

func TestScanErrors(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		s, _ := series.New()
		_, err := Scan(s, unitLimits, allRules(), Normal)
		assert.ErrorIs(t, err, ErrEmptyData)
	})
	t.Run("unknown rule", func(t *testing.T) {
		_, err := Scan(series.FromValues([]float64{1, 2}), unitLimits, []int{9}, Normal)
		assert.Error(t, err)
	})
	t.Run("bad sensitivity", func(t *testing.T) {
		_, err := Scan(series.FromValues([]float64{1, 2}), unitLimits, []int{1}, Sensitivity("EXTREME"))
		assert.Error(t, err)
	})
	t.Run("zero sigma limits", func(t *testing.T) {
		_, err := Scan(series.FromValues([]float64{1, 2}), chart.ControlLimits{Sigma: 0}, []int{1}, Normal)
		assert.Error(t, err)
	})
}

func TestScanEmptyEnabledSet(t *testing.T) {
	out, err := Scan(series.FromValues([]float64{5, 5, 5}), unitLimits, nil, Normal)
	assert.NoError(t, err)
	assert.Empty(t, out)
}
