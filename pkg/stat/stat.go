package stat

import "math"

// Mean returns the arithmetic mean of the observed values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	s := 0.0
	for _, v := range values {
		s = s + v
	}
	return s / float64(len(values))
}

// Variance returns the Bessel-corrected sample variance (n-1 denominator)
// around a previously calculated mean
func Variance(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	s := 0.0
	for _, v := range values {
		s = s + math.Pow(v-mean, 2)
	}
	return s / float64(len(values)-1)
}

// StdDev returns the Bessel-corrected sample standard deviation
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values, Mean(values)))
}

// MovingRanges returns the absolute differences between successive
// observations.  For a series of n values the result has n-1 entries.
func MovingRanges(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		out = append(out, math.Abs(values[i]-values[i-1]))
	}
	return out
}

// Range returns max(values) - min(values), 0 for an empty slice
func Range(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return max - min
}
