package chart

import (
	"fmt"

	"github.com/machshop/spc/pkg/series"
	"github.com/machshop/spc/pkg/stat"
)

// movingRangeD2 is the bias-correction constant for a moving range of two
// consecutive observations
const movingRangeD2 = 1.128

type calcOptions struct {
	nonNegative bool
}

// Option adjusts limit calculation behavior
type Option func(*calcOptions)

// NonNegative floors the lower control limit at zero for measured
// quantities that cannot physically go below it (counts, concentrations)
func NonNegative() Option {
	return func(o *calcOptions) {
		o.nonNegative = true
	}
}

// ComputeIndividuals derives I-MR chart limits from a series of single
// measurements.  The center line is the series mean and sigma is the mean
// moving range divided by d2(2).
func ComputeIndividuals(s *series.Series, opts ...Option) (ControlLimits, error) {
	var o calcOptions
	for _, opt := range opts {
		opt(&o)
	}

	values := s.Values()
	if len(values) < 2 {
		return ControlLimits{}, fmt.Errorf("individuals chart needs at least 2 points, got %d: %w", len(values), ErrInsufficientData)
	}

	center := stat.Mean(values)
	sigma := stat.Mean(stat.MovingRanges(values)) / movingRangeD2
	if sigma <= 0 {
		return ControlLimits{}, fmt.Errorf("cannot derive limits from a constant series: %w", ErrDegenerateSeries)
	}

	lcl := center - 3.0*sigma
	if o.nonNegative && lcl < 0 {
		lcl = 0
	}
	return ControlLimits{
		UCL:        center + 3.0*sigma,
		CenterLine: center,
		LCL:        lcl,
		Sigma:      sigma,
	}, nil
}
