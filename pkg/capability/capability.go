// Package capability computes process capability indices comparing the
// specification width to the observed process spread.
package capability

import (
	"errors"
	"fmt"
	"math"

	"github.com/machshop/spc/pkg/stat"
)

var (
	// ErrMissingSpecLimits indicates neither USL nor LSL was supplied
	ErrMissingSpecLimits = errors.New("capability requires at least one specification limit")
	// ErrInvalidSpecLimits indicates USL <= LSL
	ErrInvalidSpecLimits = errors.New("LSL must be less than USL")
	// ErrInsufficientData indicates too few points to estimate sigma
	ErrInsufficientData = errors.New("capability requires at least 2 points")
	// ErrDegenerateSeries indicates a zero-variance series
	ErrDegenerateSeries = errors.New("series has zero variance")
)

// Metrics are the capability indices.  Cpk is always computable from one
// or both spec limits; Cp and Cpm need both limits and are nil for
// one-sided specifications.  Pp and Ppk are present only when a distinct
// within-subgroup sigma was available upstream (X-bar R path); for an
// individuals series there is no separate overall estimator.
type Metrics struct {
	Cp  *float64 `json:"cp,omitempty"`
	Cpk float64  `json:"cpk"`
	Cpm *float64 `json:"cpm,omitempty"`
	Pp  *float64 `json:"pp,omitempty"`
	Ppk *float64 `json:"ppk,omitempty"`
}

// Compute derives capability indices using the overall Bessel-corrected
// sample standard deviation.  target falls back to the USL/LSL midpoint
// for Cpm when absent.
func Compute(values []float64, usl, lsl, target *float64) (Metrics, error) {
	if err := checkSpec(usl, lsl); err != nil {
		return Metrics{}, err
	}
	mean, sigma, err := meanSigma(values)
	if err != nil {
		return Metrics{}, err
	}
	return indices(mean, sigma, usl, lsl, target), nil
}

// ComputeWithin derives short-term indices (Cp, Cpk, Cpm) from the
// within-subgroup sigma estimated upstream, and long-term Pp/Ppk from the
// overall sample standard deviation of the same values.
func ComputeWithin(values []float64, usl, lsl, target *float64, withinSigma float64) (Metrics, error) {
	if err := checkSpec(usl, lsl); err != nil {
		return Metrics{}, err
	}
	if withinSigma <= 0 {
		return Metrics{}, fmt.Errorf("within-subgroup sigma %f: %w", withinSigma, ErrDegenerateSeries)
	}
	mean, overall, err := meanSigma(values)
	if err != nil {
		return Metrics{}, err
	}

	m := indices(mean, withinSigma, usl, lsl, target)
	long := indices(mean, overall, usl, lsl, target)
	m.Pp = long.Cp
	ppk := long.Cpk
	m.Ppk = &ppk
	return m, nil
}

func checkSpec(usl, lsl *float64) error {
	if usl == nil && lsl == nil {
		return ErrMissingSpecLimits
	}
	if usl != nil && lsl != nil && *usl <= *lsl {
		return ErrInvalidSpecLimits
	}
	return nil
}

func meanSigma(values []float64) (float64, float64, error) {
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("%d points: %w", len(values), ErrInsufficientData)
	}
	mean := stat.Mean(values)
	sigma := math.Sqrt(stat.Variance(values, mean))
	if sigma <= 0 {
		return 0, 0, fmt.Errorf("cannot compute capability of a constant series: %w", ErrDegenerateSeries)
	}
	return mean, sigma, nil
}

func indices(mean, sigma float64, usl, lsl, target *float64) Metrics {
	var m Metrics

	switch {
	case usl != nil && lsl != nil:
		cp := (*usl - *lsl) / (6.0 * sigma)
		m.Cp = &cp
		m.Cpk = math.Min((*usl-mean)/(3.0*sigma), (mean-*lsl)/(3.0*sigma))

		t := (*usl + *lsl) / 2.0
		if target != nil {
			t = *target
		}
		cpm := (*usl - *lsl) / (6.0 * math.Sqrt(sigma*sigma+(mean-t)*(mean-t)))
		m.Cpm = &cpm
	case usl != nil:
		m.Cpk = (*usl - mean) / (3.0 * sigma)
	default:
		m.Cpk = (mean - *lsl) / (3.0 * sigma)
	}
	return m
}
