package chart

import (
	"fmt"
	"math"
)

// Sample is one inspection sample for a proportion chart: Defects units
// rejected out of Size units inspected
type Sample struct {
	Index   int `json:"index"`
	Defects int `json:"defects"`
	Size    int `json:"size"`
}

// ComputeP derives p chart limits from inspection samples.  The center
// line is the pooled proportion defective (total defects over total units,
// which correctly weights unequal sample sizes) and per-sample limits are
// p-bar +/- 3*sqrt(p-bar*(1-p-bar)/n_i) with the lower limit floored at
// zero.  The scalar UCL/LCL use the average sample size; PerPoint carries
// the varying limits when sizes differ.
func ComputeP(samples []Sample) (ControlLimits, error) {
	if len(samples) == 0 {
		return ControlLimits{}, fmt.Errorf("p chart needs at least 1 sample: %w", ErrInsufficientData)
	}

	totalDefects, totalSize := 0, 0
	for i, s := range samples {
		if s.Size <= 0 {
			return ControlLimits{}, fmt.Errorf("sample %d has size %d, need > 0: %w", i, s.Size, ErrInsufficientData)
		}
		if s.Defects < 0 || s.Defects > s.Size {
			return ControlLimits{}, fmt.Errorf("sample %d has %d defects out of %d units: %w", i, s.Defects, s.Size, ErrInsufficientData)
		}
		totalDefects += s.Defects
		totalSize += s.Size
	}

	pbar := float64(totalDefects) / float64(totalSize)
	if pbar <= 0 || pbar >= 1 {
		return ControlLimits{}, fmt.Errorf("pooled proportion %0.4f leaves zero binomial variance: %w", pbar, ErrDegenerateSeries)
	}

	nbar := float64(totalSize) / float64(len(samples))
	sigma := math.Sqrt(pbar * (1 - pbar) / nbar)

	limits := ControlLimits{
		UCL:        pbar + 3.0*sigma,
		CenterLine: pbar,
		LCL:        math.Max(0, pbar-3.0*sigma),
		Sigma:      sigma,
	}

	if varyingSizes(samples) {
		limits.PerPoint = make([]Band, 0, len(samples))
		for _, s := range samples {
			si := math.Sqrt(pbar * (1 - pbar) / float64(s.Size))
			limits.PerPoint = append(limits.PerPoint, Band{
				UCL: pbar + 3.0*si,
				LCL: math.Max(0, pbar-3.0*si),
			})
		}
	}
	return limits, nil
}

func varyingSizes(samples []Sample) bool {
	for _, s := range samples[1:] {
		if s.Size != samples[0].Size {
			return true
		}
	}
	return false
}
