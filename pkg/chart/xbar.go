package chart

import (
	"fmt"

	"github.com/machshop/spc/pkg/series"
	"github.com/machshop/spc/pkg/stat"
)

// ComputeXBarR derives X-bar chart limits from fixed-size subgroups.  The
// center line is the grand average of subgroup means and the limits are
// center +/- A2(n)*R-bar, the tabulated equivalent of +/- 3 sigma for
// subgroup averages.  Sigma is the subgroup-mean sigma A2(n)*R-bar/3 so
// that rule zones scale correctly for the plotted statistic; the
// within-subgroup sigma for individuals is R-bar/d2(n).
func ComputeXBarR(groups []series.Subgroup, opts ...Option) (ControlLimits, error) {
	var o calcOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(groups) < 2 {
		return ControlLimits{}, fmt.Errorf("x-bar chart needs at least 2 subgroups, got %d: %w", len(groups), ErrInsufficientData)
	}
	n := len(groups[0].Points)
	for i, g := range groups {
		if len(g.Points) != n {
			return ControlLimits{}, fmt.Errorf("subgroup %d has %d points, expected %d: %w", i, len(g.Points), n, ErrInsufficientData)
		}
	}

	a2, ok := stat.A2(n)
	if !ok {
		return ControlLimits{}, fmt.Errorf("subgroup size %d outside tabulated range %d..%d: %w", n, stat.MinSubgroupSize, stat.MaxSubgroupSize, ErrUnsupportedSubgroupSize)
	}

	means := make([]float64, 0, len(groups))
	ranges := make([]float64, 0, len(groups))
	for _, g := range groups {
		means = append(means, g.Mean())
		ranges = append(ranges, g.Range())
	}

	center := stat.Mean(means)
	rbar := stat.Mean(ranges)
	sigma := a2 * rbar / 3.0
	if sigma <= 0 {
		return ControlLimits{}, fmt.Errorf("cannot derive limits from constant subgroups: %w", ErrDegenerateSeries)
	}

	lcl := center - a2*rbar
	if o.nonNegative && lcl < 0 {
		lcl = 0
	}
	return ControlLimits{
		UCL:        center + a2*rbar,
		CenterLine: center,
		LCL:        lcl,
		Sigma:      sigma,
	}, nil
}

// ComputeRangeLimits derives R chart limits for the same subgroups, used
// alongside the X-bar chart to monitor within-subgroup spread.  Limits are
// D3(n)*R-bar and D4(n)*R-bar; sigma is (D4(n)-1)*R-bar/3 so the upper
// limit sits at center + 3 sigma.  The lower limit is asymmetric by
// construction since a range cannot go below zero.
func ComputeRangeLimits(groups []series.Subgroup) (ControlLimits, error) {
	if len(groups) < 2 {
		return ControlLimits{}, fmt.Errorf("r chart needs at least 2 subgroups, got %d: %w", len(groups), ErrInsufficientData)
	}
	n := len(groups[0].Points)
	d3, ok := stat.D3(n)
	if !ok {
		return ControlLimits{}, fmt.Errorf("subgroup size %d outside tabulated range %d..%d: %w", n, stat.MinSubgroupSize, stat.MaxSubgroupSize, ErrUnsupportedSubgroupSize)
	}
	d4, _ := stat.D4(n)

	ranges := make([]float64, 0, len(groups))
	for _, g := range groups {
		ranges = append(ranges, g.Range())
	}
	rbar := stat.Mean(ranges)
	if rbar <= 0 {
		return ControlLimits{}, fmt.Errorf("cannot derive limits from constant subgroups: %w", ErrDegenerateSeries)
	}

	return ControlLimits{
		UCL:        d4 * rbar,
		CenterLine: rbar,
		LCL:        d3 * rbar,
		Sigma:      (d4 - 1) * rbar / 3.0,
	}, nil
}
