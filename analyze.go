// Package spc is a stateless statistical process control engine.  Given a
// parameter configuration and an ordered measurement series it derives
// control limits, scans the series against the enabled Western Electric
// rules, and optionally computes process capability indices.  Every call
// owns its inputs and allocates fresh outputs, so concurrent calls need no
// locking.
package spc

import (
	"errors"
	"fmt"
	"math"

	"github.com/machshop/spc/pkg/capability"
	"github.com/machshop/spc/pkg/chart"
	"github.com/machshop/spc/pkg/rules"
	"github.com/machshop/spc/pkg/series"
	"github.com/machshop/spc/pkg/stat"
)

var (
	// ErrInvalidConfiguration indicates the configuration was rejected
	// before any computation
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrEmptyData indicates an empty measurement series
	ErrEmptyData = errors.New("empty measurement series")
)

// Result is the combined output of one analysis call
type Result struct {
	Limits chart.ControlLimits `json:"limits"`

	// RangeLimits accompany the X-bar limits so callers can plot the R
	// chart; nil for other chart types
	RangeLimits *chart.ControlLimits `json:"rangeLimits,omitempty"`

	Violations []rules.Violation `json:"violations"`

	// Capability is present only when enabled in the configuration and at
	// least one spec limit exists; it is never defaulted to zeros
	Capability *capability.Metrics `json:"capability,omitempty"`
}

// Analyze runs the full analysis for one parameter: control limits, rule
// violations, and capability.  It is pure and deterministic; calling it
// twice with identical inputs yields identical results.
func Analyze(cfg *Config, s *series.Series) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", ErrInvalidConfiguration)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
	}
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("cannot analyze: %w", ErrEmptyData)
	}

	switch cfg.Chart {
	case chart.Individuals:
		return analyzeIndividuals(cfg, s)
	case chart.XBarR:
		return analyzeXBarR(cfg, s)
	case chart.P:
		samples, err := samplesFromSeries(cfg, s)
		if err != nil {
			return nil, err
		}
		return analyzeP(cfg, samples)
	default:
		return nil, fmt.Errorf("unsupported chart type %q: %w", string(cfg.Chart), ErrInvalidConfiguration)
	}
}

// AnalyzeSamples runs a proportion chart analysis over explicit inspection
// samples, supporting unequal sample sizes that a plain measurement series
// cannot express.
func AnalyzeSamples(cfg *Config, samples []chart.Sample) (*Result, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config: %w", ErrInvalidConfiguration)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, errors.Join(errs...))
	}
	if cfg.Chart != chart.P {
		return nil, fmt.Errorf("explicit samples require a p chart, got %q: %w", string(cfg.Chart), ErrInvalidConfiguration)
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot analyze: %w", ErrEmptyData)
	}
	return analyzeP(cfg, samples)
}

func analyzeIndividuals(cfg *Config, s *series.Series) (*Result, error) {
	var opts []chart.Option
	if cfg.NonNegative {
		opts = append(opts, chart.NonNegative())
	}
	limits, err := chart.ComputeIndividuals(s, opts...)
	if err != nil {
		return nil, err
	}
	limits, err = applySpec(cfg, limits)
	if err != nil {
		return nil, err
	}

	violations, err := rules.Scan(s, limits, cfg.EnabledRules, cfg.Sensitivity)
	if err != nil {
		return nil, err
	}

	result := &Result{Limits: limits, Violations: violations}
	if capabilityWanted(cfg) {
		m, err := capability.Compute(s.Values(), cfg.USL, cfg.LSL, cfg.Target)
		if err != nil {
			return nil, err
		}
		result.Capability = &m
	}
	return result, nil
}

func analyzeXBarR(cfg *Config, s *series.Series) (*Result, error) {
	groups, err := s.Subgroups(cfg.SubgroupSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}

	var opts []chart.Option
	if cfg.NonNegative {
		opts = append(opts, chart.NonNegative())
	}
	limits, err := chart.ComputeXBarR(groups, opts...)
	if err != nil {
		return nil, err
	}
	rangeLimits, err := chart.ComputeRangeLimits(groups)
	if err != nil {
		return nil, err
	}
	limits, err = applySpec(cfg, limits)
	if err != nil {
		return nil, err
	}

	// the plotted statistic is the subgroup mean; violations are indexed
	// by subgroup ordinal
	means := make([]float64, 0, len(groups))
	for _, g := range groups {
		means = append(means, g.Mean())
	}
	violations, err := rules.Scan(series.FromValues(means), limits, cfg.EnabledRules, cfg.Sensitivity)
	if err != nil {
		return nil, err
	}

	result := &Result{Limits: limits, RangeLimits: &rangeLimits, Violations: violations}
	if capabilityWanted(cfg) {
		m, err := capability.ComputeWithin(s.Values(), cfg.USL, cfg.LSL, cfg.Target, withinSigma(groups))
		if err != nil {
			return nil, err
		}
		result.Capability = &m
	}
	return result, nil
}

func analyzeP(cfg *Config, samples []chart.Sample) (*Result, error) {
	limits, err := chart.ComputeP(samples)
	if err != nil {
		return nil, err
	}
	limits, err = applySpec(cfg, limits)
	if err != nil {
		return nil, err
	}

	points := make([]series.Point, 0, len(samples))
	for _, sm := range samples {
		points = append(points, series.Point{
			Index: sm.Index,
			Value: float64(sm.Defects) / float64(sm.Size),
		})
	}
	proportions, err := series.New(series.WithPoints(points))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	violations, err := rules.Scan(proportions, limits, cfg.EnabledRules, cfg.Sensitivity)
	if err != nil {
		return nil, err
	}

	// capability indices assume a continuous measurement and are not
	// defined for proportion data, so the p chart never emits them
	return &Result{Limits: limits, Violations: violations}, nil
}

func samplesFromSeries(cfg *Config, s *series.Series) ([]chart.Sample, error) {
	if cfg.SampleSize < 1 {
		return nil, fmt.Errorf("p chart over a measurement series requires a configured sample size: %w", ErrInvalidConfiguration)
	}
	samples := make([]chart.Sample, 0, s.Len())
	for _, p := range s.Points() {
		samples = append(samples, chart.Sample{
			Index:   p.Index,
			Defects: int(math.Round(p.Value)),
			Size:    cfg.SampleSize,
		})
	}
	return samples, nil
}

func applySpec(cfg *Config, limits chart.ControlLimits) (chart.ControlLimits, error) {
	sp := chart.SpecLimits{USL: cfg.USL, LSL: cfg.LSL, Target: cfg.Target}
	if sp.Empty() && sp.Target == nil {
		return limits, nil
	}
	out, err := limits.WithSpec(sp, cfg.Basis == SpecLimits)
	if err != nil {
		return chart.ControlLimits{}, err
	}
	return out, nil
}

func capabilityWanted(cfg *Config) bool {
	return cfg.EnableCapability && (cfg.USL != nil || cfg.LSL != nil)
}

// withinSigma estimates the within-subgroup sigma of individuals from the
// mean subgroup range, R-bar/d2(n).  Subgroup sizes are validated by the
// limit calculation before this runs.
func withinSigma(groups []series.Subgroup) float64 {
	ranges := make([]float64, 0, len(groups))
	for _, g := range groups {
		ranges = append(ranges, g.Range())
	}
	d2, _ := stat.D2(len(groups[0].Points))
	return stat.Mean(ranges) / d2
}
