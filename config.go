package spc

import (
	"fmt"

	"github.com/machshop/spc/pkg/chart"
	"github.com/machshop/spc/pkg/rules"
	"github.com/machshop/spc/pkg/stat"
)

// LimitsBasis selects how control limits are derived
type LimitsBasis string

const (
	// HistoricalData estimates limits from the measurement series itself
	HistoricalData LimitsBasis = "HISTORICAL_DATA"
	// SpecLimits centers limits on the engineering specification while
	// sigma is still estimated from the data
	SpecLimits LimitsBasis = "SPEC_LIMITS"
)

// Config is the SPC configuration for one monitored parameter.
// Configurations are deactivated rather than deleted so that historical
// violations remain attributable to the configuration that produced them.
type Config struct {
	ParameterID        string            `json:"parameterId"`
	Chart              chart.Type        `json:"chartType"`
	SubgroupSize       int               `json:"subgroupSize,omitempty"`
	SampleSize         int               `json:"sampleSize,omitempty"`
	Basis              LimitsBasis       `json:"limitsBasedOn"`
	HistoricalDataDays int               `json:"historicalDataDays,omitempty"`
	USL                *float64          `json:"usl,omitempty"`
	LSL                *float64          `json:"lsl,omitempty"`
	Target             *float64          `json:"targetValue,omitempty"`
	EnabledRules       []int             `json:"enabledRules"`
	Sensitivity        rules.Sensitivity `json:"ruleSensitivity"`
	EnableCapability   bool              `json:"enableCapability"`
	ConfidenceLevel    float64           `json:"confidenceLevel,omitempty"`
	NonNegative        bool              `json:"nonNegative,omitempty"`
	Active             bool              `json:"isActive"`
}

// ConfigOption applies one setting to a configuration under construction
type ConfigOption func(c *Config) error

// NewConfig builds a configuration for the given parameter with defaults
// of an individuals chart, historical-data limits, all eight rules at
// NORMAL sensitivity, and the configuration active.  All validation
// errors are collected and returned together.
func NewConfig(parameterID string, options ...ConfigOption) (*Config, []error) {
	c := &Config{
		ParameterID:  parameterID,
		Chart:        chart.Individuals,
		Basis:        HistoricalData,
		EnabledRules: []int{1, 2, 3, 4, 5, 6, 7, 8},
		Sensitivity:  rules.Normal,
		Active:       true,
	}

	var errors []error
	for _, option := range options {
		if err := option(c); err != nil {
			errors = append(errors, err)
		}
	}
	errors = append(errors, c.Validate()...)

	if len(errors) > 0 {
		return nil, errors
	}
	return c, nil
}

// Validate checks the configuration for internal consistency.  It is
// called by NewConfig and again by Analyze so that configurations decoded
// from external stores are held to the same rules.
func (c *Config) Validate() []error {
	var errs []error

	if c.ParameterID == "" {
		errs = append(errs, fmt.Errorf("parameter id must be non-empty"))
	}
	if !chart.Supported(c.Chart) {
		errs = append(errs, fmt.Errorf("unsupported chart type %q", string(c.Chart)))
	}
	if c.Chart == chart.XBarR {
		if c.SubgroupSize < stat.MinSubgroupSize || c.SubgroupSize > stat.MaxSubgroupSize {
			errs = append(errs, fmt.Errorf("x-bar r chart requires a subgroup size between %d and %d, got %d", stat.MinSubgroupSize, stat.MaxSubgroupSize, c.SubgroupSize))
		}
	}
	if c.SampleSize < 0 {
		errs = append(errs, fmt.Errorf("sample size must be >= 0, got %d", c.SampleSize))
	}
	if c.HistoricalDataDays < 0 {
		errs = append(errs, fmt.Errorf("historical data days must be >= 0, got %d", c.HistoricalDataDays))
	}
	for _, r := range c.EnabledRules {
		if r < 1 || r > 8 {
			errs = append(errs, fmt.Errorf("rule numbers must be between 1 and 8, got %d", r))
		}
	}
	switch c.Sensitivity {
	case rules.Strict, rules.Normal, rules.Relaxed:
	default:
		errs = append(errs, fmt.Errorf("unknown rule sensitivity %q", string(c.Sensitivity)))
	}
	if c.USL != nil && c.LSL != nil && *c.USL <= *c.LSL {
		errs = append(errs, fmt.Errorf("lower spec limit %0.4f must be below upper spec limit %0.4f", *c.LSL, *c.USL))
	}
	if c.Basis == SpecLimits && (c.USL == nil || c.LSL == nil) {
		errs = append(errs, fmt.Errorf("spec-limit based control limits require both USL and LSL"))
	}
	if c.Basis != HistoricalData && c.Basis != SpecLimits {
		errs = append(errs, fmt.Errorf("unknown limits basis %q", string(c.Basis)))
	}
	if c.ConfidenceLevel != 0 && (c.ConfidenceLevel <= 0 || c.ConfidenceLevel >= 1) {
		errs = append(errs, fmt.Errorf("confidence level must be in (0,1), got %0.4f", c.ConfidenceLevel))
	}
	return errs
}

// ChartType selects the control chart variant
func ChartType(t chart.Type) ConfigOption {
	return func(c *Config) error {
		c.Chart = t
		return nil
	}
}

// SubgroupSize sets the number of consecutive measurements per subgroup
// for X-bar R charts
func SubgroupSize(n int) ConfigOption {
	return func(c *Config) error {
		c.SubgroupSize = n
		return nil
	}
}

// SampleSize sets the inspected units per sample for proportion charts
// when measurement values arrive as defect counts
func SampleSize(n int) ConfigOption {
	return func(c *Config) error {
		if n < 1 {
			return fmt.Errorf("sample size must be >= 1, got %d", n)
		}
		c.SampleSize = n
		return nil
	}
}

// LimitsFrom selects the control limit basis
func LimitsFrom(b LimitsBasis) ConfigOption {
	return func(c *Config) error {
		c.Basis = b
		return nil
	}
}

// HistoricalDays sets the lookback window the measurement source should
// use when assembling the series
func HistoricalDays(d int) ConfigOption {
	return func(c *Config) error {
		if d < 1 {
			return fmt.Errorf("historical data days must be >= 1, got %d", d)
		}
		c.HistoricalDataDays = d
		return nil
	}
}

// USL sets the upper specification limit
func USL(v float64) ConfigOption {
	return func(c *Config) error {
		c.USL = &v
		return nil
	}
}

// LSL sets the lower specification limit
func LSL(v float64) ConfigOption {
	return func(c *Config) error {
		c.LSL = &v
		return nil
	}
}

// Target sets the process target value
func Target(v float64) ConfigOption {
	return func(c *Config) error {
		c.Target = &v
		return nil
	}
}

// EnabledRules replaces the default rule set
func EnabledRules(nums ...int) ConfigOption {
	return func(c *Config) error {
		c.EnabledRules = nums
		return nil
	}
}

// Sensitivity sets how aggressively the rule thresholds fire
func Sensitivity(s rules.Sensitivity) ConfigOption {
	return func(c *Config) error {
		c.Sensitivity = s
		return nil
	}
}

// WithCapability enables capability index computation when spec limits
// are present
func WithCapability() ConfigOption {
	return func(c *Config) error {
		c.EnableCapability = true
		return nil
	}
}

// ConfidenceLevel records the confidence level used by reporting layers
func ConfidenceLevel(v float64) ConfigOption {
	return func(c *Config) error {
		c.ConfidenceLevel = v
		return nil
	}
}

// NonNegativeQuantity floors the lower control limit at zero for measured
// quantities that cannot go below it
func NonNegativeQuantity() ConfigOption {
	return func(c *Config) error {
		c.NonNegative = true
		return nil
	}
}

// Inactive creates the configuration in a deactivated state
func Inactive() ConfigOption {
	return func(c *Config) error {
		c.Active = false
		return nil
	}
}
