package chart

import (
	"errors"
)

// Type identifies the control chart variant used to derive limits
type Type string

const (
	// Individuals is an I-MR chart for single measurements
	Individuals Type = "I_MR"
	// XBarR is an averages chart over fixed-size subgroups
	XBarR Type = "X_BAR_R"
	// P is a proportion-defective chart
	P Type = "P_CHART"
)

// Supported reports whether t is a chart type this engine can compute
func Supported(t Type) bool {
	switch t {
	case Individuals, XBarR, P:
		return true
	default:
		return false
	}
}

var (
	// ErrInsufficientData indicates fewer points than the chart's minimum
	ErrInsufficientData = errors.New("insufficient data for control limits")
	// ErrDegenerateSeries indicates a zero-variance series that cannot
	// produce a positive sigma
	ErrDegenerateSeries = errors.New("series has zero variance")
	// ErrUnsupportedSubgroupSize indicates a subgroup size outside the
	// tabulated constant range
	ErrUnsupportedSubgroupSize = errors.New("unsupported subgroup size")
	// ErrInvalidSpecLimits indicates USL <= LSL
	ErrInvalidSpecLimits = errors.New("LSL must be less than USL")
)

// Band is a per-point limit pair used by proportion charts when sample
// sizes differ between samples
type Band struct {
	UCL float64 `json:"ucl"`
	LCL float64 `json:"lcl"`
}

// ControlLimits is an immutable value record describing the bounds within
// which a stable process is expected to vary.  Never mutate a returned
// ControlLimits; derive a new value with WithSpec instead.
type ControlLimits struct {
	UCL        float64  `json:"ucl"`
	CenterLine float64  `json:"centerLine"`
	LCL        float64  `json:"lcl"`
	Sigma      float64  `json:"sigma"`
	USL        *float64 `json:"usl,omitempty"`
	LSL        *float64 `json:"lsl,omitempty"`
	Target     *float64 `json:"target,omitempty"`

	// PerPoint carries varying limits for proportion charts with unequal
	// sample sizes.  Nil for all other chart types.
	PerPoint []Band `json:"perPoint,omitempty"`
}

// SpecLimits are externally supplied engineering specification limits
type SpecLimits struct {
	USL    *float64
	LSL    *float64
	Target *float64
}

// Validate rejects spec limits with USL <= LSL
func (sp SpecLimits) Validate() error {
	if sp.USL != nil && sp.LSL != nil && *sp.USL <= *sp.LSL {
		return ErrInvalidSpecLimits
	}
	return nil
}

// Empty reports whether neither spec limit is present
func (sp SpecLimits) Empty() bool {
	return sp.USL == nil && sp.LSL == nil
}

// WithSpec returns a copy of the limits carrying the supplied spec limits
// for downstream capability analysis.  When recenter is true the center
// line moves to the target (or the USL/LSL midpoint if no target is given)
// and the control limits are rebuilt at +/- 3 sigma around it; sigma is
// always the data-derived estimate since spec limits alone cannot supply a
// process spread.
func (l ControlLimits) WithSpec(sp SpecLimits, recenter bool) (ControlLimits, error) {
	if err := sp.Validate(); err != nil {
		return ControlLimits{}, err
	}
	out := l
	out.USL = sp.USL
	out.LSL = sp.LSL
	out.Target = sp.Target
	if !recenter {
		return out, nil
	}
	switch {
	case sp.Target != nil:
		out.CenterLine = *sp.Target
	case sp.USL != nil && sp.LSL != nil:
		out.CenterLine = (*sp.USL + *sp.LSL) / 2.0
	default:
		return out, nil
	}
	out.UCL = out.CenterLine + 3.0*out.Sigma
	out.LCL = out.CenterLine - 3.0*out.Sigma
	return out, nil
}
