package rules

import (
	"fmt"
	"math"
)

// Sensitivity rescales the base run-length thresholds.  STRICT flags
// sooner, RELAXED later; NORMAL uses the Western Electric base values.
// For identical inputs the violation counts are monotone:
// STRICT >= NORMAL >= RELAXED.
type Sensitivity string

const (
	Strict  Sensitivity = "STRICT"
	Normal  Sensitivity = "NORMAL"
	Relaxed Sensitivity = "RELAXED"
)

const (
	strictFactor  = 0.75
	relaxedFactor = 1.25
)

func (s Sensitivity) validate() error {
	switch s {
	case Strict, Normal, Relaxed:
		return nil
	default:
		return fmt.Errorf("unknown sensitivity %q", string(s))
	}
}

// runThreshold scales a run-length threshold.  STRICT rounds down (flags
// on shorter runs, never below 2), RELAXED rounds up.
func runThreshold(base int, sens Sensitivity) int {
	switch sens {
	case Strict:
		n := int(math.Floor(float64(base) * strictFactor))
		if n < 2 {
			n = 2
		}
		return n
	case Relaxed:
		return int(math.Ceil(float64(base) * relaxedFactor))
	default:
		return base
	}
}

// windowThreshold scales an m-of-n window threshold, keeping numerator and
// denominator consistent.  STRICT scales both by 0.75 rounding the
// numerator toward fewer required points and the window up; RELAXED scales
// both by 1.25 rounding the numerator up and the window down.  The window
// is clamped to at least the numerator.
func windowThreshold(m, n int, sens Sensitivity) (int, int) {
	switch sens {
	case Strict:
		mm := int(math.Floor(float64(m) * strictFactor))
		if mm < 1 {
			mm = 1
		}
		nn := int(math.Ceil(float64(n) * strictFactor))
		if nn < mm {
			nn = mm
		}
		return mm, nn
	case Relaxed:
		mm := int(math.Ceil(float64(m) * relaxedFactor))
		nn := int(math.Floor(float64(n) * relaxedFactor))
		if nn < mm {
			nn = mm
		}
		return mm, nn
	default:
		return m, n
	}
}
