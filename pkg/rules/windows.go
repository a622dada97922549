package rules

import "fmt"

// Rule 5: m of n consecutive points beyond 2 sigma on the same side
// (base 2 of 3).
func scanTwoOfThree(pts []zpoint, sens Sensitivity) []Violation {
	return slidingWindow(pts, sens, windowRule{
		rule:     5,
		severity: Warning,
		baseM:    2,
		baseN:    3,
		boundary: 2.0,
	})
}

// Rule 6: m of n consecutive points beyond 1 sigma on the same side
// (base 4 of 5).
func scanFourOfFive(pts []zpoint, sens Sensitivity) []Violation {
	return slidingWindow(pts, sens, windowRule{
		rule:     6,
		severity: Info,
		baseM:    4,
		baseN:    5,
		boundary: 1.0,
	})
}

type windowRule struct {
	rule     int
	severity Severity
	baseM    int
	baseN    int
	boundary float64
}

// slidingWindow emits one violation per window ending index where at
// least m of the last n points sit beyond the boundary on one side and
// the ending point itself is one of them.  Anchoring on the ending point
// keeps firings attached to offending measurements and preserves the
// sensitivity monotonicity across threshold scalings.
func slidingWindow(pts []zpoint, sens Sensitivity, wr windowRule) []Violation {
	m, n := windowThreshold(wr.baseM, wr.baseN, sens)
	var out []Violation
	for i := range pts {
		start := i - n + 1
		if start < 0 {
			start = 0
		}
		for _, side := range []float64{1.0, -1.0} {
			if pts[i].dev*side <= wr.boundary {
				continue
			}
			var offenders []zpoint
			for _, p := range pts[start : i+1] {
				if p.dev*side > wr.boundary {
					offenders = append(offenders, p)
				}
			}
			if len(offenders) >= m {
				out = append(out, Violation{
					Rule:     wr.rule,
					Severity: wr.severity,
					Indices:  indices(offenders),
					Description: fmt.Sprintf("%d of the last %d points beyond %0.0f sigma %s the center line",
						len(offenders), i+1-start, wr.boundary, sideName(side)),
				})
			}
		}
	}
	return out
}
