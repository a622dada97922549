package rules

import (
	"fmt"
	"math"
)

// Rule 1: a single point beyond 3 sigma.  One violation per offending
// point; sensitivity does not apply to a single-point rule.
func scanBeyondThreeSigma(pts []zpoint, _ Sensitivity) []Violation {
	var out []Violation
	for _, p := range pts {
		if math.Abs(p.dev) > 3.0 {
			out = append(out, Violation{
				Rule:        1,
				Severity:    Critical,
				Indices:     []int{p.index},
				Description: fmt.Sprintf("point %0.4f beyond 3 sigma %s the center line", p.value, sideName(p.dev)),
			})
		}
	}
	return out
}

// Rule 2: a run of consecutive points on the same side of the center
// line.  A point exactly on the center line breaks the run.
func scanSameSideRun(pts []zpoint, sens Sensitivity) []Violation {
	threshold := runThreshold(9, sens)
	var out []Violation
	var run []zpoint
	side := 0.0

	flush := func() {
		if len(run) >= threshold {
			out = append(out, Violation{
				Rule:        2,
				Severity:    Warning,
				Indices:     indices(run),
				Description: fmt.Sprintf("%d consecutive points %s the center line", len(run), sideName(side)),
			})
		}
	}
	for _, p := range pts {
		s := 0.0
		if p.dev > 0 {
			s = 1.0
		} else if p.dev < 0 {
			s = -1.0
		}
		if s == 0 || s != side {
			flush()
			run = run[:0]
			side = s
		}
		if s != 0 {
			run = append(run, p)
		}
	}
	flush()
	return out
}

// Rule 3: a monotonic run of steadily increasing or decreasing points.
// Equal consecutive values break the run.
func scanMonotonicRun(pts []zpoint, sens Sensitivity) []Violation {
	threshold := runThreshold(6, sens)
	var out []Violation
	var run []zpoint
	dir := 0.0

	flush := func() {
		if len(run) >= threshold {
			trend := "increasing"
			if dir < 0 {
				trend = "decreasing"
			}
			out = append(out, Violation{
				Rule:        3,
				Severity:    Warning,
				Indices:     indices(run),
				Description: fmt.Sprintf("%d consecutive points steadily %s", len(run), trend),
			})
		}
	}
	for i, p := range pts {
		if i == 0 {
			run = append(run, p)
			continue
		}
		d := 0.0
		if p.value > pts[i-1].value {
			d = 1.0
		} else if p.value < pts[i-1].value {
			d = -1.0
		}
		switch {
		case d == 0:
			flush()
			run = run[:0]
			dir = 0
			run = append(run, p)
		case d == dir || dir == 0:
			dir = d
			run = append(run, p)
		default:
			flush()
			dir = d
			run = []zpoint{pts[i-1], p}
		}
	}
	flush()
	return out
}

// Rule 4: consecutive points alternating up and down.  A zero delta
// breaks the alternation.
func scanAlternatingRun(pts []zpoint, sens Sensitivity) []Violation {
	threshold := runThreshold(14, sens)
	var out []Violation
	var run []zpoint
	prev := 0.0

	flush := func() {
		if len(run) >= threshold {
			out = append(out, Violation{
				Rule:        4,
				Severity:    Warning,
				Indices:     indices(run),
				Description: fmt.Sprintf("%d consecutive points alternating up and down", len(run)),
			})
		}
	}
	for i, p := range pts {
		if i == 0 {
			run = append(run, p)
			continue
		}
		d := 0.0
		if p.value > pts[i-1].value {
			d = 1.0
		} else if p.value < pts[i-1].value {
			d = -1.0
		}
		switch {
		case d == 0:
			flush()
			run = []zpoint{p}
			prev = 0
		case prev == 0 || d == -prev:
			prev = d
			run = append(run, p)
		default:
			flush()
			prev = d
			run = []zpoint{pts[i-1], p}
		}
	}
	flush()
	return out
}

// Rule 7: a run of consecutive points all within 1 sigma of the center
// line, indicating stratification or an inflated sigma estimate.
func scanStratification(pts []zpoint, sens Sensitivity) []Violation {
	threshold := runThreshold(15, sens)
	return zoneRun(pts, threshold, func(p zpoint) bool { return math.Abs(p.dev) <= 1.0 },
		7, Info, "%d consecutive points within 1 sigma of the center line")
}

// Rule 8: a run of consecutive points all beyond 1 sigma with none in
// zone C, the classic mixture pattern.
func scanMixture(pts []zpoint, sens Sensitivity) []Violation {
	threshold := runThreshold(8, sens)
	return zoneRun(pts, threshold, func(p zpoint) bool { return math.Abs(p.dev) > 1.0 },
		8, Warning, "%d consecutive points beyond 1 sigma on either side of the center line")
}

func zoneRun(pts []zpoint, threshold int, match func(zpoint) bool, rule int, sev Severity, format string) []Violation {
	var out []Violation
	var run []zpoint

	flush := func() {
		if len(run) >= threshold {
			out = append(out, Violation{
				Rule:        rule,
				Severity:    sev,
				Indices:     indices(run),
				Description: fmt.Sprintf(format, len(run)),
			})
		}
	}
	for _, p := range pts {
		if match(p) {
			run = append(run, p)
			continue
		}
		flush()
		run = run[:0]
	}
	flush()
	return out
}
