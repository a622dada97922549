// Package rules implements the eight Western Electric run rules over a
// zone-classified measurement series.  Each rule is an independent pure
// scan registered by number; enabling or disabling rules is a filter over
// the registry.
package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/machshop/spc/pkg/chart"
	"github.com/machshop/spc/pkg/series"
)

// Severity ranks how actionable a violation is
type Severity string

const (
	Critical Severity = "CRITICAL"
	Warning  Severity = "WARNING"
	Info     Severity = "INFO"
)

// Violation is a fresh value produced on every scan; it carries the data
// point indices that form the matched pattern
type Violation struct {
	Rule        int      `json:"ruleNumber"`
	Severity    Severity `json:"severity"`
	Indices     []int    `json:"dataPointIndices"`
	Description string   `json:"description"`
}

// ErrEmptyData indicates a scan was requested over an empty series
var ErrEmptyData = errors.New("empty series")

// zpoint is a point classified against the control limit zones.  dev is
// the signed deviation from the center line in sigma units.
type zpoint struct {
	index int
	value float64
	dev   float64
}

func classify(points []series.Point, limits chart.ControlLimits) []zpoint {
	out := make([]zpoint, 0, len(points))
	for _, p := range points {
		out = append(out, zpoint{
			index: p.Index,
			value: p.Value,
			dev:   (p.Value - limits.CenterLine) / limits.Sigma,
		})
	}
	return out
}

type scanFn func(pts []zpoint, sens Sensitivity) []Violation

var registry = map[int]scanFn{
	1: scanBeyondThreeSigma,
	2: scanSameSideRun,
	3: scanMonotonicRun,
	4: scanAlternatingRun,
	5: scanTwoOfThree,
	6: scanFourOfFive,
	7: scanStratification,
	8: scanMixture,
}

// Scan evaluates the enabled rules against the series and limits at the
// given sensitivity.  The result is ordered by rule number, then by first
// offending index.  Rule numbers outside 1..8 are rejected; an empty
// enabled set produces an empty result without error.
func Scan(s *series.Series, limits chart.ControlLimits, enabled []int, sens Sensitivity) ([]Violation, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("cannot scan: %w", ErrEmptyData)
	}
	if limits.Sigma <= 0 {
		return nil, fmt.Errorf("limits must carry a positive sigma, got %f", limits.Sigma)
	}
	if err := sens.validate(); err != nil {
		return nil, err
	}

	active := make([]int, 0, len(enabled))
	seen := make(map[int]bool, len(enabled))
	for _, n := range enabled {
		if _, ok := registry[n]; !ok {
			return nil, fmt.Errorf("unknown rule number %d", n)
		}
		if !seen[n] {
			seen[n] = true
			active = append(active, n)
		}
	}
	sort.Ints(active)

	pts := classify(s.Points(), limits)
	var out []Violation
	for _, n := range active {
		out = append(out, registry[n](pts, sens)...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rule != out[j].Rule {
			return out[i].Rule < out[j].Rule
		}
		return out[i].Indices[0] < out[j].Indices[0]
	})
	return out, nil
}

func indices(pts []zpoint) []int {
	out := make([]int, 0, len(pts))
	for _, p := range pts {
		out = append(out, p.index)
	}
	return out
}

func sideName(side float64) string {
	if side < 0 {
		return "below"
	}
	return "above"
}
