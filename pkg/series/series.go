package series

import (
	"fmt"
	"time"
)

// Point is a single measurement in production order.  Index is assigned by
// the measurement source and corresponds to temporal order; the engine
// never reorders points.
type Point struct {
	Index     int       `json:"index"`
	Value     float64   `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Series is an ordered sequence of measurement points.  Indices are
// strictly increasing.  A Series is a value container only; all statistics
// are computed by the consumers.
type Series struct {
	points []Point
}

type Option func(s *Series) error

// New creates a series from the supplied options.  An empty series is
// representable so that consumers can reject it with a specific error.
func New(opts ...Option) (*Series, error) {
	s := &Series{}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithPoints initializes the series from existing points, enforcing
// strictly increasing indices
func WithPoints(points []Point) Option {
	return func(s *Series) error {
		for i, p := range points {
			if p.Index < 0 {
				return fmt.Errorf("point %d: index must be >= 0, got %d", i, p.Index)
			}
			if i > 0 && p.Index <= points[i-1].Index {
				return fmt.Errorf("point %d: indices must be strictly increasing, got %d after %d", i, p.Index, points[i-1].Index)
			}
		}
		s.points = append(s.points, points...)
		return nil
	}
}

// FromValues creates a series from raw values with indices 0..n-1 and zero
// timestamps.  Useful for historical batches where only ordering matters.
func FromValues(values []float64) *Series {
	points := make([]Point, 0, len(values))
	for i, v := range values {
		points = append(points, Point{Index: i, Value: v})
	}
	return &Series{points: points}
}

// Len returns the number of points in the series
func (s *Series) Len() int {
	return len(s.points)
}

// Values returns a copy of the measurement values in production order
func (s *Series) Values() []float64 {
	out := make([]float64, 0, len(s.points))
	for _, p := range s.points {
		out = append(out, p.Value)
	}
	return out
}

// Points returns a copy of the points in production order
func (s *Series) Points() []Point {
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Subgroup is a batch of consecutive measurements averaged together to
// reduce noise on an X-bar R chart
type Subgroup struct {
	Points []Point
}

// Mean returns the subgroup average
func (g Subgroup) Mean() float64 {
	if len(g.Points) == 0 {
		return 0.0
	}
	s := 0.0
	for _, p := range g.Points {
		s = s + p.Value
	}
	return s / float64(len(g.Points))
}

// Range returns the subgroup range (max - min)
func (g Subgroup) Range() float64 {
	if len(g.Points) == 0 {
		return 0.0
	}
	min, max := g.Points[0].Value, g.Points[0].Value
	for _, p := range g.Points[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	return max - min
}

// Subgroups partitions the series into consecutive subgroups of the given
// size.  A trailing partial subgroup is dropped since its range is not
// comparable to the complete groups.
func (s *Series) Subgroups(size int) ([]Subgroup, error) {
	if size < 2 {
		return nil, fmt.Errorf("subgroup size must be >= 2, got %d", size)
	}
	groups := make([]Subgroup, 0, len(s.points)/size)
	for i := 0; i+size <= len(s.points); i += size {
		g := Subgroup{Points: make([]Point, size)}
		copy(g.Points, s.points[i:i+size])
		groups = append(groups, g)
	}
	return groups, nil
}
