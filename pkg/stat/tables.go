package stat

// Standard control chart constants indexed by subgroup size.  These are
// tabulated rather than computed so that limit calculations are bitwise
// reproducible between runs.  Values follow the ASTM E2587 tables for
// subgroup sizes 2 through 10.

// MinSubgroupSize and MaxSubgroupSize bound the tabulated constants
const (
	MinSubgroupSize = 2
	MaxSubgroupSize = 10
)

var d2Table = map[int]float64{
	2:  1.128,
	3:  1.693,
	4:  2.059,
	5:  2.326,
	6:  2.534,
	7:  2.704,
	8:  2.847,
	9:  2.970,
	10: 3.078,
}

var a2Table = map[int]float64{
	2:  1.880,
	3:  1.023,
	4:  0.729,
	5:  0.577,
	6:  0.483,
	7:  0.419,
	8:  0.373,
	9:  0.337,
	10: 0.308,
}

var d3Table = map[int]float64{
	2:  0.0,
	3:  0.0,
	4:  0.0,
	5:  0.0,
	6:  0.0,
	7:  0.076,
	8:  0.136,
	9:  0.184,
	10: 0.223,
}

var d4Table = map[int]float64{
	2:  3.267,
	3:  2.574,
	4:  2.282,
	5:  2.114,
	6:  2.004,
	7:  1.924,
	8:  1.864,
	9:  1.816,
	10: 1.777,
}

// D2 returns the d2 bias-correction constant for estimating sigma from the
// mean range of subgroups of size n.  ok is false when n is outside the
// tabulated range.
func D2(n int) (float64, bool) {
	v, ok := d2Table[n]
	return v, ok
}

// A2 returns the X-bar chart limit factor for subgroups of size n
func A2(n int) (float64, bool) {
	v, ok := a2Table[n]
	return v, ok
}

// D3 returns the R chart lower limit factor for subgroups of size n
func D3(n int) (float64, bool) {
	v, ok := d3Table[n]
	return v, ok
}

// D4 returns the R chart upper limit factor for subgroups of size n
func D4(n int) (float64, bool) {
	v, ok := d4Table[n]
	return v, ok
}
