package evaluate

import (
	"math"

	"github.com/montanaflynn/stats"
)

// degenerateSD is the pooled-SD threshold below which Cohen's d is
// uninterpretable and reported as 0 with a degeneracy warning instead.
const degenerateSD = 1e-12

// pooledStd computes the standard pooled standard deviation of two samples.
func pooledStd(x, y []float64) float64 {
	n1 := float64(len(x))
	n2 := float64(len(y))
	v1, _ := stats.SampleVariance(x)
	v2, _ := stats.SampleVariance(y)
	return math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
}

// effectSizes computes Cohen's d and Hedges' g (small-sample corrected).
// degenerate reports a pooled SD at or near zero, in which case both effect
// sizes are returned as 0 rather than an unbounded number.
func effectSizes(x, y []float64) (d, g float64, degenerate bool) {
	sp := pooledStd(x, y)
	if sp < degenerateSD {
		return 0, 0, true
	}

	m1, _ := stats.Mean(x)
	m2, _ := stats.Mean(y)
	d = (m1 - m2) / sp

	n := float64(len(x) + len(y))
	correction := 1 - 3/(4*n-9)
	g = d * correction
	return d, g, false
}
