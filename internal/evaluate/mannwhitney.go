package evaluate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// mannWhitneyU runs the two-sided Mann-Whitney U test using the normal
// approximation with tie correction and continuity correction. The rank
// arithmetic is done here and only the CDF is delegated to distuv; no
// library in the stack ships a ready U test.
func mannWhitneyU(x, y []float64) (float64, float64) {
	n1 := len(x)
	n2 := len(y)
	if n1 == 0 || n2 == 0 {
		return 0, 1
	}

	type obs struct {
		value float64
		first bool // belongs to x
	}
	pooled := make([]obs, 0, n1+n2)
	for _, v := range x {
		pooled = append(pooled, obs{v, true})
	}
	for _, v := range y {
		pooled = append(pooled, obs{v, false})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	// Average ranks over ties, accumulating the tie correction term
	// sum(t^3 - t) as we go.
	rankSumX := 0.0
	tieTerm := 0.0
	i := 0
	for i < len(pooled) {
		j := i
		for j < len(pooled) && pooled[j].value == pooled[i].value {
			j++
		}
		// Ranks are 1-based; tied observations share the average rank.
		avgRank := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			if pooled[k].first {
				rankSumX += avgRank
			}
		}
		t := float64(j - i)
		if t > 1 {
			tieTerm += t*t*t - t
		}
		i = j
	}

	fn1 := float64(n1)
	fn2 := float64(n2)
	n := fn1 + fn2

	u1 := rankSumX - fn1*(fn1+1)/2.0
	u2 := fn1*fn2 - u1
	u := math.Min(u1, u2)

	mu := fn1 * fn2 / 2.0
	sigmaSq := fn1 * fn2 / 12.0 * ((n + 1) - tieTerm/(n*(n-1)))
	if sigmaSq <= 0 {
		// Every observation tied: no evidence either way.
		return u, 1
	}
	sigma := math.Sqrt(sigmaSq)

	z := (math.Abs(u-mu) - 0.5) / sigma
	if z < 0 {
		z = 0
	}
	p := 2 * (1 - distuv.UnitNormal.CDF(z))
	if p > 1 {
		p = 1
	}
	return u, p
}
