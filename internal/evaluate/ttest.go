package evaluate

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// studentTTest runs the equal-variance two-sample t-test. Returns the t
// statistic and the two-tailed p-value. Degenerate inputs (zero pooled
// variance) yield t=0, p=1; the evaluator flags them separately.
func studentTTest(x, y []float64) (float64, float64) {
	n1 := float64(len(x))
	n2 := float64(len(y))
	m1, _ := stats.Mean(x)
	m2, _ := stats.Mean(y)
	v1, _ := stats.SampleVariance(x)
	v2, _ := stats.SampleVariance(y)

	sp := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
	se := sp * math.Sqrt(1/n1+1/n2)
	if se == 0 {
		return 0, 1
	}

	t := (m1 - m2) / se
	df := n1 + n2 - 2
	return t, twoTailedT(t, df)
}

// welchTTest runs the unequal-variance t-test with Welch-Satterthwaite
// degrees of freedom.
func welchTTest(x, y []float64) (float64, float64) {
	n1 := float64(len(x))
	n2 := float64(len(y))
	m1, _ := stats.Mean(x)
	m2, _ := stats.Mean(y)
	v1, _ := stats.SampleVariance(x)
	v2, _ := stats.SampleVariance(y)

	se := math.Sqrt(v1/n1 + v2/n2)
	if se == 0 {
		return 0, 1
	}

	t := (m1 - m2) / se
	df := math.Pow(v1/n1+v2/n2, 2) /
		(math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1))
	return t, twoTailedT(t, df)
}

// twoTailedT computes the exact two-tailed p-value from the Student t
// distribution.
func twoTailedT(t, df float64) float64 {
	if df <= 0 {
		return 1
	}
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * (1 - dist.CDF(math.Abs(t)))
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	return p
}
