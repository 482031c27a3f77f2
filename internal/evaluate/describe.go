package evaluate

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"carepath/domain/compare"
)

// Describe computes the descriptive block for one duration column. The 95%
// CI uses the normal approximation (1.96) for n >= 30 and the Student t
// quantile with n-1 degrees of freedom below that, so small-n sweep cells
// stay honest.
func Describe(data []float64) compare.Descriptives {
	n := len(data)
	if n == 0 {
		return compare.Descriptives{}
	}

	mean, _ := stats.Mean(data)
	median, _ := stats.Median(data)
	min, _ := stats.Min(data)
	max, _ := stats.Max(data)
	q25, _ := stats.Percentile(data, 25)
	q75, _ := stats.Percentile(data, 75)

	sd := 0.0
	if n >= 2 {
		sd, _ = stats.StandardDeviationSample(data)
	}

	d := compare.Descriptives{
		N:      n,
		Mean:   mean,
		Median: median,
		StdDev: sd,
		Min:    min,
		Max:    max,
		Q25:    q25,
		Q75:    q75,
	}

	if n >= 2 {
		se := sd / math.Sqrt(float64(n))
		q := 1.96
		if n < 30 {
			q = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 1)}.Quantile(0.975)
		}
		d.CILower = mean - q*se
		d.CIUpper = mean + q*se
	} else {
		d.CILower = mean
		d.CIUpper = mean
	}

	return d
}
