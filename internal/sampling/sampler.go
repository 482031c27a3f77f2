// Package sampling draws stage durations from the configured distribution
// family. Every draw goes through one explicitly seeded Stream owned by the
// cohort run, never an ambient global source, so a (config, N, seed) triple
// always reproduces the identical duration sequence.
package sampling

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"carepath/domain/carepath"
)

// FloorHours is the minimum duration any stage can sample. Distributions
// whose support includes values below it (normal with large sigma relative
// to mean) are clamped rather than resampled, so one sample consumes a fixed
// number of variates from the stream.
const FloorHours = 0.01

// Stream is a deterministic random stream for one cohort run.
type Stream struct {
	src *rand.PCG
	rnd *rand.Rand
}

// NewStream creates a stream seeded from a single int64 seed.
func NewStream(seed int64) *Stream {
	src := rand.NewPCG(uint64(seed), uint64(seed)*0x9e3779b97f4a7c15)
	return &Stream{src: src, rnd: rand.New(src)}
}

// Float64 returns the next uniform variate in [0,1).
func (s *Stream) Float64() float64 { return s.rnd.Float64() }

// Source exposes the underlying source for distuv samplers.
func (s *Stream) Source() rand.Source { return s.src }

// Sample draws one non-negative duration for the stage. The spec is assumed
// validated (StageSpec construction fails fast on bad parameters), so no
// parameter checking happens here.
func Sample(spec carepath.StageSpec, stream *Stream) float64 {
	p := spec.Params
	var v float64

	switch spec.Kind {
	case carepath.KindUniform:
		v = distuv.Uniform{Min: p.Min, Max: p.Max, Src: stream.Source()}.Rand()

	case carepath.KindExponential:
		rate := p.Rate
		if rate <= 0 {
			rate = 1.0 / p.Mean
		}
		v = distuv.Exponential{Rate: rate, Src: stream.Source()}.Rand()

	case carepath.KindNormal:
		v = distuv.Normal{Mu: p.Mean, Sigma: p.Sigma, Src: stream.Source()}.Rand()

	case carepath.KindLogNormal:
		mu, sigma := logNormalMoments(p.Mean, p.Sigma)
		v = distuv.LogNormal{Mu: mu, Sigma: sigma, Src: stream.Source()}.Rand()

	case carepath.KindGamma:
		// distuv parameterizes gamma by rate; Beta = 1/scale.
		v = distuv.Gamma{Alpha: p.Shape, Beta: 1.0 / p.Scale, Src: stream.Source()}.Rand()

	case carepath.KindTriangular:
		if p.Max == p.Min {
			v = p.Min
		} else {
			// NewTriangle takes (lower, upper, mode).
			v = distuv.NewTriangle(p.Min, p.Max, p.Mode, stream.Source()).Rand()
		}

	case carepath.KindWeibull:
		v = distuv.Weibull{K: p.Shape, Lambda: p.Scale, Src: stream.Source()}.Rand()

	case carepath.KindNoShow:
		v = p.Base
		if stream.Float64() < p.Prob {
			if p.RescheduleMax > p.RescheduleMin {
				v += distuv.Uniform{Min: p.RescheduleMin, Max: p.RescheduleMax, Src: stream.Source()}.Rand()
			} else {
				v += p.RescheduleMin
			}
		}

	default:
		// Unreachable for validated specs.
		v = 0
	}

	return math.Max(FloorHours, v)
}

// logNormalMoments converts an observed (linear-scale) mean and standard
// deviation into the underlying normal's mu and sigma by moment matching.
// sigma == 0 degenerates to a point mass at mean.
func logNormalMoments(mean, sigma float64) (float64, float64) {
	if sigma == 0 {
		return math.Log(mean), 0
	}
	mu := math.Log(mean * mean / math.Sqrt(sigma*sigma+mean*mean))
	s := math.Sqrt(math.Log(1 + (sigma*sigma)/(mean*mean)))
	return mu, s
}
