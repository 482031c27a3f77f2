package sensitivity

import (
	"carepath/domain/carepath"
	"carepath/internal/errors"
)

// Derivation helpers build perturbed copies of a scenario. The base config
// is never mutated: every sweep point works on its own clone.

// ScaleMeans multiplies every stage's location parameters by factor. The
// factor must be positive so derived configs stay inside each
// distribution's support.
func ScaleMeans(cfg *carepath.ScenarioConfig, factor float64) (*carepath.ScenarioConfig, error) {
	if factor <= 0 {
		return nil, errors.ConfigInvalidf("mean scale factor must be > 0 (got %g)", factor)
	}
	out := cfg.Clone()
	for i := range out.Stages {
		p := &out.Stages[i].Params
		switch out.Stages[i].Kind {
		case carepath.KindUniform:
			p.Min *= factor
			p.Max *= factor
		case carepath.KindExponential:
			if p.Rate > 0 {
				p.Rate /= factor
			} else {
				p.Mean *= factor
			}
		case carepath.KindNormal, carepath.KindLogNormal:
			p.Mean *= factor
		case carepath.KindGamma, carepath.KindWeibull:
			p.Scale *= factor
		case carepath.KindTriangular:
			p.Min *= factor
			p.Mode *= factor
			p.Max *= factor
		case carepath.KindNoShow:
			p.Base *= factor
			p.RescheduleMin *= factor
			p.RescheduleMax *= factor
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// ScaleSpreads multiplies spread parameters by factor while holding means
// fixed. For gamma the (shape, scale) pair is rebalanced so mean stays put
// while the standard deviation scales. Exponential and weibull spreads are
// tied to their means and are left unchanged.
func ScaleSpreads(cfg *carepath.ScenarioConfig, factor float64) (*carepath.ScenarioConfig, error) {
	if factor <= 0 {
		return nil, errors.ConfigInvalidf("spread scale factor must be > 0 (got %g)", factor)
	}
	out := cfg.Clone()
	for i := range out.Stages {
		p := &out.Stages[i].Params
		switch out.Stages[i].Kind {
		case carepath.KindNormal, carepath.KindLogNormal:
			p.Sigma *= factor
		case carepath.KindUniform:
			mid := (p.Min + p.Max) / 2
			half := (p.Max - p.Min) / 2 * factor
			p.Min = mid - half
			p.Max = mid + half
			if p.Min < 0 {
				p.Min = 0
			}
		case carepath.KindTriangular:
			p.Min = p.Mode - (p.Mode-p.Min)*factor
			p.Max = p.Mode + (p.Max-p.Mode)*factor
			if p.Min < 0 {
				p.Min = 0
			}
		case carepath.KindGamma:
			// mean = shape*scale, sd = sqrt(shape)*scale: scaling scale by
			// f^2 and shape by 1/f^2 keeps the mean and scales the sd by f.
			p.Shape /= factor * factor
			p.Scale *= factor * factor
		case carepath.KindNoShow:
			mid := (p.RescheduleMin + p.RescheduleMax) / 2
			half := (p.RescheduleMax - p.RescheduleMin) / 2 * factor
			p.RescheduleMin = mid - half
			p.RescheduleMax = mid + half
			if p.RescheduleMin < 0 {
				p.RescheduleMin = 0
			}
		}
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

// WithReworkAndOversight appends two gated stages modeling an AI error rate
// (rework loop) and a human oversight rate (review hold) to an automated
// scenario. Used by the crossed robustness grid.
func WithReworkAndOversight(cfg *carepath.ScenarioConfig, errorRate, oversightRate float64) (*carepath.ScenarioConfig, error) {
	out := cfg.Clone()
	rework, err := carepath.NewStageSpec("ai_rework", carepath.KindNoShow, carepath.Params{
		Prob: errorRate, RescheduleMin: 2, RescheduleMax: 8,
	})
	if err != nil {
		return nil, err
	}
	oversight, err := carepath.NewStageSpec("human_oversight", carepath.KindNoShow, carepath.Params{
		Prob: oversightRate, RescheduleMin: 1, RescheduleMax: 4,
	})
	if err != nil {
		return nil, err
	}
	out.Stages = append(out.Stages, rework, oversight)
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
