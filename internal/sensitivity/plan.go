// Package sensitivity enumerates and executes robustness sweeps: families of
// perturbed comparison runs that probe whether a headline result survives
// parameter scaling, sample-size changes, variance inflation, alternative
// baselines, seed variation and crossed error/oversight grids.
package sensitivity

import (
	"fmt"

	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/internal/errors"
)

// Cell is one fully-specified sweep point: both derived configs, the sample
// size and the seed. Cells carry everything needed to reproduce the run.
type Cell struct {
	Kind      compare.SweepKind
	Label     string
	Before    *carepath.ScenarioConfig
	After     *carepath.ScenarioConfig
	N         int
	Seed      int64
	Overrides map[string]float64
}

// Plan is an ordered cell list. Enumeration order is part of the contract:
// results come back in the same order regardless of execution interleaving.
type Plan struct {
	Kind  compare.SweepKind
	Cells []Cell
}

// ParameterScalePlan scales the before scenario's location parameters by each
// factor and compares against the unmodified after scenario.
func ParameterScalePlan(before, after *carepath.ScenarioConfig, factors []float64, n int, seed int64) (*Plan, error) {
	if len(factors) == 0 {
		return nil, errors.ConfigInvalid("parameter scale sweep needs at least one factor")
	}
	plan := &Plan{Kind: compare.SweepParameterScale}
	for _, f := range factors {
		derived, err := ScaleMeans(before, f)
		if err != nil {
			return nil, err
		}
		plan.Cells = append(plan.Cells, Cell{
			Kind:      compare.SweepParameterScale,
			Label:     fmt.Sprintf("mean_scale_%.2f", f),
			Before:    derived,
			After:     after.Clone(),
			N:         n,
			Seed:      seed,
			Overrides: map[string]float64{"mean_scale": f},
		})
	}
	return plan, nil
}

// SampleSizePlan repeats the base comparison at each cohort size.
func SampleSizePlan(before, after *carepath.ScenarioConfig, sizes []int, seed int64) (*Plan, error) {
	if len(sizes) == 0 {
		return nil, errors.ConfigInvalid("sample size sweep needs at least one size")
	}
	plan := &Plan{Kind: compare.SweepSampleSize}
	for _, n := range sizes {
		if n < 2 {
			return nil, errors.ConfigInvalidf("sample size sweep: size must be >= 2 (got %d)", n)
		}
		plan.Cells = append(plan.Cells, Cell{
			Kind:      compare.SweepSampleSize,
			Label:     fmt.Sprintf("n_%d", n),
			Before:    before.Clone(),
			After:     after.Clone(),
			N:         n,
			Seed:      seed,
			Overrides: map[string]float64{"n": float64(n)},
		})
	}
	return plan, nil
}

// VarianceScalePlan inflates or deflates both scenarios' spreads by each
// factor, holding means fixed where the distribution allows it.
func VarianceScalePlan(before, after *carepath.ScenarioConfig, factors []float64, n int, seed int64) (*Plan, error) {
	if len(factors) == 0 {
		return nil, errors.ConfigInvalid("variance scale sweep needs at least one factor")
	}
	plan := &Plan{Kind: compare.SweepVarianceScale}
	for _, f := range factors {
		b, err := ScaleSpreads(before, f)
		if err != nil {
			return nil, err
		}
		a, err := ScaleSpreads(after, f)
		if err != nil {
			return nil, err
		}
		plan.Cells = append(plan.Cells, Cell{
			Kind:      compare.SweepVarianceScale,
			Label:     fmt.Sprintf("spread_scale_%.2f", f),
			Before:    b,
			After:     a,
			N:         n,
			Seed:      seed,
			Overrides: map[string]float64{"spread_scale": f},
		})
	}
	return plan, nil
}

// ScenarioBundlePlan compares each alternative baseline against the same
// after scenario.
func ScenarioBundlePlan(baselines []*carepath.ScenarioConfig, after *carepath.ScenarioConfig, n int, seed int64) (*Plan, error) {
	if len(baselines) == 0 {
		return nil, errors.ConfigInvalid("scenario bundle sweep needs at least one baseline")
	}
	plan := &Plan{Kind: compare.SweepScenarioBundle}
	for _, b := range baselines {
		plan.Cells = append(plan.Cells, Cell{
			Kind:   compare.SweepScenarioBundle,
			Label:  fmt.Sprintf("baseline_%s", b.Name),
			Before: b.Clone(),
			After:  after.Clone(),
			N:      n,
			Seed:   seed,
		})
	}
	return plan, nil
}

// MultiSeedPlan repeats the base comparison under each seed. Feeds the seed
// stability block of the sweep summary.
func MultiSeedPlan(before, after *carepath.ScenarioConfig, seeds []int64, n int) (*Plan, error) {
	if len(seeds) == 0 {
		return nil, errors.ConfigInvalid("multi-seed sweep needs at least one seed")
	}
	plan := &Plan{Kind: compare.SweepMultiSeed}
	for _, s := range seeds {
		plan.Cells = append(plan.Cells, Cell{
			Kind:   compare.SweepMultiSeed,
			Label:  fmt.Sprintf("seed_%d", s),
			Before: before.Clone(),
			After:  after.Clone(),
			N:      n,
			Seed:   s,
		})
	}
	return plan, nil
}

// GridPlan crosses AI error rates with human oversight rates, deriving the
// after scenario for each (e, h) pair. Row-major enumeration: error rate
// outer, oversight rate inner.
func GridPlan(before, after *carepath.ScenarioConfig, errorRates, oversightRates []float64, n int, seed int64) (*Plan, error) {
	if len(errorRates) == 0 || len(oversightRates) == 0 {
		return nil, errors.ConfigInvalid("grid sweep needs at least one value per axis")
	}
	plan := &Plan{Kind: compare.SweepGrid}
	for _, e := range errorRates {
		for _, h := range oversightRates {
			derived, err := WithReworkAndOversight(after, e, h)
			if err != nil {
				return nil, err
			}
			plan.Cells = append(plan.Cells, Cell{
				Kind:      compare.SweepGrid,
				Label:     fmt.Sprintf("err_%.2f_oversight_%.2f", e, h),
				Before:    before.Clone(),
				After:     derived,
				N:         n,
				Seed:      seed,
				Overrides: map[string]float64{"error_rate": e, "oversight_rate": h},
			})
		}
	}
	return plan, nil
}
