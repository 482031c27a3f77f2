// Package evaluate compares two cohorts ("before" vs "after") with the full
// test battery: descriptives, Student and Welch t-tests, Mann-Whitney U,
// Cohen's d and Hedges' g, aggregate and per-stage.
package evaluate

import (
	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
)

// DefaultAlpha is the significance threshold applied to the aggregate
// comparison when none is configured.
const DefaultAlpha = 0.05

// Evaluator computes ComparisonResults. The Bonferroni correction factor for
// per-stage testing is a parameter, not a constant: it defaults to the
// number of stages actually compared.
type Evaluator struct {
	// Alpha is the uncorrected significance threshold.
	Alpha float64
	// CorrectionFactor overrides the Bonferroni divisor for per-stage
	// tests. Zero means "number of common stages".
	CorrectionFactor int
}

// NewEvaluator creates an evaluator with the default alpha.
func NewEvaluator() *Evaluator {
	return &Evaluator{Alpha: DefaultAlpha}
}

// Compare evaluates before vs after. Both cohorts need at least two episodes
// and at least one common stage name; violations are statistical
// precondition errors, detected before any arithmetic.
func (e *Evaluator) Compare(before, after *carepath.Cohort) (*compare.ComparisonResult, error) {
	if before == nil || after == nil {
		return nil, errors.StatPrecondition("two cohorts are required")
	}
	if before.Size < 2 || after.Size < 2 {
		return nil, errors.StatPreconditionf(
			"cohorts need at least 2 episodes each (before=%d after=%d)", before.Size, after.Size)
	}

	common := commonStages(before, after)
	if len(common) == 0 {
		return nil, errors.StatPreconditionf(
			"cohorts %q and %q share no stage names; stage-level comparison is impossible",
			before.ScenarioName, after.ScenarioName)
	}

	alpha := e.Alpha
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}

	correction := e.CorrectionFactor
	if correction <= 0 {
		correction = len(common)
	}
	stageAlpha := alpha / float64(correction)

	result := &compare.ComparisonResult{
		RunID:          core.RunID(core.NewID()),
		BeforeScenario: before.ScenarioName,
		AfterScenario:  after.ScenarioName,
		Total:          compareColumn("total", before.Totals(), after.Totals(), alpha),
		StageAlpha:     stageAlpha,
		CreatedAt:      core.Now(),
	}

	for _, name := range common {
		bCol, err := before.StageColumn(name)
		if err != nil {
			return nil, err
		}
		aCol, err := after.StageColumn(name)
		if err != nil {
			return nil, err
		}
		result.Stages = append(result.Stages, compareColumn(name.String(), bCol, aCol, stageAlpha))
	}

	result.Warnings = rollUpWarnings(result)
	return result, nil
}

// compareColumn runs the full aggregate+test block on one duration column
// pair under the given significance threshold.
func compareColumn(label string, x, y []float64, alpha float64) compare.ColumnComparison {
	col := compare.ColumnComparison{
		Label:  label,
		Before: Describe(x),
		After:  Describe(y),
		Alpha:  alpha,
	}

	col.AbsReduction = col.Before.Mean - col.After.Mean
	if col.Before.Mean != 0 {
		col.PctReduction = col.AbsReduction / col.Before.Mean * 100
	}

	if len(x) < 30 || len(y) < 30 {
		col.Warnings = append(col.Warnings, compare.WarningLowN)
	}

	d, g, degenerate := effectSizes(x, y)
	col.Tests.CohensD = d
	col.Tests.HedgesG = g

	if degenerate {
		// Near-deterministic durations: the tests and the effect size are
		// uninterpretable. Flag and report a neutral block rather than
		// Inf/NaN.
		col.Warnings = append(col.Warnings, compare.WarningNumericDegeneracy, compare.WarningLowVariance)
		col.Tests.PValue = 1
		col.Tests.WelchP = 1
		col.Tests.MannWhitneyP = 1
		col.Significant = false
		col.Robust = false
		return col
	}

	col.Tests.TStatistic, col.Tests.PValue = studentTTest(x, y)
	col.Tests.WelchT, col.Tests.WelchP = welchTTest(x, y)
	col.Tests.MannWhitneyU, col.Tests.MannWhitneyP = mannWhitneyU(x, y)

	col.Significant = col.Tests.PValue < alpha

	// Robust only when all three tests land on the same side of alpha and
	// the parametric statistics agree in sign. Disagreement is surfaced,
	// never resolved silently.
	studentSig := col.Tests.PValue < alpha
	welchSig := col.Tests.WelchP < alpha
	mwSig := col.Tests.MannWhitneyP < alpha
	sameSign := (col.Tests.TStatistic >= 0) == (col.Tests.WelchT >= 0)

	col.Robust = studentSig == welchSig && welchSig == mwSig && sameSign
	if !col.Robust {
		col.Warnings = append(col.Warnings, compare.WarningTestDisagreement)
	}

	return col
}

// commonStages returns stage names present in both cohorts, in the before
// cohort's declaration order.
func commonStages(before, after *carepath.Cohort) []core.StageName {
	present := make(map[core.StageName]bool, len(after.StageNames))
	for _, n := range after.StageNames {
		present[n] = true
	}
	var common []core.StageName
	for _, n := range before.StageNames {
		if present[n] {
			common = append(common, n)
		}
	}
	return common
}

// rollUpWarnings collects the distinct warning codes from the total and
// every stage column.
func rollUpWarnings(r *compare.ComparisonResult) []compare.WarningCode {
	seen := make(map[compare.WarningCode]bool)
	var out []compare.WarningCode
	add := func(codes []compare.WarningCode) {
		for _, c := range codes {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	add(r.Total.Warnings)
	for _, s := range r.Stages {
		add(s.Warnings)
	}
	return out
}
