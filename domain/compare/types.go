package compare

import (
	"carepath/domain/core"
)

// WarningCode represents structured warning types attached to results
type WarningCode string

const (
	// WarningNumericDegeneracy: pooled standard deviation at or near zero;
	// Cohen's d is reported as 0 instead of an uninterpretable number.
	WarningNumericDegeneracy WarningCode = "NUMERIC_DEGENERACY"
	// WarningLowN: one of the cohorts has fewer than 30 episodes.
	WarningLowN WarningCode = "LOW_N"
	// WarningTestDisagreement: Student, Welch and Mann-Whitney disagree on
	// significance at alpha; the result is not robust.
	WarningTestDisagreement WarningCode = "TEST_DISAGREEMENT"
	// WarningLowVariance: a cohort's total-duration variance is near zero.
	WarningLowVariance WarningCode = "LOW_VARIANCE"
)

// Descriptives summarizes one cohort's duration column.
type Descriptives struct {
	N       int     `json:"n"`
	Mean    float64 `json:"mean"`
	Median  float64 `json:"median"`
	StdDev  float64 `json:"std_dev"` // sample standard deviation (N-1)
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Q25     float64 `json:"q25"`
	Q75     float64 `json:"q75"`
	CILower float64 `json:"ci_95_lower"`
	CIUpper float64 `json:"ci_95_upper"`
}

// TestSuite holds the two-sample test battery for one comparison column.
type TestSuite struct {
	TStatistic   float64 `json:"t_statistic"`    // Student's t (equal variance)
	PValue       float64 `json:"p_value"`        // Student's p
	WelchT       float64 `json:"welch_t"`        // Welch's t (unequal variance)
	WelchP       float64 `json:"welch_p"`        // Welch's p
	MannWhitneyU float64 `json:"mann_whitney_u"` // U statistic
	MannWhitneyP float64 `json:"mann_whitney_p"` // normal-approximation p
	CohensD      float64 `json:"cohens_d"`
	HedgesG      float64 `json:"hedges_g"`
}

// ColumnComparison is the aggregate+test block computed for one duration
// column (the total, or one stage).
type ColumnComparison struct {
	Label            string        `json:"label"`
	Before           Descriptives  `json:"before"`
	After            Descriptives  `json:"after"`
	AbsReduction     float64       `json:"abs_reduction"` // mean(before) - mean(after), hours
	PctReduction     float64       `json:"pct_reduction"` // abs / mean(before) * 100
	Tests            TestSuite     `json:"tests"`
	Alpha            float64       `json:"alpha"` // threshold applied to this column
	Significant      bool          `json:"significant"`
	Robust           bool          `json:"robust"` // all three tests agree on significance
	Warnings         []WarningCode `json:"warnings,omitempty"`
}

// HasWarning reports whether a warning code is attached to the column.
func (c ColumnComparison) HasWarning(code WarningCode) bool {
	for _, w := range c.Warnings {
		if w == code {
			return true
		}
	}
	return false
}

// ComparisonResult is the output of comparing two cohorts. Immutable once
// produced.
type ComparisonResult struct {
	RunID          core.RunID         `json:"run_id"`
	BeforeScenario core.ScenarioName  `json:"before_scenario"`
	AfterScenario  core.ScenarioName  `json:"after_scenario"`
	Total          ColumnComparison   `json:"total"`
	Stages         []ColumnComparison `json:"stages,omitempty"` // common stages, declaration order
	// StageAlpha is the Bonferroni-corrected threshold applied to each
	// stage column (Alpha / correction factor).
	StageAlpha float64        `json:"stage_alpha"`
	Warnings   []WarningCode  `json:"warnings,omitempty"`
	CreatedAt  core.Timestamp `json:"created_at"`
}

// SweepKind identifies one family of sensitivity sweeps.
type SweepKind string

const (
	SweepParameterScale SweepKind = "parameter_scale"
	SweepSampleSize     SweepKind = "sample_size"
	SweepVarianceScale  SweepKind = "variance_scale"
	SweepScenarioBundle SweepKind = "scenario_bundle"
	SweepMultiSeed      SweepKind = "multi_seed"
	SweepGrid           SweepKind = "grid"
)

// SensitivityRun is one point in a sweep: the recorded seed and parameter
// delta make every row independently reproducible.
type SensitivityRun struct {
	Kind         SweepKind          `json:"sweep_kind"`
	VariantLabel string             `json:"variant_label"`
	Seed         int64              `json:"seed"`
	SampleSize   int                `json:"sample_size"`
	Overrides    map[string]float64 `json:"parameter_overrides,omitempty"`
	Result       *ComparisonResult  `json:"result"`
}

// SeedStability summarizes the spread of percent reduction across seeds in a
// multi-seed sweep.
type SeedStability struct {
	Seeds  int     `json:"seeds"`
	Mean   float64 `json:"mean_pct_reduction"`
	StdDev float64 `json:"std_dev"`
	CV     float64 `json:"coefficient_of_variation"`
	Min    float64 `json:"min_pct_reduction"`
	Max    float64 `json:"max_pct_reduction"`
}

// SweepSummary aggregates a full sweep.
type SweepSummary struct {
	SweepID             core.SweepID     `json:"sweep_id"`
	Runs                []SensitivityRun `json:"runs"` // declared enumeration order
	MinPctReduction     float64          `json:"min_pct_reduction"`
	MaxPctReduction     float64          `json:"max_pct_reduction"`
	MeanPctReduction    float64          `json:"mean_pct_reduction"`
	FractionSignificant float64          `json:"fraction_significant"`
	SeedStability       *SeedStability   `json:"seed_stability,omitempty"` // multi-seed sweeps only
	CreatedAt           core.Timestamp   `json:"created_at"`
}
