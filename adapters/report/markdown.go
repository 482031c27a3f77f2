// Package report renders comparison and sweep results as markdown, with an
// HTML variant for the web UI. Durations are computed in hours throughout the
// engine; this is the only layer that converts to days for presentation.
package report

import (
	"fmt"
	"io"
	"strings"

	"carepath/domain/compare"
	"carepath/internal/errors"
	"carepath/ports"
)

const hoursPerDay = 24.0

// MarkdownRenderer implements ports.ReportRenderer.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a markdown renderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// RenderComparison writes the full comparison report: headline, descriptive
// table, test battery, per-stage breakdown and warnings.
func (r *MarkdownRenderer) RenderComparison(w io.Writer, record *ports.RunRecord) error {
	if record == nil || record.Result == nil {
		return errors.InvalidInput("comparison report needs a run record with a result")
	}
	result := record.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Care Path Comparison: %s vs %s\n\n", record.BeforeScenario, record.AfterScenario)
	fmt.Fprintf(&b, "Run `%s` | seed %d | n=%d per cohort\n\n", record.RunID, record.Seed, record.SampleSize)
	fmt.Fprintf(&b, "Config fingerprints: before `%.12s` after `%.12s`\n\n",
		record.BeforeConfigHash, record.AfterConfigHash)

	total := result.Total
	fmt.Fprintf(&b, "## Headline\n\n")
	fmt.Fprintf(&b, "Mean time from radiology flag to booked appointment drops from **%.1f days** to **%.1f days**, a **%.1f%%** reduction (%.1f days saved per patient).\n\n",
		total.Before.Mean/hoursPerDay, total.After.Mean/hoursPerDay,
		total.PctReduction, total.AbsReduction/hoursPerDay)
	fmt.Fprintf(&b, "Per 1,000 patients that is roughly %.0f patient-days of waiting avoided.\n\n",
		total.AbsReduction/hoursPerDay*1000)
	fmt.Fprintf(&b, "Verdict: %s\n\n", verdict(total))

	fmt.Fprintf(&b, "## Total duration\n\n")
	writeDescriptives(&b, total)
	fmt.Fprintf(&b, "\n")
	writeTests(&b, total)

	fmt.Fprintf(&b, "\n## Per-stage breakdown\n\n")
	fmt.Fprintf(&b, "Stage-level tests use a Bonferroni-corrected alpha of %.4g.\n\n", result.StageAlpha)
	fmt.Fprintf(&b, "| Stage | Before (h) | After (h) | Reduction | p (Student) | d | Significant | Robust |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|---|\n")
	for _, col := range result.Stages {
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.1f%% | %.3g | %.2f | %s | %s |\n",
			col.Label, col.Before.Mean, col.After.Mean, col.PctReduction,
			col.Tests.PValue, col.Tests.CohensD,
			yesNo(col.Significant), yesNo(col.Robust))
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(&b, "\n## Warnings\n\n")
		for _, code := range result.Warnings {
			fmt.Fprintf(&b, "- `%s`: %s\n", code, warningText(code))
		}
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing comparison report")
}

// RenderSweep writes the sweep report: aggregate block, seed stability when
// present, and the per-cell table in enumeration order.
func (r *MarkdownRenderer) RenderSweep(w io.Writer, summary *compare.SweepSummary) error {
	if summary == nil {
		return errors.InvalidInput("sweep report needs a summary")
	}
	var b strings.Builder

	fmt.Fprintf(&b, "# Sensitivity Sweep `%s`\n\n", summary.SweepID)
	fmt.Fprintf(&b, "%d cells | reduction range [%.1f%%, %.1f%%] | mean %.1f%% | %.0f%% of cells significant\n\n",
		len(summary.Runs), summary.MinPctReduction, summary.MaxPctReduction,
		summary.MeanPctReduction, summary.FractionSignificant*100)

	if ss := summary.SeedStability; ss != nil {
		fmt.Fprintf(&b, "## Seed stability\n\n")
		fmt.Fprintf(&b, "Across %d seeds the reduction averages %.1f%% (sd %.2f, CV %.3f), ranging %.1f%% to %.1f%%.\n\n",
			ss.Seeds, ss.Mean, ss.StdDev, ss.CV, ss.Min, ss.Max)
	}

	fmt.Fprintf(&b, "## Cells\n\n")
	fmt.Fprintf(&b, "| Variant | Seed | N | Before (d) | After (d) | Reduction | p | Significant |\n")
	fmt.Fprintf(&b, "|---|---|---|---|---|---|---|---|\n")
	for _, run := range summary.Runs {
		total := run.Result.Total
		fmt.Fprintf(&b, "| %s | %d | %d | %.1f | %.1f | %.1f%% | %.3g | %s |\n",
			run.VariantLabel, run.Seed, run.SampleSize,
			total.Before.Mean/hoursPerDay, total.After.Mean/hoursPerDay,
			total.PctReduction, total.Tests.PValue, yesNo(total.Significant))
	}

	_, err := io.WriteString(w, b.String())
	return errors.Wrap(err, "writing sweep report")
}

func writeDescriptives(b *strings.Builder, col compare.ColumnComparison) {
	fmt.Fprintf(b, "| | Before | After |\n|---|---|---|\n")
	fmt.Fprintf(b, "| Mean (days) | %.2f | %.2f |\n", col.Before.Mean/hoursPerDay, col.After.Mean/hoursPerDay)
	fmt.Fprintf(b, "| Median (days) | %.2f | %.2f |\n", col.Before.Median/hoursPerDay, col.After.Median/hoursPerDay)
	fmt.Fprintf(b, "| Std dev (days) | %.2f | %.2f |\n", col.Before.StdDev/hoursPerDay, col.After.StdDev/hoursPerDay)
	fmt.Fprintf(b, "| IQR (days) | %.2f-%.2f | %.2f-%.2f |\n",
		col.Before.Q25/hoursPerDay, col.Before.Q75/hoursPerDay,
		col.After.Q25/hoursPerDay, col.After.Q75/hoursPerDay)
	fmt.Fprintf(b, "| 95%% CI of mean (days) | %.2f-%.2f | %.2f-%.2f |\n",
		col.Before.CILower/hoursPerDay, col.Before.CIUpper/hoursPerDay,
		col.After.CILower/hoursPerDay, col.After.CIUpper/hoursPerDay)
}

func writeTests(b *strings.Builder, col compare.ColumnComparison) {
	t := col.Tests
	fmt.Fprintf(b, "| Test | Statistic | p |\n|---|---|---|\n")
	fmt.Fprintf(b, "| Student t | %.3f | %.3g |\n", t.TStatistic, t.PValue)
	fmt.Fprintf(b, "| Welch t | %.3f | %.3g |\n", t.WelchT, t.WelchP)
	fmt.Fprintf(b, "| Mann-Whitney U | %.1f | %.3g |\n", t.MannWhitneyU, t.MannWhitneyP)
	fmt.Fprintf(b, "\nEffect size: Cohen's d = %.2f, Hedges' g = %.2f (alpha %.3g)\n", t.CohensD, t.HedgesG, col.Alpha)
}

func verdict(col compare.ColumnComparison) string {
	switch {
	case col.Significant && col.Robust:
		return "statistically significant and robust across all three tests"
	case col.Significant:
		return "statistically significant, but the tests disagree; treat with caution"
	default:
		return "not statistically significant at the configured alpha"
	}
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func warningText(code compare.WarningCode) string {
	switch code {
	case compare.WarningNumericDegeneracy:
		return "a column had near-zero pooled variance; its effect size is reported as 0"
	case compare.WarningLowN:
		return "a cohort has fewer than 30 episodes; asymptotic approximations are shaky"
	case compare.WarningTestDisagreement:
		return "the parametric and rank tests disagree on significance"
	case compare.WarningLowVariance:
		return "durations are nearly deterministic; check the scenario's spread parameters"
	default:
		return "unrecognized warning"
	}
}
