// Package tabular exports cohorts and results as CSV for downstream
// analysis in spreadsheets or notebooks.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/internal/errors"
)

// Writer streams CSV exports. Satisfies ports.CohortWriter.
type Writer struct{}

// NewWriter creates a CSV writer adapter.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteEpisodes writes one row per episode: episode_id, the scenario name,
// each stage's hours in declaration order, then the total.
func (w *Writer) WriteEpisodes(out io.Writer, cohort *carepath.Cohort) error {
	cw := csv.NewWriter(out)

	header := make([]string, 0, len(cohort.StageNames)+3)
	header = append(header, "episode_id", "scenario")
	for _, name := range cohort.StageNames {
		header = append(header, name.String()+"_hours")
	}
	header = append(header, "total_hours")
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing episode header")
	}

	row := make([]string, len(header))
	row[1] = cohort.ScenarioName.String()
	for _, ep := range cohort.Episodes {
		row[0] = strconv.Itoa(ep.EpisodeID)
		for i, d := range ep.StageDurations {
			row[i+2] = formatHours(d)
		}
		row[len(row)-1] = formatHours(ep.TotalDuration)
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing episode row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing episode csv")
}

// WriteComparison writes one row per compared column (total first, then each
// stage) with descriptives and the full test battery.
func (w *Writer) WriteComparison(out io.Writer, result *compare.ComparisonResult) error {
	cw := csv.NewWriter(out)

	header := []string{
		"column", "n_before", "n_after",
		"mean_before", "mean_after", "median_before", "median_after",
		"sd_before", "sd_after",
		"abs_reduction_hours", "pct_reduction",
		"t_stat", "t_p", "welch_t", "welch_p",
		"mann_whitney_u", "mann_whitney_p",
		"cohens_d", "hedges_g",
		"alpha", "significant", "robust", "warnings",
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing comparison header")
	}

	write := func(col compare.ColumnComparison) error {
		return cw.Write([]string{
			col.Label,
			strconv.Itoa(col.Before.N), strconv.Itoa(col.After.N),
			formatHours(col.Before.Mean), formatHours(col.After.Mean),
			formatHours(col.Before.Median), formatHours(col.After.Median),
			formatHours(col.Before.StdDev), formatHours(col.After.StdDev),
			formatHours(col.AbsReduction), fmt.Sprintf("%.2f", col.PctReduction),
			formatStat(col.Tests.TStatistic), formatP(col.Tests.PValue),
			formatStat(col.Tests.WelchT), formatP(col.Tests.WelchP),
			formatStat(col.Tests.MannWhitneyU), formatP(col.Tests.MannWhitneyP),
			formatStat(col.Tests.CohensD), formatStat(col.Tests.HedgesG),
			formatP(col.Alpha),
			strconv.FormatBool(col.Significant), strconv.FormatBool(col.Robust),
			joinWarnings(col.Warnings),
		})
	}

	if err := write(result.Total); err != nil {
		return errors.Wrap(err, "writing total row")
	}
	for _, col := range result.Stages {
		if err := write(col); err != nil {
			return errors.Wrapf(err, "writing stage row %s", col.Label)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing comparison csv")
}

// WriteSweep writes one row per sweep cell in enumeration order.
func (w *Writer) WriteSweep(out io.Writer, summary *compare.SweepSummary) error {
	cw := csv.NewWriter(out)

	header := []string{
		"sweep_kind", "variant", "seed", "sample_size",
		"mean_before_hours", "mean_after_hours", "pct_reduction",
		"t_p", "significant", "robust",
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "writing sweep header")
	}

	for _, run := range summary.Runs {
		total := run.Result.Total
		err := cw.Write([]string{
			string(run.Kind), run.VariantLabel,
			strconv.FormatInt(run.Seed, 10), strconv.Itoa(run.SampleSize),
			formatHours(total.Before.Mean), formatHours(total.After.Mean),
			fmt.Sprintf("%.2f", total.PctReduction),
			formatP(total.Tests.PValue),
			strconv.FormatBool(total.Significant), strconv.FormatBool(total.Robust),
		})
		if err != nil {
			return errors.Wrapf(err, "writing sweep row %s", run.VariantLabel)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing sweep csv")
}

func formatHours(v float64) string { return strconv.FormatFloat(v, 'f', 4, 64) }
func formatStat(v float64) string  { return strconv.FormatFloat(v, 'f', 4, 64) }
func formatP(v float64) string     { return strconv.FormatFloat(v, 'g', 6, 64) }

func joinWarnings(codes []compare.WarningCode) string {
	s := ""
	for i, c := range codes {
		if i > 0 {
			s += ";"
		}
		s += string(c)
	}
	return s
}
