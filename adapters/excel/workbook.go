// Package excel writes comparison and sweep results to a multi-sheet
// workbook for analysts who live in spreadsheets.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"carepath/domain/compare"
	"carepath/internal/errors"
	"carepath/ports"
)

const (
	sheetSummary = "Summary"
	sheetStages  = "Stages"
	sheetSweep   = "Sweep"
)

// WorkbookWriter renders results into an xlsx file.
type WorkbookWriter struct{}

// NewWorkbookWriter creates a workbook writer.
func NewWorkbookWriter() *WorkbookWriter {
	return &WorkbookWriter{}
}

// WriteComparison writes a comparison run to path: a Summary sheet for the
// total column and a Stages sheet with one row per stage.
func (w *WorkbookWriter) WriteComparison(path string, record *ports.RunRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSummary)
	result := record.Result

	summaryRows := [][]interface{}{
		{"Run ID", record.RunID.String()},
		{"Before scenario", record.BeforeScenario.String()},
		{"After scenario", record.AfterScenario.String()},
		{"Seed", record.Seed},
		{"Sample size", record.SampleSize},
		{"Before config hash", record.BeforeConfigHash.String()},
		{"After config hash", record.AfterConfigHash.String()},
		{},
		{"Mean before (days)", result.Total.Before.Mean / 24},
		{"Mean after (days)", result.Total.After.Mean / 24},
		{"Reduction (days)", result.Total.AbsReduction / 24},
		{"Reduction (%)", result.Total.PctReduction},
		{"p (Student)", result.Total.Tests.PValue},
		{"p (Welch)", result.Total.Tests.WelchP},
		{"p (Mann-Whitney)", result.Total.Tests.MannWhitneyP},
		{"Cohen's d", result.Total.Tests.CohensD},
		{"Hedges' g", result.Total.Tests.HedgesG},
		{"Significant", result.Total.Significant},
		{"Robust", result.Total.Robust},
	}
	if err := setRows(f, sheetSummary, summaryRows); err != nil {
		return err
	}

	stageRows := [][]interface{}{{
		"Stage", "Mean before (h)", "Mean after (h)", "Reduction (%)",
		"p (Student)", "p (Welch)", "p (Mann-Whitney)", "Cohen's d",
		"Alpha", "Significant", "Robust",
	}}
	for _, col := range result.Stages {
		stageRows = append(stageRows, []interface{}{
			col.Label, col.Before.Mean, col.After.Mean, col.PctReduction,
			col.Tests.PValue, col.Tests.WelchP, col.Tests.MannWhitneyP,
			col.Tests.CohensD, col.Alpha, col.Significant, col.Robust,
		})
	}
	if _, err := f.NewSheet(sheetStages); err != nil {
		return errors.Wrap(err, "creating stages sheet")
	}
	if err := setRows(f, sheetStages, stageRows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving workbook %s", path)
	}
	return nil
}

// WriteSweep writes a sweep summary to path: the aggregate block followed by
// one row per cell in enumeration order.
func (w *WorkbookWriter) WriteSweep(path string, summary *compare.SweepSummary) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetSweep)

	rows := [][]interface{}{
		{"Sweep ID", summary.SweepID.String()},
		{"Cells", len(summary.Runs)},
		{"Min reduction (%)", summary.MinPctReduction},
		{"Max reduction (%)", summary.MaxPctReduction},
		{"Mean reduction (%)", summary.MeanPctReduction},
		{"Fraction significant", summary.FractionSignificant},
		{},
		{"Kind", "Variant", "Seed", "N", "Reduction (%)", "p (Student)", "Significant", "Robust"},
	}
	for _, run := range summary.Runs {
		total := run.Result.Total
		rows = append(rows, []interface{}{
			string(run.Kind), run.VariantLabel, run.Seed, run.SampleSize,
			total.PctReduction, total.Tests.PValue, total.Significant, total.Robust,
		})
	}
	if err := setRows(f, sheetSweep, rows); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "saving workbook %s", path)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s row %d", sheet, i+1)
		}
	}
	return nil
}
