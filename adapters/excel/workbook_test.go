package excel

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/evaluate"
	"carepath/internal/simulate"
	"carepath/ports"
)

func makeRecord(t *testing.T) *ports.RunRecord {
	t.Helper()
	before, err := simulate.RunCohort(carepath.LegacyScenario(), 100, 42)
	require.NoError(t, err)
	after, err := simulate.RunCohort(carepath.OrchestratorScenario(), 100, 42)
	require.NoError(t, err)
	result, err := evaluate.NewEvaluator().Compare(before, after)
	require.NoError(t, err)

	return &ports.RunRecord{
		RunID:            result.RunID,
		BeforeScenario:   before.ScenarioName,
		AfterScenario:    after.ScenarioName,
		BeforeConfigHash: before.ConfigHash,
		AfterConfigHash:  after.ConfigHash,
		Seed:             42,
		SampleSize:       100,
		Result:           result,
		CreatedAt:        core.Now(),
	}
}

func TestWriteComparisonWorkbook(t *testing.T) {
	record := makeRecord(t)
	path := filepath.Join(t.TempDir(), "comparison.xlsx")
	require.NoError(t, NewWorkbookWriter().WriteComparison(path, record))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetSummary, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Run ID", v)
	v, err = f.GetCellValue(sheetSummary, "B1")
	require.NoError(t, err)
	assert.Equal(t, record.RunID.String(), v)

	rows, err := f.GetRows(sheetStages)
	require.NoError(t, err)
	require.Len(t, rows, 1+len(record.Result.Stages), "header plus one row per stage")
	assert.Equal(t, "Stage", rows[0][0])
}

func TestWriteSweepWorkbook(t *testing.T) {
	record := makeRecord(t)
	summary := &compare.SweepSummary{
		SweepID: "sweep-1",
		Runs: []compare.SensitivityRun{{
			Kind:         compare.SweepMultiSeed,
			VariantLabel: "seed_42",
			Seed:         42,
			SampleSize:   100,
			Result:       record.Result,
		}},
		MeanPctReduction:    record.Result.Total.PctReduction,
		FractionSignificant: 1.0,
	}

	path := filepath.Join(t.TempDir(), "sweep.xlsx")
	require.NoError(t, NewWorkbookWriter().WriteSweep(path, summary))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(sheetSweep, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Sweep ID", v)
	v, err = f.GetCellValue(sheetSweep, "B9")
	require.NoError(t, err)
	assert.Equal(t, "seed_42", v)
}
