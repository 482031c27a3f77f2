package tabular

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carepath/domain/carepath"
	"carepath/internal/evaluate"
	"carepath/internal/simulate"
)

func TestWriteEpisodes(t *testing.T) {
	cohort, err := simulate.RunCohort(carepath.LegacyScenario(), 25, 42)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteEpisodes(&buf, cohort))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 26, "header plus one row per episode")

	header := rows[0]
	assert.Equal(t, "episode_id", header[0])
	assert.Equal(t, "scenario", header[1])
	assert.Equal(t, "radiology_report_hours", header[2])
	assert.Equal(t, "total_hours", header[len(header)-1])
	assert.Len(t, header, len(cohort.StageNames)+3)

	assert.Equal(t, "0", rows[1][0])
	assert.Equal(t, "legacy", rows[1][1])
	for _, row := range rows[1:] {
		require.Len(t, row, len(header))
	}
}

func TestWriteComparison(t *testing.T) {
	before, err := simulate.RunCohort(carepath.LegacyScenario(), 100, 42)
	require.NoError(t, err)
	after, err := simulate.RunCohort(carepath.OrchestratorScenario(), 100, 42)
	require.NoError(t, err)
	result, err := evaluate.NewEvaluator().Compare(before, after)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewWriter().WriteComparison(&buf, result))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2+len(result.Stages), "header, total, one row per stage")
	assert.Equal(t, "column", rows[0][0])
	assert.Equal(t, "total", rows[1][0])
	assert.Equal(t, "radiology_report", rows[2][0])
}
