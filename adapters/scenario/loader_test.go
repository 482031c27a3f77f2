package scenario

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carepath/internal/errors"
)

const validYAML = `
run:
  sample_size: 500
  seed: 7
scenarios:
  - name: triage_v2
    stages:
      - name: intake
        kind: uniform
        params: {min: 2, max: 4}
      - name: review
        kind: lognormal
        params: {mean: 48, sigma: 1}
      - name: confirmation
        kind: noshow
        params: {base: 12, prob: 0.15, reschedule_min: 24, reschedule_max: 72}
`

func TestLoadValidFile(t *testing.T) {
	f, err := Load(strings.NewReader(validYAML))
	require.NoError(t, err)
	require.Len(t, f.Scenarios, 1)

	cfg := f.Scenarios[0]
	assert.Equal(t, "triage_v2", cfg.Name.String())
	require.Len(t, cfg.Stages, 3)
	assert.Equal(t, 48.0, cfg.Stages[1].Params.Mean)
	assert.Equal(t, 0.15, cfg.Stages[2].Params.Prob)

	assert.Equal(t, 500, f.Run.SampleSize)
	assert.Equal(t, int64(7), f.Run.Seed)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	// "stddev" is not a parameter name; a typo must not silently sample zeros.
	bad := `
scenarios:
  - name: typo
    stages:
      - name: review
        kind: normal
        params: {mean: 10, stddev: 1}
`
	_, err := Load(strings.NewReader(bad))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestLoadRejectsInvalidScenario(t *testing.T) {
	bad := `
scenarios:
  - name: inverted
    stages:
      - name: intake
        kind: uniform
        params: {min: 10, max: 2}
`
	_, err := Load(strings.NewReader(bad))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
}

func TestLoadRejectsDuplicateNames(t *testing.T) {
	bad := `
scenarios:
  - name: twice
    stages:
      - {name: a, kind: uniform, params: {min: 1, max: 2}}
  - name: twice
    stages:
      - {name: a, kind: uniform, params: {min: 1, max: 2}}
`
	_, err := Load(strings.NewReader(bad))
	require.Error(t, err)
}

func TestLoadRejectsEmptyFile(t *testing.T) {
	_, err := Load(strings.NewReader("scenarios: []"))
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	f, err := Load(strings.NewReader(validYAML))
	require.NoError(t, err)

	cfg, err := Resolve(f, "triage_v2")
	require.NoError(t, err)
	assert.Equal(t, "triage_v2", cfg.Name.String())

	// Built-ins resolve even with a file loaded, and with no file at all.
	cfg, err = Resolve(f, "legacy")
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.Name.String())

	cfg, err = Resolve(nil, "orchestrator")
	require.NoError(t, err)
	assert.Equal(t, "orchestrator", cfg.Name.String())

	_, err = Resolve(f, "missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}
