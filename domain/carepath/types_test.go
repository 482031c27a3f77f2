package carepath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carepath/internal/errors"
)

func TestStageSpecValidate(t *testing.T) {
	cases := []struct {
		name string
		spec StageSpec
		ok   bool
	}{
		{"uniform ok", StageSpec{Name: "s", Kind: KindUniform, Params: Params{Min: 1, Max: 2}}, true},
		{"uniform inverted", StageSpec{Name: "s", Kind: KindUniform, Params: Params{Min: 5, Max: 1}}, false},
		{"uniform negative", StageSpec{Name: "s", Kind: KindUniform, Params: Params{Min: -1, Max: 1}}, false},
		{"exponential mean", StageSpec{Name: "s", Kind: KindExponential, Params: Params{Mean: 10}}, true},
		{"exponential rate", StageSpec{Name: "s", Kind: KindExponential, Params: Params{Rate: 0.1}}, true},
		{"exponential both", StageSpec{Name: "s", Kind: KindExponential, Params: Params{Mean: 10, Rate: 0.1}}, false},
		{"exponential neither", StageSpec{Name: "s", Kind: KindExponential}, false},
		{"normal ok", StageSpec{Name: "s", Kind: KindNormal, Params: Params{Mean: 5, Sigma: 1}}, true},
		{"normal bad sigma", StageSpec{Name: "s", Kind: KindNormal, Params: Params{Mean: 5, Sigma: -1}}, false},
		{"lognormal ok", StageSpec{Name: "s", Kind: KindLogNormal, Params: Params{Mean: 48, Sigma: 1}}, true},
		{"lognormal zero mean", StageSpec{Name: "s", Kind: KindLogNormal, Params: Params{Mean: 0, Sigma: 1}}, false},
		{"gamma ok", StageSpec{Name: "s", Kind: KindGamma, Params: Params{Shape: 4, Scale: 18}}, true},
		{"gamma zero shape", StageSpec{Name: "s", Kind: KindGamma, Params: Params{Shape: 0, Scale: 18}}, false},
		{"triangular ok", StageSpec{Name: "s", Kind: KindTriangular, Params: Params{Min: 1, Mode: 2, Max: 3}}, true},
		{"triangular mode outside", StageSpec{Name: "s", Kind: KindTriangular, Params: Params{Min: 1, Mode: 9, Max: 3}}, false},
		{"weibull ok", StageSpec{Name: "s", Kind: KindWeibull, Params: Params{Shape: 1.5, Scale: 88}}, true},
		{"noshow ok", StageSpec{Name: "s", Kind: KindNoShow, Params: Params{Base: 12, Prob: 0.15, RescheduleMin: 24, RescheduleMax: 72}}, true},
		{"noshow bad prob", StageSpec{Name: "s", Kind: KindNoShow, Params: Params{Base: 12, Prob: 1.5}}, false},
		{"unknown kind", StageSpec{Name: "s", Kind: "cauchy"}, false},
		{"empty name", StageSpec{Name: "", Kind: KindUniform, Params: Params{Min: 1, Max: 2}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
			}
		})
	}
}

func TestScenarioConfigValidate(t *testing.T) {
	_, err := NewScenarioConfig("empty", nil)
	require.Error(t, err)

	_, err = NewScenarioConfig("dup", []StageSpec{
		{Name: "a", Kind: KindUniform, Params: Params{Min: 1, Max: 2}},
		{Name: "a", Kind: KindUniform, Params: Params{Min: 1, Max: 2}},
	})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeConfigInvalid))
	assert.Contains(t, err.Error(), "dup", "error should name the scenario")
}

func TestScenarioConfigCloneIsDeep(t *testing.T) {
	base := LegacyScenario()
	clone := base.Clone()
	clone.Stages[0].Params.Mean = 999

	assert.Equal(t, 4.0, base.Stages[0].Params.Mean, "mutating a clone must not touch the base")
}

func TestScenarioConfigHashSensitivity(t *testing.T) {
	a := LegacyScenario()
	b := LegacyScenario()
	assert.Equal(t, a.Hash(), b.Hash(), "hashing is deterministic")

	c := LegacyScenario()
	c.Stages[0].Params.Mean = 5
	assert.NotEqual(t, a.Hash(), c.Hash(), "any parameter change must change the fingerprint")
}

func TestCommonStageNames(t *testing.T) {
	legacy := LegacyScenario()
	orch := OrchestratorScenario()
	assert.True(t, legacy.SameStageLayout(orch))
	assert.Equal(t, legacy.StageNames(), legacy.CommonStageNames(orch))

	fifo := FIFOScenario()
	common := legacy.CommonStageNames(fifo)
	assert.NotEmpty(t, common)
	assert.Less(t, len(common), len(legacy.Stages))
}

func TestBuiltinScenariosAreValid(t *testing.T) {
	for _, name := range BuiltinScenarioNames() {
		cfg, ok := BuiltinScenario(name)
		require.True(t, ok, "builtin %s must resolve", name)
		assert.NoError(t, cfg.Validate())
		assert.Equal(t, name, cfg.Name)
	}

	_, ok := BuiltinScenario("nope")
	assert.False(t, ok)
}
