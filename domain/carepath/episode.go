package carepath

import (
	"carepath/domain/core"
	"carepath/internal/errors"
)

// PatientEpisode is one simulated patient's pass through a scenario.
// Immutable once created; owned exclusively by its Cohort.
type PatientEpisode struct {
	EpisodeID      int       `json:"episode_id"`
	StageDurations []float64 `json:"stage_durations"` // hours, declaration order
	TotalDuration  float64   `json:"total_duration"`  // hours, exact sum of StageDurations
}

// Cohort is the complete set of episodes for one scenario under one run
// configuration. Produced in one batch; never mutated after creation.
type Cohort struct {
	ScenarioName core.ScenarioName `json:"scenario_name"`
	StageNames   []core.StageName  `json:"stage_names"`
	Seed         int64             `json:"seed"`
	Size         int               `json:"size"`
	ConfigHash   core.ConfigHash   `json:"config_hash"`
	Episodes     []PatientEpisode  `json:"episodes"`
}

// NewCohort validates the cohort invariants: exactly Size episodes, every
// episode carrying one duration per stage.
func NewCohort(scenario core.ScenarioName, stageNames []core.StageName, seed int64, configHash core.ConfigHash, episodes []PatientEpisode) (*Cohort, error) {
	for _, ep := range episodes {
		if len(ep.StageDurations) != len(stageNames) {
			return nil, errors.New(errors.CodeInternalError,
				"episode stage count does not match scenario stage count")
		}
	}
	return &Cohort{
		ScenarioName: scenario,
		StageNames:   stageNames,
		Seed:         seed,
		Size:         len(episodes),
		ConfigHash:   configHash,
		Episodes:     episodes,
	}, nil
}

// Totals returns the total duration of every episode, in episode order.
func (c *Cohort) Totals() []float64 {
	totals := make([]float64, len(c.Episodes))
	for i, ep := range c.Episodes {
		totals[i] = ep.TotalDuration
	}
	return totals
}

// StageColumn returns one stage's duration column across all episodes, or an
// error if the cohort has no stage with that name.
func (c *Cohort) StageColumn(name core.StageName) ([]float64, error) {
	idx := -1
	for i, n := range c.StageNames {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, errors.NotFound("stage " + name.String())
	}
	col := make([]float64, len(c.Episodes))
	for i, ep := range c.Episodes {
		col[i] = ep.StageDurations[idx]
	}
	return col, nil
}
