package ports

import (
	"context"

	"carepath/domain/compare"
	"carepath/domain/core"
)

// RunRecord is the persisted form of one comparison run: the result plus the
// reproducibility envelope (seed, sample size, config fingerprints).
type RunRecord struct {
	RunID            core.RunID                `json:"run_id" db:"run_id"`
	BeforeScenario   core.ScenarioName         `json:"before_scenario" db:"before_scenario"`
	AfterScenario    core.ScenarioName         `json:"after_scenario" db:"after_scenario"`
	BeforeConfigHash core.ConfigHash           `json:"before_config_hash" db:"before_config_hash"`
	AfterConfigHash  core.ConfigHash           `json:"after_config_hash" db:"after_config_hash"`
	Seed             int64                     `json:"seed" db:"seed"`
	SampleSize       int                       `json:"sample_size" db:"sample_size"`
	Result           *compare.ComparisonResult `json:"result" db:"-"`
	CreatedAt        core.Timestamp            `json:"created_at" db:"created_at"`
}

// ResultRepository persists comparison runs and sweep summaries.
type ResultRepository interface {
	// SaveRun stores a comparison run with its full result payload.
	SaveRun(ctx context.Context, record *RunRecord) error

	// GetRun retrieves a run by ID, or a NOT_FOUND error.
	GetRun(ctx context.Context, id core.RunID) (*RunRecord, error)

	// ListRuns returns the most recent runs, newest first, optionally limited.
	ListRuns(ctx context.Context, limit int) ([]*RunRecord, error)

	// SaveSweep stores a sweep summary with its per-cell results.
	SaveSweep(ctx context.Context, summary *compare.SweepSummary) error

	// GetSweep retrieves a sweep summary by ID, or a NOT_FOUND error.
	GetSweep(ctx context.Context, id core.SweepID) (*compare.SweepSummary, error)
}
