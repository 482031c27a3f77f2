// Package app wires the simulation and evaluation engine to storage and the
// outer surfaces (CLI, HTTP). Services own orchestration; the math lives in
// internal packages.
package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
	"carepath/internal/evaluate"
	"carepath/internal/logging"
	"carepath/internal/simulate"
	"carepath/ports"
)

// ComparisonRequest defines the inputs for one before/after comparison run.
type ComparisonRequest struct {
	Before *carepath.ScenarioConfig
	After  *carepath.ScenarioConfig
	N      int
	Seed   int64
	// Alpha overrides the default significance threshold when > 0.
	Alpha float64
}

// ComparisonService runs cohort comparisons and persists them.
type ComparisonService struct {
	repo ports.ResultRepository
	log  *logging.Logger
}

// NewComparisonService creates a comparison service.
func NewComparisonService(repo ports.ResultRepository) *ComparisonService {
	return &ComparisonService{repo: repo, log: logging.DefaultLogger}
}

// Run simulates both cohorts under the request's seed, evaluates them, and
// stores the record. The two cohorts draw from independent streams seeded
// identically, so re-running the request reproduces the result bit for bit.
func (s *ComparisonService) Run(ctx context.Context, req ComparisonRequest) (*ports.RunRecord, error) {
	if req.Before == nil || req.After == nil {
		return nil, errors.InvalidInput("comparison requires a before and an after scenario")
	}
	if req.N < 2 {
		return nil, errors.InvalidInput("comparison requires a sample size of at least 2")
	}

	var before, after *carepath.Cohort
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		before, err = simulate.RunCohort(req.Before, req.N, req.Seed)
		return err
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		var err error
		after, err = simulate.RunCohort(req.After, req.N, req.Seed)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "simulating cohorts")
	}

	ev := evaluate.NewEvaluator()
	if req.Alpha > 0 {
		ev.Alpha = req.Alpha
	}
	result, err := ev.Compare(before, after)
	if err != nil {
		return nil, err
	}

	record := &ports.RunRecord{
		RunID:            result.RunID,
		BeforeScenario:   req.Before.Name,
		AfterScenario:    req.After.Name,
		BeforeConfigHash: req.Before.Hash(),
		AfterConfigHash:  req.After.Hash(),
		Seed:             req.Seed,
		SampleSize:       req.N,
		Result:           result,
		CreatedAt:        result.CreatedAt,
	}

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, record); err != nil {
			return nil, err
		}
	}

	s.log.Info("comparison %s: %s vs %s, n=%d seed=%d, reduction %.1f%% (significant=%v)",
		record.RunID, record.BeforeScenario, record.AfterScenario,
		req.N, req.Seed, result.Total.PctReduction, result.Total.Significant)
	return record, nil
}

// Get retrieves a stored run.
func (s *ComparisonService) Get(ctx context.Context, id string) (*ports.RunRecord, error) {
	runID, err := core.ParseRunID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return s.repo.GetRun(ctx, runID)
}

// List returns recent runs, newest first.
func (s *ComparisonService) List(ctx context.Context, limit int) ([]*ports.RunRecord, error) {
	return s.repo.ListRuns(ctx, limit)
}

// Warnings surfaces the distinct warnings of a stored run.
func (s *ComparisonService) Warnings(ctx context.Context, id string) ([]compare.WarningCode, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Result.Warnings, nil
}
