package app

import (
	"context"

	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
	"carepath/internal/logging"
	"carepath/internal/sensitivity"
	"carepath/ports"
)

// SweepRequest defines one sensitivity sweep. Kind selects the family;
// only the fields that family reads are consulted.
type SweepRequest struct {
	Kind   compare.SweepKind
	Before *carepath.ScenarioConfig
	After  *carepath.ScenarioConfig

	// Factors drives parameter_scale and variance_scale sweeps.
	Factors []float64
	// Sizes drives sample_size sweeps.
	Sizes []int
	// Seeds drives multi_seed sweeps.
	Seeds []int64
	// Baselines drives scenario_bundle sweeps (compared against After).
	Baselines []*carepath.ScenarioConfig
	// ErrorRates and OversightRates drive grid sweeps.
	ErrorRates     []float64
	OversightRates []float64

	N    int
	Seed int64
}

// SweepService plans and executes sensitivity sweeps and persists their
// summaries.
type SweepService struct {
	repo   ports.ResultRepository
	driver *sensitivity.Driver
	log    *logging.Logger
}

// NewSweepService creates a sweep service. workers bounds sweep concurrency;
// zero means GOMAXPROCS.
func NewSweepService(repo ports.ResultRepository, workers int) *SweepService {
	driver := sensitivity.NewDriver()
	driver.Workers = workers
	return &SweepService{repo: repo, driver: driver, log: logging.DefaultLogger}
}

// Run plans the sweep from the request, executes it and stores the summary.
func (s *SweepService) Run(ctx context.Context, req SweepRequest) (*compare.SweepSummary, error) {
	plan, err := s.plan(req)
	if err != nil {
		return nil, err
	}

	summary, err := s.driver.Run(ctx, plan)
	if err != nil {
		return nil, err
	}

	if s.repo != nil {
		if err := s.repo.SaveSweep(ctx, summary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

// Get retrieves a stored sweep summary.
func (s *SweepService) Get(ctx context.Context, id string) (*compare.SweepSummary, error) {
	if id == "" {
		return nil, errors.InvalidInput("sweep ID cannot be empty")
	}
	return s.repo.GetSweep(ctx, core.SweepID(id))
}

func (s *SweepService) plan(req SweepRequest) (*sensitivity.Plan, error) {
	switch req.Kind {
	case compare.SweepParameterScale:
		return sensitivity.ParameterScalePlan(req.Before, req.After, req.Factors, req.N, req.Seed)
	case compare.SweepSampleSize:
		return sensitivity.SampleSizePlan(req.Before, req.After, req.Sizes, req.Seed)
	case compare.SweepVarianceScale:
		return sensitivity.VarianceScalePlan(req.Before, req.After, req.Factors, req.N, req.Seed)
	case compare.SweepScenarioBundle:
		return sensitivity.ScenarioBundlePlan(req.Baselines, req.After, req.N, req.Seed)
	case compare.SweepMultiSeed:
		return sensitivity.MultiSeedPlan(req.Before, req.After, req.Seeds, req.N)
	case compare.SweepGrid:
		return sensitivity.GridPlan(req.Before, req.After, req.ErrorRates, req.OversightRates, req.N, req.Seed)
	default:
		return nil, errors.InvalidInput("unknown sweep kind: " + string(req.Kind))
	}
}
