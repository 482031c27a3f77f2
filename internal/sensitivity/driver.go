package sensitivity

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
	"carepath/internal/evaluate"
	"carepath/internal/logging"
	"carepath/internal/simulate"

	"github.com/montanaflynn/stats"
)

// Driver executes sweep plans. Cells are independent (each carries its own
// seed and configs) so they run concurrently; results land in their
// enumeration-order slots.
type Driver struct {
	Evaluator *evaluate.Evaluator
	// Workers bounds concurrent cells. Zero means GOMAXPROCS.
	Workers int
	Log     *logging.Logger
}

// NewDriver creates a driver with the default evaluator and logger.
func NewDriver() *Driver {
	return &Driver{
		Evaluator: evaluate.NewEvaluator(),
		Log:       logging.DefaultLogger,
	}
}

// Run executes every cell of the plan and aggregates the summary. The first
// cell error cancels the remaining work.
func (d *Driver) Run(ctx context.Context, plan *Plan) (*compare.SweepSummary, error) {
	if plan == nil || len(plan.Cells) == 0 {
		return nil, errors.ConfigInvalid("sweep plan has no cells")
	}

	ev := d.Evaluator
	if ev == nil {
		ev = evaluate.NewEvaluator()
	}
	workers := d.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	runs := make([]compare.SensitivityRun, len(plan.Cells))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, cell := range plan.Cells {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := d.runCell(ev, cell)
			if err != nil {
				return errors.Wrapf(err, "sweep cell %q", cell.Label)
			}
			runs[i] = compare.SensitivityRun{
				Kind:         cell.Kind,
				VariantLabel: cell.Label,
				Seed:         cell.Seed,
				SampleSize:   cell.N,
				Overrides:    cell.Overrides,
				Result:       result,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := summarize(plan, runs)
	if d.Log != nil {
		d.Log.Info("sweep %s complete: %d cells, pct reduction [%.1f%%, %.1f%%], %.0f%% significant",
			plan.Kind, len(runs), summary.MinPctReduction, summary.MaxPctReduction,
			summary.FractionSignificant*100)
	}
	return summary, nil
}

func (d *Driver) runCell(ev *evaluate.Evaluator, cell Cell) (*compare.ComparisonResult, error) {
	before, err := simulate.RunCohort(cell.Before, cell.N, cell.Seed)
	if err != nil {
		return nil, err
	}
	after, err := simulate.RunCohort(cell.After, cell.N, cell.Seed)
	if err != nil {
		return nil, err
	}
	return ev.Compare(before, after)
}

// summarize folds the per-cell results into the sweep aggregate. Multi-seed
// plans additionally get a seed stability block.
func summarize(plan *Plan, runs []compare.SensitivityRun) *compare.SweepSummary {
	pct := make([]float64, len(runs))
	significant := 0
	for i, r := range runs {
		pct[i] = r.Result.Total.PctReduction
		if r.Result.Total.Significant {
			significant++
		}
	}

	minPct, _ := stats.Min(pct)
	maxPct, _ := stats.Max(pct)
	meanPct, _ := stats.Mean(pct)

	summary := &compare.SweepSummary{
		SweepID:             core.SweepID(core.NewID()),
		Runs:                runs,
		MinPctReduction:     minPct,
		MaxPctReduction:     maxPct,
		MeanPctReduction:    meanPct,
		FractionSignificant: float64(significant) / float64(len(runs)),
		CreatedAt:           core.Now(),
	}

	if plan.Kind == compare.SweepMultiSeed && len(runs) > 1 {
		sd, _ := stats.StandardDeviationSample(pct)
		cv := 0.0
		if meanPct != 0 {
			cv = sd / meanPct
		}
		summary.SeedStability = &compare.SeedStability{
			Seeds:  len(runs),
			Mean:   meanPct,
			StdDev: sd,
			CV:     cv,
			Min:    minPct,
			Max:    maxPct,
		}
	}
	return summary
}
