// Package memory is an in-process ResultRepository used when no database is
// configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
	"carepath/ports"
)

// ResultRepository keeps runs and sweeps in maps guarded by one mutex.
type ResultRepository struct {
	mu     sync.RWMutex
	runs   map[core.RunID]*ports.RunRecord
	sweeps map[core.SweepID]*compare.SweepSummary
}

// NewResultRepository creates an empty in-memory repository.
func NewResultRepository() *ResultRepository {
	return &ResultRepository{
		runs:   make(map[core.RunID]*ports.RunRecord),
		sweeps: make(map[core.SweepID]*compare.SweepSummary),
	}
}

func (r *ResultRepository) SaveRun(_ context.Context, record *ports.RunRecord) error {
	if record == nil || record.RunID == "" {
		return errors.InvalidInput("run record requires an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs[record.RunID] = record
	return nil
}

func (r *ResultRepository) GetRun(_ context.Context, id core.RunID) (*ports.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.runs[id]
	if !ok {
		return nil, errors.NotFound("run " + id.String())
	}
	return record, nil
}

func (r *ResultRepository) ListRuns(_ context.Context, limit int) ([]*ports.RunRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]*ports.RunRecord, 0, len(r.runs))
	for _, record := range r.runs {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (r *ResultRepository) SaveSweep(_ context.Context, summary *compare.SweepSummary) error {
	if summary == nil || summary.SweepID == "" {
		return errors.InvalidInput("sweep summary requires an ID")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps[summary.SweepID] = summary
	return nil
}

func (r *ResultRepository) GetSweep(_ context.Context, id core.SweepID) (*compare.SweepSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summary, ok := r.sweeps[id]
	if !ok {
		return nil, errors.NotFound("sweep " + id.String())
	}
	return summary, nil
}
