// Package postgres persists comparison runs and sweeps. Results are stored
// as JSONB payloads next to the indexed reproducibility envelope, so any row
// can be re-run from its (config hash, seed, n) triple alone.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/errors"
	"carepath/ports"
)

// ResultRepositoryImpl implements ResultRepository for PostgreSQL
type ResultRepositoryImpl struct {
	db *sqlx.DB
}

// NewResultRepository creates a new PostgreSQL result repository
func NewResultRepository(db *sqlx.DB) ports.ResultRepository {
	return &ResultRepositoryImpl{db: db}
}

// Connect opens a PostgreSQL connection pool and verifies it.
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "opening postgres connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging postgres")
	}
	return db, nil
}

// Migrate creates the result tables if they do not exist.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return errors.Wrap(err, "applying schema")
}

const schema = `
CREATE TABLE IF NOT EXISTS comparison_runs (
	run_id             TEXT PRIMARY KEY,
	before_scenario    TEXT NOT NULL,
	after_scenario     TEXT NOT NULL,
	before_config_hash TEXT NOT NULL,
	after_config_hash  TEXT NOT NULL,
	seed               BIGINT NOT NULL,
	sample_size        INTEGER NOT NULL,
	result             JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sweeps (
	sweep_id   TEXT PRIMARY KEY,
	summary    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sweep_runs (
	sweep_id      TEXT NOT NULL REFERENCES sweeps(sweep_id) ON DELETE CASCADE,
	position      INTEGER NOT NULL,
	sweep_kind    TEXT NOT NULL,
	variant_label TEXT NOT NULL,
	seed          BIGINT NOT NULL,
	sample_size   INTEGER NOT NULL,
	pct_reduction DOUBLE PRECISION NOT NULL,
	significant   BOOLEAN NOT NULL,
	PRIMARY KEY (sweep_id, position)
);

CREATE INDEX IF NOT EXISTS idx_comparison_runs_created_at ON comparison_runs (created_at DESC);
`

// SaveRun stores a comparison run with its full result payload.
func (r *ResultRepositoryImpl) SaveRun(ctx context.Context, record *ports.RunRecord) error {
	payload, err := json.Marshal(record.Result)
	if err != nil {
		return errors.Wrap(err, "marshaling comparison result")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO comparison_runs (run_id, before_scenario, after_scenario, before_config_hash, after_config_hash, seed, sample_size, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, record.RunID, record.BeforeScenario, record.AfterScenario,
		record.BeforeConfigHash, record.AfterConfigHash,
		record.Seed, record.SampleSize, payload, record.CreatedAt.Time())

	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "inserting comparison run")
	}
	return nil
}

type runRow struct {
	RunID            string          `db:"run_id"`
	BeforeScenario   string          `db:"before_scenario"`
	AfterScenario    string          `db:"after_scenario"`
	BeforeConfigHash string          `db:"before_config_hash"`
	AfterConfigHash  string          `db:"after_config_hash"`
	Seed             int64           `db:"seed"`
	SampleSize       int             `db:"sample_size"`
	Result           json.RawMessage `db:"result"`
	CreatedAt        sql.NullTime    `db:"created_at"`
}

func (row runRow) toRecord() (*ports.RunRecord, error) {
	var result compare.ComparisonResult
	if err := json.Unmarshal(row.Result, &result); err != nil {
		return nil, errors.Wrap(err, "unmarshaling comparison result")
	}
	record := &ports.RunRecord{
		RunID:            core.RunID(row.RunID),
		BeforeScenario:   core.ScenarioName(row.BeforeScenario),
		AfterScenario:    core.ScenarioName(row.AfterScenario),
		BeforeConfigHash: core.ConfigHash(row.BeforeConfigHash),
		AfterConfigHash:  core.ConfigHash(row.AfterConfigHash),
		Seed:             row.Seed,
		SampleSize:       row.SampleSize,
		Result:           &result,
	}
	if row.CreatedAt.Valid {
		record.CreatedAt = core.NewTimestamp(row.CreatedAt.Time)
	}
	return record, nil
}

// GetRun retrieves a run by ID
func (r *ResultRepositoryImpl) GetRun(ctx context.Context, id core.RunID) (*ports.RunRecord, error) {
	var row runRow
	err := r.db.GetContext(ctx, &row, `
		SELECT run_id, before_scenario, after_scenario, before_config_hash, after_config_hash, seed, sample_size, result, created_at
		FROM comparison_runs
		WHERE run_id = $1
	`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("run " + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "querying comparison run")
	}
	return row.toRecord()
}

// ListRuns returns the most recent runs, newest first
func (r *ResultRepositoryImpl) ListRuns(ctx context.Context, limit int) ([]*ports.RunRecord, error) {
	query := `
		SELECT run_id, before_scenario, after_scenario, before_config_hash, after_config_hash, seed, sample_size, result, created_at
		FROM comparison_runs
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "listing comparison runs")
	}

	records := make([]*ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// SaveSweep stores a sweep summary and one row per cell for SQL-side
// filtering.
func (r *ResultRepositoryImpl) SaveSweep(ctx context.Context, summary *compare.SweepSummary) error {
	payload, err := json.Marshal(summary)
	if err != nil {
		return errors.Wrap(err, "marshaling sweep summary")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "starting sweep transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sweeps (sweep_id, summary, created_at)
		VALUES ($1, $2, $3)
	`, summary.SweepID, payload, summary.CreatedAt.Time())
	if err != nil {
		return errors.Wrap(errors.DatabaseError(err.Error()), "inserting sweep")
	}

	for i, run := range summary.Runs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sweep_runs (sweep_id, position, sweep_kind, variant_label, seed, sample_size, pct_reduction, significant)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, summary.SweepID, i, run.Kind, run.VariantLabel, run.Seed, run.SampleSize,
			run.Result.Total.PctReduction, run.Result.Total.Significant)
		if err != nil {
			return errors.Wrap(errors.DatabaseError(err.Error()), "inserting sweep run")
		}
	}

	return errors.Wrap(tx.Commit(), "committing sweep")
}

// GetSweep retrieves a sweep summary by ID
func (r *ResultRepositoryImpl) GetSweep(ctx context.Context, id core.SweepID) (*compare.SweepSummary, error) {
	var payload json.RawMessage
	err := r.db.GetContext(ctx, &payload, `SELECT summary FROM sweeps WHERE sweep_id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("sweep " + id.String())
	}
	if err != nil {
		return nil, errors.Wrap(errors.DatabaseError(err.Error()), "querying sweep")
	}

	var summary compare.SweepSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, errors.Wrap(err, "unmarshaling sweep summary")
	}
	return &summary, nil
}
