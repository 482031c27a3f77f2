package ports

import (
	"io"

	"carepath/domain/carepath"
	"carepath/domain/compare"
)

// ReportRenderer turns results into human-readable documents.
type ReportRenderer interface {
	// RenderComparison writes the comparison report to w.
	RenderComparison(w io.Writer, record *RunRecord) error

	// RenderSweep writes the sweep report to w.
	RenderSweep(w io.Writer, summary *compare.SweepSummary) error
}

// CohortWriter exports raw episode-level data for external analysis.
type CohortWriter interface {
	// WriteEpisodes writes one row per episode with per-stage columns.
	WriteEpisodes(w io.Writer, cohort *carepath.Cohort) error
}
