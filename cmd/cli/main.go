package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"carepath/adapters/excel"
	"carepath/adapters/memory"
	"carepath/adapters/postgres"
	"carepath/adapters/report"
	"carepath/adapters/scenario"
	"carepath/adapters/tabular"
	"carepath/app"
	"carepath/domain/carepath"
	"carepath/domain/compare"
	"carepath/domain/core"
	"carepath/internal/config"
	"carepath/internal/simulate"
	"carepath/ports"
	"carepath/ui"
)

func main() {
	// Missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "carepath",
		Short: "Discrete-event care path simulation and statistical evaluation",
	}

	rootCmd.AddCommand(
		newSimulateCmd(),
		newCompareCmd(),
		newSweepCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadScenarios loads the scenario file named by --scenarios or SCENARIO_FILE.
// A missing path means built-ins only.
func loadScenarios(path string) (*scenario.File, error) {
	if path == "" {
		path = os.Getenv("SCENARIO_FILE")
	}
	if path == "" {
		return nil, nil
	}
	return scenario.LoadFile(path)
}

func resolveScenario(f *scenario.File, name string) (*carepath.ScenarioConfig, error) {
	return scenario.Resolve(f, core.ScenarioName(name))
}

func newSimulateCmd() *cobra.Command {
	var seed int64
	var n int
	var scenarioFile string
	var out string

	cmd := &cobra.Command{
		Use:   "simulate [scenario]",
		Short: "Generate one cohort and export it as CSV",
		Long: `Simulate a patient cohort for one scenario and write episode-level CSV.

Built-in scenarios: legacy, orchestrator, fifo, rule_based, partial_automation.
Additional scenarios load from --scenarios (or SCENARIO_FILE).

Example: carepath simulate legacy --n 1000 --seed 42 --out legacy.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := loadScenarios(scenarioFile)
			if err != nil {
				return err
			}
			cfg, err := resolveScenario(scenarios, args[0])
			if err != nil {
				return err
			}

			cohort, err := simulate.RunCohort(cfg, n, seed)
			if err != nil {
				return err
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return tabular.NewWriter().WriteEpisodes(w, cohort)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic sampling")
	cmd.Flags().IntVar(&n, "n", 1000, "Number of patient episodes")
	cmd.Flags().StringVar(&scenarioFile, "scenarios", "", "YAML scenario file")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV path (default stdout)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var seed int64
	var n int
	var alpha float64
	var scenarioFile string
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "compare [before] [after]",
		Short: "Compare two scenarios with the full statistical battery",
		Long: `Simulate both scenarios under one seed and run the comparison battery:
descriptives, Student and Welch t-tests, Mann-Whitney U, effect sizes,
per-stage Bonferroni-corrected tests.

Example: carepath compare legacy orchestrator --n 1000 --seed 42 --format report`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := loadScenarios(scenarioFile)
			if err != nil {
				return err
			}
			before, err := resolveScenario(scenarios, args[0])
			if err != nil {
				return err
			}
			after, err := resolveScenario(scenarios, args[1])
			if err != nil {
				return err
			}

			svc := app.NewComparisonService(memory.NewResultRepository())
			record, err := svc.Run(cmd.Context(), app.ComparisonRequest{
				Before: before, After: after, N: n, Seed: seed, Alpha: alpha,
			})
			if err != nil {
				return err
			}
			return writeComparison(record, format, out)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic sampling")
	cmd.Flags().IntVar(&n, "n", 1000, "Episodes per cohort")
	cmd.Flags().Float64Var(&alpha, "alpha", 0.05, "Significance threshold")
	cmd.Flags().StringVar(&scenarioFile, "scenarios", "", "YAML scenario file")
	cmd.Flags().StringVar(&format, "format", "report", "Output format: report|json|csv|xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default stdout; required for xlsx)")
	return cmd
}

func writeComparison(record *ports.RunRecord, format, out string) error {
	if format == "xlsx" {
		if out == "" {
			out = fmt.Sprintf("comparison_%s.xlsx", record.RunID)
		}
		if err := excel.NewWorkbookWriter().WriteComparison(out, record); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}

	w := os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	case "csv":
		return tabular.NewWriter().WriteComparison(w, record.Result)
	default:
		return report.NewMarkdownRenderer().RenderComparison(w, record)
	}
}

func newSweepCmd() *cobra.Command {
	var seed int64
	var n int
	var workers int
	var scenarioFile string
	var kind string
	var factors []float64
	var sizes []int
	var seeds []int64
	var baselines []string
	var errorRates []float64
	var oversightRates []float64
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "sweep [before] [after]",
		Short: "Run a sensitivity sweep over a comparison",
		Long: `Run a family of perturbed comparison runs to probe robustness.

Kinds:
  parameter_scale  scale before's means by each --factor
  sample_size      repeat at each --size
  variance_scale   scale both scenarios' spreads by each --factor
  scenario_bundle  compare each --baseline against [after]
  multi_seed       repeat under each --run-seed
  grid             cross --error-rate with --oversight-rate

Example: carepath sweep legacy orchestrator --kind multi_seed --run-seed 1 --run-seed 2 --run-seed 3 --n 500`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			scenarios, err := loadScenarios(scenarioFile)
			if err != nil {
				return err
			}

			var before *carepath.ScenarioConfig
			afterName := args[len(args)-1]
			if len(args) == 2 {
				before, err = resolveScenario(scenarios, args[0])
				if err != nil {
					return err
				}
			}
			after, err := resolveScenario(scenarios, afterName)
			if err != nil {
				return err
			}

			baselineCfgs := make([]*carepath.ScenarioConfig, 0, len(baselines))
			for _, name := range baselines {
				cfg, err := resolveScenario(scenarios, name)
				if err != nil {
					return err
				}
				baselineCfgs = append(baselineCfgs, cfg)
			}

			svc := app.NewSweepService(memory.NewResultRepository(), workers)
			summary, err := svc.Run(cmd.Context(), app.SweepRequest{
				Kind:           compare.SweepKind(kind),
				Before:         before,
				After:          after,
				Factors:        factors,
				Sizes:          sizes,
				Seeds:          seeds,
				Baselines:      baselineCfgs,
				ErrorRates:     errorRates,
				OversightRates: oversightRates,
				N:              n,
				Seed:           seed,
			})
			if err != nil {
				return err
			}
			return writeSweep(summary, format, out)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Base random seed")
	cmd.Flags().IntVar(&n, "n", 1000, "Episodes per cohort")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent sweep cells (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&scenarioFile, "scenarios", "", "YAML scenario file")
	cmd.Flags().StringVar(&kind, "kind", "multi_seed", "Sweep kind")
	cmd.Flags().Float64SliceVar(&factors, "factor", nil, "Scale factor (repeatable)")
	cmd.Flags().IntSliceVar(&sizes, "size", nil, "Sample size (repeatable)")
	cmd.Flags().Int64SliceVar(&seeds, "run-seed", nil, "Seed for multi_seed sweeps (repeatable)")
	cmd.Flags().StringSliceVar(&baselines, "baseline", nil, "Baseline scenario name (repeatable)")
	cmd.Flags().Float64SliceVar(&errorRates, "error-rate", nil, "AI error rate for grid sweeps (repeatable)")
	cmd.Flags().Float64SliceVar(&oversightRates, "oversight-rate", nil, "Human oversight rate for grid sweeps (repeatable)")
	cmd.Flags().StringVar(&format, "format", "report", "Output format: report|json|csv|xlsx")
	cmd.Flags().StringVar(&out, "out", "", "Output path (default stdout; required for xlsx)")
	return cmd
}

func writeSweep(summary *compare.SweepSummary, format, out string) error {
	if format == "xlsx" {
		if out == "" {
			out = fmt.Sprintf("sweep_%s.xlsx", summary.SweepID)
		}
		if err := excel.NewWorkbookWriter().WriteSweep(out, summary); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", out)
		return nil
	}

	w := os.Stdout
	if out != "" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	case "csv":
		return tabular.NewWriter().WriteSweep(w, summary)
	default:
		return report.NewMarkdownRenderer().RenderSweep(w, summary)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Serve the JSON API. Configuration comes from the environment:
PORT, DATABASE_URL (optional; in-memory storage without it), SCENARIO_FILE,
DEFAULT_SEED, DEFAULT_SAMPLE_SIZE, SWEEP_WORKERS.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	return cmd
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var repo ports.ResultRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		repo = postgres.NewResultRepository(db)
	} else {
		repo = memory.NewResultRepository()
	}

	scenarios, err := loadScenarios(cfg.Paths.ScenarioFile)
	if err != nil {
		return err
	}
	defaultSeed, defaultN := runDefaults(cfg, scenarios)

	gin.SetMode(cfg.Server.GinMode)
	server := ui.NewServer(
		app.NewComparisonService(repo),
		app.NewSweepService(repo, cfg.Simulation.SweepWorkers),
		scenarios,
		defaultSeed,
		defaultN,
	)
	return server.Run(":" + cfg.Server.Port)
}

// runDefaults resolves per-request defaults: a scenario file's run block
// overrides the environment configuration.
func runDefaults(cfg *config.Config, scenarios *scenario.File) (int64, int) {
	seed := cfg.Simulation.DefaultSeed
	n := cfg.Simulation.DefaultSampleSize
	if scenarios != nil {
		if scenarios.Run.Seed != 0 {
			seed = scenarios.Run.Seed
		}
		if scenarios.Run.SampleSize > 0 {
			n = scenarios.Run.SampleSize
		}
	}
	return seed, n
}
