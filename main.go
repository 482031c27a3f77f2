// Command carepath-server runs the HTTP API with environment configuration.
// The CLI under cmd/cli covers batch simulation, comparison and sweeps.
package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"carepath/adapters/memory"
	"carepath/adapters/postgres"
	"carepath/adapters/scenario"
	"carepath/app"
	"carepath/internal/config"
	"carepath/internal/logging"
	"carepath/ports"
	"carepath/ui"
)

func main() {
	_ = godotenv.Load()
	log := logging.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		log.Error("configuration: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var repo ports.ResultRepository
	if cfg.Database.URL != "" {
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Error("database: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			log.Error("migration: %v", err)
			os.Exit(1)
		}
		repo = postgres.NewResultRepository(db)
		log.Info("results persisted to postgres")
	} else {
		repo = memory.NewResultRepository()
		log.Warn("DATABASE_URL not set; results are kept in memory only")
	}

	var scenarios *scenario.File
	if cfg.Paths.ScenarioFile != "" {
		scenarios, err = scenario.LoadFile(cfg.Paths.ScenarioFile)
		if err != nil {
			log.Error("scenario file: %v", err)
			os.Exit(1)
		}
		log.Info("loaded %d scenarios from %s", len(scenarios.Scenarios), cfg.Paths.ScenarioFile)
	}

	defaultSeed := cfg.Simulation.DefaultSeed
	defaultN := cfg.Simulation.DefaultSampleSize
	if scenarios != nil {
		if scenarios.Run.Seed != 0 {
			defaultSeed = scenarios.Run.Seed
		}
		if scenarios.Run.SampleSize > 0 {
			defaultN = scenarios.Run.SampleSize
		}
	}

	gin.SetMode(cfg.Server.GinMode)
	server := ui.NewServer(
		app.NewComparisonService(repo),
		app.NewSweepService(repo, cfg.Simulation.SweepWorkers),
		scenarios,
		defaultSeed,
		defaultN,
	)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		log.Error("server: %v", err)
		os.Exit(1)
	}
}
