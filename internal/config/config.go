package config

import (
	"os"
	"strconv"

	"carepath/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Simulation SimulationConfig
	Paths      PathConfig
}

// DatabaseConfig holds database connection settings. The database is
// optional: without DATABASE_URL the service runs with in-memory storage.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// SimulationConfig holds simulation defaults applied when a request leaves
// them unset.
type SimulationConfig struct {
	DefaultSeed       int64
	DefaultSampleSize int
	SweepWorkers      int
}

// PathConfig holds file system paths for exports and scenario files
type PathConfig struct {
	ScenarioFile string
	ExportDir    string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Simulation: SimulationConfig{
			DefaultSeed:       getEnvInt64OrDefault("DEFAULT_SEED", 42),
			DefaultSampleSize: getEnvIntOrDefault("DEFAULT_SAMPLE_SIZE", 1000),
			SweepWorkers:      getEnvIntOrDefault("SWEEP_WORKERS", 0),
		},
		Paths: PathConfig{
			ScenarioFile: getEnvOrDefault("SCENARIO_FILE", ""),
			ExportDir:    getEnvOrDefault("EXPORT_DIR", "./exports"),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Simulation.DefaultSampleSize < 2 {
		return errors.ConfigInvalidf("DEFAULT_SAMPLE_SIZE must be >= 2 (got %d)", config.Simulation.DefaultSampleSize)
	}
	if config.Simulation.SweepWorkers < 0 {
		return errors.ConfigInvalidf("SWEEP_WORKERS must be >= 0 (got %d)", config.Simulation.SweepWorkers)
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT cannot be empty")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
