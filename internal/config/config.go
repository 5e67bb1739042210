// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir          string // Base directory for the run-history database (always absolute)
	Port             int
	LogLevel         string
	DevMode          bool
	DefaultShots     int     // Shot count used when a request does not specify one
	DefaultRounds    int     // IQPE iteration count used when a request does not specify one
	TimeSlice        float64 // Base evolution time slice t0
	Seed             int64   // RNG seed for shot sampling; 0 means non-deterministic
	RetentionDays    int     // Days of run history kept by the cleanup job
	MaxQubits        int     // Upper bound on register size accepted by the API
	SimonBudgetScale int     // Measurement budget per Simon run, as a multiple of the bit-width
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	dataDir := getEnv("QLAB_DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:          absDataDir,
		Port:             getEnvAsInt("QLAB_PORT", 8001),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		DevMode:          getEnvAsBool("DEV_MODE", false),
		DefaultShots:     getEnvAsInt("QLAB_SHOTS", 1024),
		DefaultRounds:    getEnvAsInt("QLAB_IQPE_ROUNDS", 8),
		TimeSlice:        getEnvAsFloat("QLAB_TIME_SLICE", 1.0),
		Seed:             int64(getEnvAsInt("QLAB_SEED", 0)),
		RetentionDays:    getEnvAsInt("QLAB_RETENTION_DAYS", 30),
		MaxQubits:        getEnvAsInt("QLAB_MAX_QUBITS", 24),
		SimonBudgetScale: getEnvAsInt("QLAB_SIMON_BUDGET_SCALE", 32),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.DefaultShots <= 0 {
		return fmt.Errorf("shot count must be positive, got %d", c.DefaultShots)
	}
	if c.DefaultRounds <= 0 {
		return fmt.Errorf("IQPE round count must be positive, got %d", c.DefaultRounds)
	}
	if c.TimeSlice <= 0 {
		return fmt.Errorf("time slice must be positive, got %f", c.TimeSlice)
	}
	if c.MaxQubits < 1 {
		return fmt.Errorf("max qubits must be at least 1, got %d", c.MaxQubits)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
