package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"tradeSimulator/internal/adapters/logger" // Import the logger package for LogLevel
	"tradeSimulator/internal/ports"
)

// Storage backends for the persistent KV store.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	// Persistence
	DBPath  string
	Storage string // StorageSQLite or StorageMemory

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{}
	var errs []string // Collect validation errors

	// Persistence
	cfg.DBPath = getEnv("TRADESIM_DB_PATH", "./data/tradesim.db")
	if strings.TrimSpace(cfg.DBPath) == "" {
		errs = append(errs, "TRADESIM_DB_PATH must be set")
	}

	cfg.Storage = strings.ToLower(getEnv("TRADESIM_STORAGE", StorageSQLite))
	if cfg.Storage != StorageSQLite && cfg.Storage != StorageMemory {
		errs = append(errs, fmt.Sprintf("TRADESIM_STORAGE must be %q or %q, got %q", StorageSQLite, StorageMemory, cfg.Storage))
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr)

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ports.ErrConfigurationError, strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
