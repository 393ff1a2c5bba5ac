package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	envDatabasePath = "VINYLVAULT_DATABASE_PATH"
	envLogLevel     = "VINYLVAULT_LOG_LEVEL"
	envSessionTTL   = "VINYLVAULT_SESSION_TTL"
)

// parseEnv overlays cfg with environment variables. A .env file in the
// working directory is loaded first if present; already-set variables win
// over .env entries per godotenv semantics.
func parseEnv(cfg *Config) {
	_ = godotenv.Load()

	if v := os.Getenv(envDatabasePath); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envSessionTTL); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.SessionTTL = d
		}
	}
}
