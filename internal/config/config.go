// Package config loads server configuration from the environment, with an
// optional .env file for local development.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// DBPath is the SQLite database file path.
	DBPath string

	// TokenSecret signs device tokens. Override it in any real deployment.
	TokenSecret string

	// TokenTTL is the device-token lifetime.
	TokenTTL time.Duration
}

// Load reads configuration from environment variables, preferring values
// from a .env file in the working directory when present.
func Load() *Config {
	// Missing .env is fine; env vars still apply.
	_ = godotenv.Load()

	return &Config{
		Addr:        getEnv("ADDR", ":8080"),
		DBPath:      getEnv("DB_PATH", "./data/crewlog.db"),
		TokenSecret: getEnv("TOKEN_SECRET", "dev-only-secret"),
		TokenTTL:    getDuration("TOKEN_TTL", 365*24*time.Hour),
	}
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
