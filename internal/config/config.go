package config

import (
	"os"
	"strconv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// CORS
	CORSOrigins string // Comma-separated allowed origins

	// Google Sheets export. Base64-encoded service-account JSON; when empty
	// the sheet export feature is disabled and everything else still runs.
	SheetsCredentialsB64 string

	// Removal recommendation thresholds. A field is a removal candidate when
	// its empty count and sample size both reach these values.
	RemoveEmptyMin  int // env: REMOVE_EMPTY_MIN, default 6
	RemoveMinSample int // env: REMOVE_MIN_SAMPLE, default 10
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/fieldaudit?sslmode=disable"),
		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		SheetsCredentialsB64: getEnv("GSHEETS_SERVICE_ACCOUNT_JSON_B64", ""),

		RemoveEmptyMin:  getEnvInt("REMOVE_EMPTY_MIN", 6),
		RemoveMinSample: getEnvInt("REMOVE_MIN_SAMPLE", 10),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// SheetsEnabled reports whether the Google Sheets export feature is configured.
func (c *Config) SheetsEnabled() bool {
	return c.SheetsCredentialsB64 != ""
}
