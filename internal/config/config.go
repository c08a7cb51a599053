package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every externally injected setting. It is built once in main
// and threaded through constructors; packages never read the environment
// themselves.
type Config struct {
	// YNAB API
	BaseEndpoint string // e.g. https://api.ynab.com/v1
	BudgetID     string
	UserToken    string

	// Blob storage
	StorageBucket   string
	CredentialsFile string // optional; ADC is used when empty

	// Service
	HTTPPort     string
	Schedule     string // cron spec for scheduled pipeline runs
	StageTimeout time.Duration
}

// Load reads configuration from the environment, first merging in a .env file
// when one is present.
func Load() (*Config, error) {
	// A missing .env file is fine; real deployments inject env vars directly.
	_ = godotenv.Load()

	cfg := &Config{
		BaseEndpoint:    getEnv("YNAB_BASE_ENDPOINT", "https://api.ynab.com/v1"),
		BudgetID:        os.Getenv("YNAB_BUDGET_ID"),
		UserToken:       os.Getenv("YNAB_USER_TOKEN"),
		StorageBucket:   getEnv("STORAGE_BUCKET", "ynab"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		Schedule:        getEnv("PIPELINE_SCHEDULE", "42 2 * * *"),
	}

	timeout, err := time.ParseDuration(getEnv("STAGE_TIMEOUT", "10m"))
	if err != nil {
		return nil, fmt.Errorf("config: parsing STAGE_TIMEOUT: %w", err)
	}
	cfg.StageTimeout = timeout

	if cfg.BudgetID == "" {
		return nil, fmt.Errorf("config: YNAB_BUDGET_ID is required")
	}
	if cfg.UserToken == "" {
		return nil, fmt.Errorf("config: YNAB_USER_TOKEN is required")
	}

	return cfg, nil
}

// getEnv returns the environment value for key or the given default.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
