// Package config provides environment-sourced configuration for the loader.
// The Config value is built once at process start and handed to every
// component constructor; nothing below this layer reads the environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Defaults applied when the corresponding variable is unset.
const (
	DefaultHHBaseURL    = "https://api.hh.ru"
	DefaultUserAgent    = "vacancy-warehouse/1.0"
	DefaultPerPage      = 100
	DefaultMaxPages     = 20
	DefaultFetchWorkers = 1
)

// Config holds all runtime configuration for the loader and query commands.
type Config struct {
	DatabaseURL  string `validate:"required"`
	HHBaseURL    string `validate:"required,url"`
	UserAgent    string `validate:"required"`
	PerPage      int    `validate:"min=1,max=100"`
	MaxPages     int    `validate:"min=1"`
	FetchWorkers int    `validate:"min=1"`
	LogLevel     string
}

// Load reads environment variables and returns a validated Config.
// DATABASE_URL is required; everything else has a default.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		HHBaseURL:   envOr("HH_BASE_URL", DefaultHHBaseURL),
		UserAgent:   envOr("HH_USER_AGENT", DefaultUserAgent),
		LogLevel:    envOr("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.PerPage, err = envInt("HH_PER_PAGE", DefaultPerPage); err != nil {
		return nil, err
	}
	if cfg.MaxPages, err = envInt("HH_MAX_PAGES", DefaultMaxPages); err != nil {
		return nil, err
	}
	if cfg.FetchWorkers, err = envInt("FETCH_WORKERS", DefaultFetchWorkers); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}
