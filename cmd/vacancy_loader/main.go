// Package main provides the vacancy warehouse CLI: schema migration,
// HH ingestion runs, and analytic queries over the stored data.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/vacancy-warehouse/internal/config"
	"github.com/jonathan/vacancy-warehouse/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "vacancy_loader",
	Short: "HH vacancy warehouse",
	Long:  "Loads employers and vacancies from the hh.ru API into PostgreSQL and answers salary and keyword queries over the stored data.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore loads configuration and connects to the database. The
// caller owns the returned store and must Close it.
func openStore(ctx context.Context) (*store.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	s, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}
