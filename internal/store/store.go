// Package store provides PostgreSQL persistence for companies and
// vacancies, plus the analytic query surface over them.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a PostgreSQL connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS companies (
			id SERIAL PRIMARY KEY,
			hh_id INTEGER UNIQUE NOT NULL,
			name TEXT NOT NULL,
			url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS vacancies (
			id SERIAL PRIMARY KEY,
			hh_id INTEGER UNIQUE NOT NULL,
			company_id INTEGER NOT NULL REFERENCES companies(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			salary_from INTEGER,
			salary_to INTEGER,
			salary_currency TEXT,
			alternate_url TEXT,
			published_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id UUID PRIMARY KEY,
			status TEXT NOT NULL,
			started_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			completed_at TIMESTAMPTZ,
			companies_upserted INTEGER NOT NULL DEFAULT 0,
			vacancies_upserted INTEGER NOT NULL DEFAULT 0,
			orphans_skipped INTEGER NOT NULL DEFAULT 0,
			error TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
