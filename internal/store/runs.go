package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CreateRun records the start of an ingestion run and returns its id.
func (s *Store) CreateRun(ctx context.Context) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ingest_runs (id, status) VALUES ($1, $2)`,
		id, RunStatusRunning,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create ingest run: %w", err)
	}
	return id, nil
}

// CompleteRun finalizes an ingestion run with its counters and status.
func (s *Store) CompleteRun(ctx context.Context, id uuid.UUID, result RunResult) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE ingest_runs
		 SET status = $1,
		     completed_at = NOW(),
		     companies_upserted = $2,
		     vacancies_upserted = $3,
		     orphans_skipped = $4,
		     error = $5
		 WHERE id = $6`,
		result.Status, result.CompaniesUpserted, result.VacanciesUpserted,
		result.OrphansSkipped, result.Error, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete ingest run: %w", err)
	}
	return nil
}

// ListRuns retrieves recent ingestion runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, status, started_at, completed_at,
		        companies_upserted, vacancies_upserted, orphans_skipped, error
		 FROM ingest_runs
		 ORDER BY started_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ingest runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Status, &r.StartedAt, &r.CompletedAt,
			&r.CompaniesUpserted, &r.VacanciesUpserted, &r.OrphansSkipped, &r.Error); err != nil {
			return nil, fmt.Errorf("failed to scan ingest run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
