package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// UpsertCompanies inserts or updates employers keyed by hh_id. On
// conflict the mutable fields (name, url) are overwritten. The whole
// batch is applied in one transaction; an empty batch issues no write.
func (s *Store) UpsertCompanies(ctx context.Context, records []CompanyRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range records {
		_, err := tx.Exec(ctx,
			`INSERT INTO companies (hh_id, name, url)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (hh_id) DO UPDATE
			 SET name = EXCLUDED.name,
			     url = EXCLUDED.url`,
			rec.HHID, rec.Name, rec.URL,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert company %d: %w", rec.HHID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit company batch: %w", err)
	}
	return len(records), nil
}

// CompanyIDsByHHID returns a snapshot mapping hh_id to the local
// surrogate id. The snapshot is valid only for the duration of one
// ingestion run; it must be re-resolved if companies change underneath.
func (s *Store) CompanyIDsByHHID(ctx context.Context) (map[int]int, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, hh_id FROM companies`)
	if err != nil {
		return nil, fmt.Errorf("failed to load company map: %w", err)
	}
	defer rows.Close()

	ids := make(map[int]int)
	for rows.Next() {
		var id, hhID int
		if err := rows.Scan(&id, &hhID); err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		ids[hhID] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read company rows: %w", err)
	}
	return ids, nil
}

// CompanyByHHID retrieves a single company by its HH id, or nil when it
// is unknown locally.
func (s *Store) CompanyByHHID(ctx context.Context, hhID int) (*CompanyRecord, error) {
	var rec CompanyRecord
	err := s.pool.QueryRow(ctx,
		`SELECT hh_id, name, url FROM companies WHERE hh_id = $1`,
		hhID,
	).Scan(&rec.HHID, &rec.Name, &rec.URL)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return &rec, nil
}
