package store

import (
	"context"
	"fmt"
)

// UpsertVacancies inserts or updates vacancies keyed by hh_id. The
// owning company is resolved through companyIDs; records whose employer
// is unknown locally are skipped and counted, never written. Eligible
// records are applied in one transaction, overwriting every mutable
// field on conflict. Zero eligible records issue no write.
func (s *Store) UpsertVacancies(ctx context.Context, records []VacancyRecord, companyIDs map[int]int) (upserted, skipped int, err error) {
	type boundVacancy struct {
		VacancyRecord
		companyID int
	}

	eligible := make([]boundVacancy, 0, len(records))
	for _, rec := range records {
		companyID, ok := companyIDs[rec.EmployerHHID]
		if !ok {
			skipped++
			continue
		}
		eligible = append(eligible, boundVacancy{VacancyRecord: rec, companyID: companyID})
	}

	if len(eligible) == 0 {
		return 0, skipped, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, skipped, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, rec := range eligible {
		_, err := tx.Exec(ctx,
			`INSERT INTO vacancies
			   (hh_id, company_id, title, salary_from, salary_to, salary_currency, alternate_url, published_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (hh_id) DO UPDATE
			 SET company_id = EXCLUDED.company_id,
			     title = EXCLUDED.title,
			     salary_from = EXCLUDED.salary_from,
			     salary_to = EXCLUDED.salary_to,
			     salary_currency = EXCLUDED.salary_currency,
			     alternate_url = EXCLUDED.alternate_url,
			     published_at = EXCLUDED.published_at`,
			rec.HHID, rec.companyID, rec.Title, rec.SalaryFrom, rec.SalaryTo,
			rec.Currency, rec.AlternateURL, rec.PublishedAt,
		)
		if err != nil {
			return 0, skipped, fmt.Errorf("failed to upsert vacancy %d: %w", rec.HHID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, skipped, fmt.Errorf("failed to commit vacancy batch: %w", err)
	}
	return len(eligible), skipped, nil
}
