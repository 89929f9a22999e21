package store

import (
	"context"
	"fmt"
)

// CompanyVacancyCounts lists every company with its vacancy count,
// including companies with zero vacancies. Ordered by count descending,
// ties broken by name ascending.
func (s *Store) CompanyVacancyCounts(ctx context.Context) ([]CompanyCount, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT c.name, COUNT(v.id)
		 FROM companies c
		 LEFT JOIN vacancies v ON v.company_id = c.id
		 GROUP BY c.name
		 ORDER BY COUNT(v.id) DESC, c.name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count vacancies per company: %w", err)
	}
	defer rows.Close()

	var counts []CompanyCount
	for rows.Next() {
		var c CompanyCount
		if err := rows.Scan(&c.Name, &c.Vacancies); err != nil {
			return nil, fmt.Errorf("failed to scan company count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// AllVacancies lists every stored vacancy with its company name,
// ordered by company name then title.
func (s *Store) AllVacancies(ctx context.Context) ([]VacancyView, error) {
	return s.queryViews(ctx,
		`SELECT c.name, v.title, v.salary_from, v.salary_to, v.salary_currency, v.alternate_url
		 FROM vacancies v
		 JOIN companies c ON c.id = v.company_id
		 ORDER BY c.name, v.title`,
	)
}

// AverageSalary returns the mean computed salary across vacancies that
// have one, or nil when no vacancy qualifies.
func (s *Store) AverageSalary(ctx context.Context) (*float64, error) {
	query := fmt.Sprintf(
		`SELECT AVG(%s)::float8 FROM vacancies`,
		computedSalarySQL("vacancies"),
	)

	var avg *float64
	if err := s.pool.QueryRow(ctx, query).Scan(&avg); err != nil {
		return nil, fmt.Errorf("failed to compute average salary: %w", err)
	}
	return avg, nil
}

// VacanciesAboveAverage lists vacancies whose computed salary is
// strictly greater than the global average. Vacancies without a
// computed salary never qualify. Same ordering as AllVacancies.
func (s *Store) VacanciesAboveAverage(ctx context.Context) ([]VacancyView, error) {
	query := fmt.Sprintf(
		`WITH s AS (
			SELECT AVG(%s) AS avg_salary FROM vacancies
		 )
		 SELECT c.name, v.title, v.salary_from, v.salary_to, v.salary_currency, v.alternate_url
		 FROM vacancies v
		 JOIN companies c ON c.id = v.company_id
		 CROSS JOIN s
		 WHERE %s > s.avg_salary
		 ORDER BY c.name, v.title`,
		computedSalarySQL("vacancies"),
		computedSalarySQL("v"),
	)
	return s.queryViews(ctx, query)
}

// VacanciesByKeyword lists vacancies whose title contains the keyword,
// case-insensitively. An empty keyword matches every titled vacancy.
// Same ordering as AllVacancies.
func (s *Store) VacanciesByKeyword(ctx context.Context, keyword string) ([]VacancyView, error) {
	pattern := "%" + keyword + "%"
	return s.queryViews(ctx,
		`SELECT c.name, v.title, v.salary_from, v.salary_to, v.salary_currency, v.alternate_url
		 FROM vacancies v
		 JOIN companies c ON c.id = v.company_id
		 WHERE v.title ILIKE $1
		 ORDER BY c.name, v.title`,
		pattern,
	)
}

func (s *Store) queryViews(ctx context.Context, query string, args ...any) ([]VacancyView, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vacancies: %w", err)
	}
	defer rows.Close()

	var views []VacancyView
	for rows.Next() {
		var v VacancyView
		if err := rows.Scan(&v.CompanyName, &v.Title, &v.SalaryFrom, &v.SalaryTo, &v.Currency, &v.URL); err != nil {
			return nil, fmt.Errorf("failed to scan vacancy row: %w", err)
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
