package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CompanyRecord is an employer ready to be upserted, keyed by its HH id.
type CompanyRecord struct {
	HHID int
	Name string
	URL  *string
}

// VacancyRecord is a normalized vacancy ready to be upserted. The owning
// company is referenced by its HH id and resolved against a company map
// at upsert time.
type VacancyRecord struct {
	HHID         int
	EmployerHHID int
	Title        string
	SalaryFrom   *int
	SalaryTo     *int
	Currency     *string
	AlternateURL *string
	PublishedAt  *time.Time
}

// VacancyView is one row of the query surface: a vacancy joined with its
// company name. No formatting is applied here.
type VacancyView struct {
	CompanyName string
	Title       string
	SalaryFrom  *int
	SalaryTo    *int
	Currency    *string
	URL         *string
}

// CompanyCount pairs a company name with its vacancy count.
type CompanyCount struct {
	Name      string
	Vacancies int
}

// Ingest run statuses.
const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run is one recorded ingestion run.
type Run struct {
	ID                uuid.UUID
	Status            string
	StartedAt         time.Time
	CompletedAt       *time.Time
	CompaniesUpserted int
	VacanciesUpserted int
	OrphansSkipped    int
	Error             *string
}

// RunResult carries the final counters for a finished ingestion run.
type RunResult struct {
	Status            string
	CompaniesUpserted int
	VacanciesUpserted int
	OrphansSkipped    int
	Error             *string
}

// ComputedSalary derives the salary value used by every aggregate and
// filter: the exact midpoint when both bounds are present, the present
// bound when only one is, nil when neither is. It must stay in lockstep
// with computedSalarySQL.
func ComputedSalary(from, to *int) *float64 {
	switch {
	case from != nil && to != nil:
		v := (float64(*from) + float64(*to)) / 2.0
		return &v
	case from != nil:
		v := float64(*from)
		return &v
	case to != nil:
		v := float64(*to)
		return &v
	default:
		return nil
	}
}

// computedSalarySQL is the SQL twin of ComputedSalary, parameterized on
// the vacancies table alias.
func computedSalarySQL(alias string) string {
	return fmt.Sprintf(`CASE
		WHEN %[1]s.salary_from IS NOT NULL AND %[1]s.salary_to IS NOT NULL THEN (%[1]s.salary_from + %[1]s.salary_to) / 2.0
		WHEN %[1]s.salary_from IS NOT NULL THEN %[1]s.salary_from * 1.0
		WHEN %[1]s.salary_to IS NOT NULL THEN %[1]s.salary_to * 1.0
		ELSE NULL
	END`, alias)
}
