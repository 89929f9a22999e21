// Package loader sequences one full ingestion run: employer fetch,
// company upsert, per-employer vacancy fetch, vacancy upsert.
package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/vacancy-warehouse/internal/hh"
	"github.com/jonathan/vacancy-warehouse/internal/logging"
	"github.com/jonathan/vacancy-warehouse/internal/normalize"
	"github.com/jonathan/vacancy-warehouse/internal/store"
)

// API is the slice of the HH client the loader needs.
type API interface {
	Employer(ctx context.Context, employerID int) (*hh.Employer, error)
	VacanciesByEmployer(ctx context.Context, employerID int, opts hh.VacancyOptions) ([]hh.Vacancy, error)
}

// Store is the slice of the persistence layer the loader needs.
type Store interface {
	UpsertCompanies(ctx context.Context, records []store.CompanyRecord) (int, error)
	CompanyIDsByHHID(ctx context.Context) (map[int]int, error)
	UpsertVacancies(ctx context.Context, records []store.VacancyRecord, companyIDs map[int]int) (int, int, error)
	CreateRun(ctx context.Context) (uuid.UUID, error)
	CompleteRun(ctx context.Context, id uuid.UUID, result store.RunResult) error
}

// Seed names one employer to ingest, with an optional human note.
type Seed struct {
	HHID int
	Note string
}

// Options configures a run.
type Options struct {
	PerPage        int
	MaxPages       int
	Area           *int
	OnlyWithSalary bool
	FetchWorkers   int // concurrent vacancy fetches, defaults to 1
}

// EmployerFailure records a vacancy fetch that failed for one employer.
type EmployerFailure struct {
	HHID int
	Err  error
}

// Report summarizes a completed run.
type Report struct {
	RunID             uuid.UUID
	CompaniesUpserted int
	VacanciesFetched  int
	VacanciesUpserted int
	OrphansSkipped    int
	FailedEmployers   []EmployerFailure
}

// Loader runs the ingestion pipeline. It is stateless between runs.
type Loader struct {
	api   API
	store Store
	log   *logging.Logger
}

// New constructs a Loader. A nil logger discards all output.
func New(api API, st Store, log *logging.Logger) *Loader {
	if log == nil {
		log = logging.Nop()
	}
	return &Loader{api: api, store: st, log: log}
}

// Run ingests all seed employers and their vacancies.
//
// Employer fetches are fail-fast: any failure aborts the run before a
// single row is written, so a half-fetched employer batch never reaches
// the store. Vacancy fetches are best-effort: a failure for one
// employer is recorded in the report and the rest proceed. Company-map
// resolution happens after all company upserts commit and before any
// vacancy upsert starts.
func (l *Loader) Run(ctx context.Context, seeds []Seed, opts Options) (*Report, error) {
	runID, err := l.store.CreateRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to record ingest run: %w", err)
	}
	report := &Report{RunID: runID}
	log := l.log.With("run_id", runID.String())

	log.Info("fetching employers", "seeds", len(seeds))
	companies := make([]store.CompanyRecord, 0, len(seeds))
	for _, seed := range seeds {
		emp, err := l.api.Employer(ctx, seed.HHID)
		if err != nil {
			return nil, l.fail(ctx, runID, report, fmt.Errorf("fetching employer %d: %w", seed.HHID, err))
		}
		companies = append(companies, store.CompanyRecord{HHID: emp.ID, Name: emp.Name, URL: emp.URL})
	}

	report.CompaniesUpserted, err = l.store.UpsertCompanies(ctx, companies)
	if err != nil {
		return nil, l.fail(ctx, runID, report, fmt.Errorf("upserting companies: %w", err))
	}
	log.Info("companies upserted", "count", report.CompaniesUpserted)

	companyIDs, err := l.store.CompanyIDsByHHID(ctx)
	if err != nil {
		return nil, l.fail(ctx, runID, report, fmt.Errorf("resolving company map: %w", err))
	}

	vacancies, failures := l.fetchVacancies(ctx, seeds, opts)
	report.FailedEmployers = failures
	report.VacanciesFetched = len(vacancies)
	for _, f := range failures {
		log.Warn("vacancy fetch failed for employer", "employer_id", f.HHID, "error", f.Err.Error())
	}

	records := make([]store.VacancyRecord, 0, len(vacancies))
	for _, v := range vacancies {
		if v.EmployerID == nil {
			report.OrphansSkipped++
			continue
		}
		from, to, currency := normalize.Salary(v.Salary)
		records = append(records, store.VacancyRecord{
			HHID:         v.ID,
			EmployerHHID: *v.EmployerID,
			Title:        v.Name,
			SalaryFrom:   from,
			SalaryTo:     to,
			Currency:     currency,
			AlternateURL: v.AlternateURL,
			PublishedAt:  normalize.PublishedAt(v.PublishedAt),
		})
	}

	upserted, skipped, err := l.store.UpsertVacancies(ctx, records, companyIDs)
	if err != nil {
		return nil, l.fail(ctx, runID, report, fmt.Errorf("upserting vacancies: %w", err))
	}
	report.VacanciesUpserted = upserted
	report.OrphansSkipped += skipped

	if err := l.store.CompleteRun(ctx, runID, store.RunResult{
		Status:            store.RunStatusCompleted,
		CompaniesUpserted: report.CompaniesUpserted,
		VacanciesUpserted: report.VacanciesUpserted,
		OrphansSkipped:    report.OrphansSkipped,
	}); err != nil {
		log.Error("failed to finalize run record", "error", err.Error())
	}

	log.Info("run completed",
		"companies", report.CompaniesUpserted,
		"vacancies", report.VacanciesUpserted,
		"orphans_skipped", report.OrphansSkipped,
		"failed_employers", len(report.FailedEmployers))
	return report, nil
}

// fetchVacancies walks all seeds, optionally in parallel, and returns
// the concatenation of their vacancy pages in seed order.
func (l *Loader) fetchVacancies(ctx context.Context, seeds []Seed, opts Options) ([]hh.Vacancy, []EmployerFailure) {
	workers := opts.FetchWorkers
	if workers <= 0 {
		workers = 1
	}

	perSeed := make([][]hh.Vacancy, len(seeds))
	var mu sync.Mutex
	var failures []EmployerFailure

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			items, err := l.api.VacanciesByEmployer(ctx, seed.HHID, hh.VacancyOptions{
				PerPage:        opts.PerPage,
				MaxPages:       opts.MaxPages,
				Area:           opts.Area,
				OnlyWithSalary: opts.OnlyWithSalary,
			})
			if err != nil {
				mu.Lock()
				failures = append(failures, EmployerFailure{HHID: seed.HHID, Err: err})
				mu.Unlock()
				return nil
			}
			perSeed[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var all []hh.Vacancy
	for _, items := range perSeed {
		all = append(all, items...)
	}
	return all, failures
}

// fail marks the run failed and returns the original error.
func (l *Loader) fail(ctx context.Context, runID uuid.UUID, report *Report, cause error) error {
	msg := cause.Error()
	if err := l.store.CompleteRun(ctx, runID, store.RunResult{
		Status:            store.RunStatusFailed,
		CompaniesUpserted: report.CompaniesUpserted,
		VacanciesUpserted: report.VacanciesUpserted,
		OrphansSkipped:    report.OrphansSkipped,
		Error:             &msg,
	}); err != nil {
		l.log.Error("failed to record run failure", "run_id", runID.String(), "error", err.Error())
	}
	return cause
}
