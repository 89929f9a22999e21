package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/vacancy-warehouse/internal/hh"
	"github.com/jonathan/vacancy-warehouse/internal/store"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

// callLog records call order; safe for concurrent fetch workers.
type callLog struct {
	mu      sync.Mutex
	entries []string
}

func (c *callLog) add(entry string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, entry)
}

func (c *callLog) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.entries...)
}

// fakeAPI serves canned employers and vacancies.
type fakeAPI struct {
	log          *callLog
	employers    map[int]*hh.Employer
	employerErr  map[int]error
	vacancies    map[int][]hh.Vacancy
	vacanciesErr map[int]error
}

func (f *fakeAPI) Employer(_ context.Context, id int) (*hh.Employer, error) {
	f.log.add(fmt.Sprintf("employer:%d", id))
	if err := f.employerErr[id]; err != nil {
		return nil, err
	}
	emp, ok := f.employers[id]
	if !ok {
		return nil, &hh.UpstreamError{StatusCode: 404, Message: "HTTP status 404"}
	}
	return emp, nil
}

func (f *fakeAPI) VacanciesByEmployer(_ context.Context, id int, _ hh.VacancyOptions) ([]hh.Vacancy, error) {
	f.log.add(fmt.Sprintf("vacancies:%d", id))
	if err := f.vacanciesErr[id]; err != nil {
		return nil, err
	}
	return f.vacancies[id], nil
}

// fakeStore keeps companies in memory and mimics the orphan-skip rule.
type fakeStore struct {
	log *callLog

	companies   map[int]int // hh_id -> surrogate id
	nextID      int
	upserted    []store.VacancyRecord
	finalResult *store.RunResult

	upsertCompaniesErr error
	upsertVacanciesErr error
}

func newFakeStore(log *callLog) *fakeStore {
	return &fakeStore{log: log, companies: make(map[int]int), nextID: 1}
}

func (f *fakeStore) UpsertCompanies(_ context.Context, records []store.CompanyRecord) (int, error) {
	f.log.add(fmt.Sprintf("upsertCompanies:%d", len(records)))
	if f.upsertCompaniesErr != nil {
		return 0, f.upsertCompaniesErr
	}
	for _, rec := range records {
		if _, ok := f.companies[rec.HHID]; !ok {
			f.companies[rec.HHID] = f.nextID
			f.nextID++
		}
	}
	return len(records), nil
}

func (f *fakeStore) CompanyIDsByHHID(_ context.Context) (map[int]int, error) {
	f.log.add("companyMap")
	ids := make(map[int]int, len(f.companies))
	for k, v := range f.companies {
		ids[k] = v
	}
	return ids, nil
}

func (f *fakeStore) UpsertVacancies(_ context.Context, records []store.VacancyRecord, companyIDs map[int]int) (int, int, error) {
	f.log.add(fmt.Sprintf("upsertVacancies:%d", len(records)))
	if f.upsertVacanciesErr != nil {
		return 0, 0, f.upsertVacanciesErr
	}
	var upserted, skipped int
	for _, rec := range records {
		if _, ok := companyIDs[rec.EmployerHHID]; !ok {
			skipped++
			continue
		}
		f.upserted = append(f.upserted, rec)
		upserted++
	}
	return upserted, skipped, nil
}

func (f *fakeStore) CreateRun(_ context.Context) (uuid.UUID, error) {
	f.log.add("createRun")
	return uuid.New(), nil
}

func (f *fakeStore) CompleteRun(_ context.Context, _ uuid.UUID, result store.RunResult) error {
	f.log.add("completeRun:" + result.Status)
	f.finalResult = &result
	return nil
}

func TestRun_HappyPathSequencing(t *testing.T) {
	log := &callLog{}
	api := &fakeAPI{
		log: log,
		employers: map[int]*hh.Employer{
			42: {ID: 42, Name: "Acme", URL: strPtr("https://hh.ru/employer/42")},
			7:  {ID: 7, Name: "Globex"},
		},
		vacancies: map[int][]hh.Vacancy{
			42: {
				{ID: 1, EmployerID: intPtr(42), Name: "Python Developer",
					Salary:      &hh.Salary{From: intPtr(100), To: intPtr(200), Currency: strPtr("RUR")},
					PublishedAt: "2026-01-15T10:00:00Z"},
				{ID: 2, EmployerID: intPtr(42), Name: "Go Developer",
					Salary: &hh.Salary{To: intPtr(300)}},
			},
			7: {
				{ID: 3, EmployerID: intPtr(7), Name: "Ops Engineer"},
			},
		},
	}
	st := newFakeStore(log)

	l := New(api, st, nil)
	report, err := l.Run(context.Background(), []Seed{{HHID: 42}, {HHID: 7}}, Options{FetchWorkers: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"createRun",
		"employer:42", "employer:7",
		"upsertCompanies:2",
		"companyMap",
		"vacancies:42", "vacancies:7",
		"upsertVacancies:3",
		"completeRun:completed",
	}, log.snapshot())

	assert.Equal(t, 2, report.CompaniesUpserted)
	assert.Equal(t, 3, report.VacanciesFetched)
	assert.Equal(t, 3, report.VacanciesUpserted)
	assert.Equal(t, 0, report.OrphansSkipped)
	assert.Empty(t, report.FailedEmployers)

	// Normalization flowed through to the store records.
	require.Len(t, st.upserted, 3)
	first := st.upserted[0]
	assert.Equal(t, "Python Developer", first.Title)
	assert.Equal(t, 100, *first.SalaryFrom)
	assert.Equal(t, 200, *first.SalaryTo)
	assert.Equal(t, "RUR", *first.Currency)
	require.NotNil(t, first.PublishedAt)
}

func TestRun_EmployerFetchFailsFast(t *testing.T) {
	log := &callLog{}
	upstreamErr := &hh.UpstreamError{StatusCode: 502, Message: "HTTP status 502"}
	api := &fakeAPI{
		log:         log,
		employers:   map[int]*hh.Employer{42: {ID: 42, Name: "Acme"}},
		employerErr: map[int]error{7: upstreamErr},
	}
	st := newFakeStore(log)

	l := New(api, st, nil)
	_, err := l.Run(context.Background(), []Seed{{HHID: 42}, {HHID: 7}}, Options{})
	require.Error(t, err)

	var ue *hh.UpstreamError
	assert.True(t, errors.As(err, &ue))
	assert.Contains(t, err.Error(), "employer 7")

	// No write happened before the abort.
	assert.NotContains(t, log.snapshot(), "upsertCompanies:2")
	assert.Empty(t, st.companies)

	// The run record reflects the failure.
	require.NotNil(t, st.finalResult)
	assert.Equal(t, store.RunStatusFailed, st.finalResult.Status)
	require.NotNil(t, st.finalResult.Error)
	assert.Contains(t, *st.finalResult.Error, "employer 7")
}

func TestRun_VacancyFetchIsBestEffort(t *testing.T) {
	log := &callLog{}
	api := &fakeAPI{
		log: log,
		employers: map[int]*hh.Employer{
			42: {ID: 42, Name: "Acme"},
			7:  {ID: 7, Name: "Globex"},
		},
		vacancies: map[int][]hh.Vacancy{
			7: {{ID: 3, EmployerID: intPtr(7), Name: "Ops Engineer"}},
		},
		vacanciesErr: map[int]error{
			42: &hh.UpstreamError{StatusCode: 429, Message: "HTTP status 429"},
		},
	}
	st := newFakeStore(log)

	l := New(api, st, nil)
	report, err := l.Run(context.Background(), []Seed{{HHID: 42}, {HHID: 7}}, Options{FetchWorkers: 1})
	require.NoError(t, err)

	require.Len(t, report.FailedEmployers, 1)
	assert.Equal(t, 42, report.FailedEmployers[0].HHID)

	// The healthy employer's vacancies still landed.
	assert.Equal(t, 1, report.VacanciesUpserted)
	require.Len(t, st.upserted, 1)
	assert.Equal(t, "Ops Engineer", st.upserted[0].Title)

	require.NotNil(t, st.finalResult)
	assert.Equal(t, store.RunStatusCompleted, st.finalResult.Status)
}

func TestRun_OrphansAreCountedNotFatal(t *testing.T) {
	log := &callLog{}
	api := &fakeAPI{
		log:       log,
		employers: map[int]*hh.Employer{42: {ID: 42, Name: "Acme"}},
		vacancies: map[int][]hh.Vacancy{
			42: {
				{ID: 1, EmployerID: intPtr(42), Name: "Owned"},
				{ID: 2, EmployerID: intPtr(9999), Name: "Unknown Employer"},
				{ID: 3, Name: "No Employer At All"},
			},
		},
	}
	st := newFakeStore(log)

	l := New(api, st, nil)
	report, err := l.Run(context.Background(), []Seed{{HHID: 42}}, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.VacanciesFetched)
	assert.Equal(t, 1, report.VacanciesUpserted)
	assert.Equal(t, 2, report.OrphansSkipped)
	require.Len(t, st.upserted, 1)
	assert.Equal(t, "Owned", st.upserted[0].Title)
}

func TestRun_ParallelFetchPreservesSeedOrder(t *testing.T) {
	log := &callLog{}
	api := &fakeAPI{
		log: log,
		employers: map[int]*hh.Employer{
			1: {ID: 1, Name: "A"},
			2: {ID: 2, Name: "B"},
			3: {ID: 3, Name: "C"},
		},
		vacancies: map[int][]hh.Vacancy{
			1: {{ID: 10, EmployerID: intPtr(1), Name: "A-1"}},
			2: {{ID: 20, EmployerID: intPtr(2), Name: "B-1"}},
			3: {{ID: 30, EmployerID: intPtr(3), Name: "C-1"}},
		},
	}
	st := newFakeStore(log)

	l := New(api, st, nil)
	report, err := l.Run(context.Background(),
		[]Seed{{HHID: 1}, {HHID: 2}, {HHID: 3}},
		Options{FetchWorkers: 3},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, report.VacanciesUpserted)

	// Regardless of fetch interleaving, records arrive in seed order.
	require.Len(t, st.upserted, 3)
	assert.Equal(t, "A-1", st.upserted[0].Title)
	assert.Equal(t, "B-1", st.upserted[1].Title)
	assert.Equal(t, "C-1", st.upserted[2].Title)
}

func TestRun_StoreFailurePropagates(t *testing.T) {
	log := &callLog{}
	api := &fakeAPI{
		log:       log,
		employers: map[int]*hh.Employer{42: {ID: 42, Name: "Acme"}},
	}
	st := newFakeStore(log)
	st.upsertCompaniesErr = errors.New("constraint violation")

	l := New(api, st, nil)
	_, err := l.Run(context.Background(), []Seed{{HHID: 42}}, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upserting companies")

	require.NotNil(t, st.finalResult)
	assert.Equal(t, store.RunStatusFailed, st.finalResult.Status)
}
