package hh

import (
	"fmt"
	"strconv"
)

// Employer is one employer record from the HH API with its required
// fields validated. URL prefers alternate_url and falls back to url.
type Employer struct {
	ID   int
	Name string
	URL  *string
}

// Salary mirrors the nullable salary object on a vacancy. Fields are
// carried verbatim; no range validation or currency conversion happens here.
type Salary struct {
	From     *int    `json:"from"`
	To       *int    `json:"to"`
	Currency *string `json:"currency"`
}

// Vacancy is one vacancy record from the HH API. EmployerID is nil when
// the payload carries no employer id; such records are dropped downstream.
type Vacancy struct {
	ID           int
	EmployerID   *int
	Name         string
	Salary       *Salary
	AlternateURL *string
	PublishedAt  string
}

// Wire shapes. HH serializes ids as JSON strings.

type employerPayload struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AlternateURL *string `json:"alternate_url"`
	URL          *string `json:"url"`
}

type vacancyPayload struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Employer *struct {
		ID string `json:"id"`
	} `json:"employer"`
	Salary       *Salary `json:"salary"`
	AlternateURL *string `json:"alternate_url"`
	PublishedAt  string  `json:"published_at"`
}

type vacanciesPage struct {
	Items []vacancyPayload `json:"items"`
	Pages int              `json:"pages"`
	Found int              `json:"found"`
}

func (p employerPayload) toEmployer() (*Employer, error) {
	id, err := parseID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("employer payload: %w", err)
	}

	url := p.AlternateURL
	if url == nil {
		url = p.URL
	}

	return &Employer{ID: id, Name: p.Name, URL: url}, nil
}

func (p vacancyPayload) toVacancy() (*Vacancy, error) {
	id, err := parseID(p.ID)
	if err != nil {
		return nil, fmt.Errorf("vacancy payload: %w", err)
	}

	v := &Vacancy{
		ID:           id,
		Name:         p.Name,
		Salary:       p.Salary,
		AlternateURL: p.AlternateURL,
		PublishedAt:  p.PublishedAt,
	}

	// A missing or unparsable employer id leaves EmployerID nil; the
	// record becomes an orphan candidate rather than failing the page.
	if p.Employer != nil {
		if empID, err := parseID(p.Employer.ID); err == nil {
			v.EmployerID = &empID
		}
	}

	return v, nil
}

func parseID(raw string) (int, error) {
	if raw == "" {
		return 0, ErrMissingID
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("non-numeric id %q: %w", raw, ErrMissingID)
	}
	return id, nil
}
