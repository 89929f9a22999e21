// Package hh is a read-only client for the HeadHunter (hh.ru) public API.
// It covers exactly the two calls the loader needs: a single employer
// lookup and a paginated vacancy listing per employer.
package hh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the production HH API endpoint.
const DefaultBaseURL = "https://api.hh.ru"

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "vacancy-warehouse/1.0"
)

// ErrMissingID reports a payload whose required id field is absent or
// not numeric.
var ErrMissingID = errors.New("missing required id field")

// UpstreamError represents a failed HH API call: transport failure,
// non-2xx status, or a body that does not decode.
type UpstreamError struct {
	URL        string
	StatusCode int
	Message    string
	Cause      error
}

func (e *UpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hh api error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("hh api error for %s: %s", e.URL, e.Message)
}

func (e *UpstreamError) Unwrap() error {
	return e.Cause
}

// Client issues requests against the HH API with a shared HTTP client.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient constructs a client. Empty arguments select the production
// base URL and the default user agent.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: defaultTimeout},
	}
}

// VacancyOptions configures a paginated vacancy listing. Area and
// OnlyWithSalary are passed through only when set; leaving them unset
// must not filter anything.
type VacancyOptions struct {
	PerPage        int // items per page, defaults to 100
	MaxPages       int // hard page cap, defaults to 20
	Area           *int
	OnlyWithSalary bool
}

func (o VacancyOptions) withDefaults() VacancyOptions {
	if o.PerPage <= 0 {
		o.PerPage = 100
	}
	if o.MaxPages <= 0 {
		o.MaxPages = 20
	}
	return o
}

// Employer fetches a single employer record by its HH id.
func (c *Client) Employer(ctx context.Context, employerID int) (*Employer, error) {
	var payload employerPayload
	endpoint := fmt.Sprintf("%s/employers/%d", c.baseURL, employerID)
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	return payload.toEmployer()
}

// VacanciesByEmployer walks the paginated vacancy listing for one
// employer, concatenating pages in request order. The loop stops when
// the API reports no further pages or when MaxPages is reached,
// whichever comes first.
func (c *Client) VacanciesByEmployer(ctx context.Context, employerID int, opts VacancyOptions) ([]Vacancy, error) {
	opts = opts.withDefaults()

	var all []Vacancy
	for page := 0; page < opts.MaxPages; page++ {
		params := url.Values{}
		params.Set("employer_id", strconv.Itoa(employerID))
		params.Set("per_page", strconv.Itoa(opts.PerPage))
		params.Set("page", strconv.Itoa(page))
		if opts.Area != nil {
			params.Set("area", strconv.Itoa(*opts.Area))
		}
		if opts.OnlyWithSalary {
			params.Set("only_with_salary", "true")
		}

		endpoint := fmt.Sprintf("%s/vacancies?%s", c.baseURL, params.Encode())

		var resp vacanciesPage
		if err := c.getJSON(ctx, endpoint, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			v, err := item.toVacancy()
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page, err)
			}
			all = append(all, *v)
		}

		if page+1 >= resp.Pages {
			break
		}
	}

	return all, nil
}

// getJSON performs a GET request and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &UpstreamError{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{URL: endpoint, Message: "request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{
			URL:        endpoint,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &UpstreamError{URL: endpoint, StatusCode: resp.StatusCode, Message: "malformed JSON body", Cause: err}
	}

	return nil
}
