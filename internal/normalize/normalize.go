// Package normalize converts raw HH API fields into typed, nullable
// domain values.
package normalize

import (
	"strings"
	"time"

	"github.com/jonathan/vacancy-warehouse/internal/hh"
)

// publishedAtLayouts covers the timestamp shapes HH emits: RFC 3339 and
// the same layout with a colon-less zone offset.
var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// Salary splits a nullable salary object into its three fields. A nil
// object yields all-nil; present fields are carried verbatim, including
// ranges where from > to.
func Salary(raw *hh.Salary) (from, to *int, currency *string) {
	if raw == nil {
		return nil, nil, nil
	}
	return raw.From, raw.To, raw.Currency
}

// PublishedAt parses an ISO-8601 publication timestamp. A trailing 'Z'
// is treated as the +00:00 offset. Empty or unparsable input yields nil
// so that one malformed timestamp never aborts an ingestion run.
func PublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if strings.HasSuffix(raw, "Z") {
		raw = strings.TrimSuffix(raw, "Z") + "+00:00"
	}

	for _, layout := range publishedAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
