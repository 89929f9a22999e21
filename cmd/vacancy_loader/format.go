package main

import (
	"fmt"
	"strings"

	"github.com/jonathan/vacancy-warehouse/internal/store"
)

// formatSalary renders the salary range of a vacancy for display.
func formatSalary(v store.VacancyView) string {
	if v.SalaryFrom == nil && v.SalaryTo == nil {
		return "salary not stated"
	}

	currency := ""
	if v.Currency != nil {
		currency = *v.Currency
	}

	switch {
	case v.SalaryFrom != nil && v.SalaryTo != nil:
		return strings.TrimSpace(fmt.Sprintf("%d–%d %s", *v.SalaryFrom, *v.SalaryTo, currency))
	case v.SalaryFrom != nil:
		return strings.TrimSpace(fmt.Sprintf("from %d %s", *v.SalaryFrom, currency))
	default:
		return strings.TrimSpace(fmt.Sprintf("up to %d %s", *v.SalaryTo, currency))
	}
}
