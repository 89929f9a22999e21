package main

import (
	"testing"

	"github.com/jonathan/vacancy-warehouse/internal/store"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		name     string
		view     store.VacancyView
		expected string
	}{
		{
			"no salary",
			store.VacancyView{},
			"salary not stated",
		},
		{
			"full range with currency",
			store.VacancyView{SalaryFrom: intPtr(100), SalaryTo: intPtr(200), Currency: strPtr("RUR")},
			"100–200 RUR",
		},
		{
			"full range without currency",
			store.VacancyView{SalaryFrom: intPtr(100), SalaryTo: intPtr(200)},
			"100–200",
		},
		{
			"lower bound only",
			store.VacancyView{SalaryFrom: intPtr(150), Currency: strPtr("EUR")},
			"from 150 EUR",
		},
		{
			"upper bound only",
			store.VacancyView{SalaryTo: intPtr(300)},
			"up to 300",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSalary(tt.view); got != tt.expected {
				t.Errorf("formatSalary() = %q, expected %q", got, tt.expected)
			}
		})
	}
}
