package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/vacancy-warehouse/internal/store"
)

const defaultListLimit = 20

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List companies with their vacancy counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		counts, err := s.CompanyVacancyCounts(ctx)
		if err != nil {
			return err
		}
		for _, c := range counts {
			fmt.Fprintf(os.Stdout, "- %s: %d\n", c.Name, c.Vacancies)
		}
		return nil
	},
}

var vacanciesCmd = &cobra.Command{
	Use:   "vacancies",
	Short: "List stored vacancies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		views, err := s.AllVacancies(ctx)
		if err != nil {
			return err
		}
		printVacancies(views, listLimit)
		return nil
	},
}

var avgSalaryCmd = &cobra.Command{
	Use:   "avg-salary",
	Short: "Print the average computed salary across vacancies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		avg, err := s.AverageSalary(ctx)
		if err != nil {
			return err
		}
		if avg == nil {
			fmt.Fprintln(os.Stdout, "No salary data stored")
			return nil
		}
		fmt.Fprintf(os.Stdout, "Average salary: %.2f (currencies not converted)\n", *avg)
		return nil
	},
}

var aboveAverageCmd = &cobra.Command{
	Use:   "above-average",
	Short: "List vacancies whose computed salary is above the average",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		views, err := s.VacanciesAboveAverage(ctx)
		if err != nil {
			return err
		}
		printVacancies(views, listLimit)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Search vacancies by title keyword, case-insensitively",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		views, err := s.VacanciesByKeyword(ctx, args[0])
		if err != nil {
			return err
		}
		printVacancies(views, listLimit)
		return nil
	},
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent ingestion runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, _, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer s.Close()

		runs, err := s.ListRuns(ctx, listLimit)
		if err != nil {
			return err
		}
		for _, r := range runs {
			line := fmt.Sprintf("- %s  %s  started %s  companies=%d vacancies=%d orphans=%d",
				r.ID, r.Status, r.StartedAt.Format("2006-01-02 15:04:05"),
				r.CompaniesUpserted, r.VacanciesUpserted, r.OrphansSkipped)
			if r.Error != nil {
				line += "  error: " + *r.Error
			}
			fmt.Fprintln(os.Stdout, line)
		}
		return nil
	},
}

var listLimit int

func init() {
	for _, cmd := range []*cobra.Command{vacanciesCmd, aboveAverageCmd, searchCmd, runsCmd} {
		cmd.Flags().IntVar(&listLimit, "limit", defaultListLimit, "Maximum rows to print")
	}

	rootCmd.AddCommand(companiesCmd, vacanciesCmd, avgSalaryCmd, aboveAverageCmd, searchCmd, runsCmd)
}

func printVacancies(views []store.VacancyView, limit int) {
	if len(views) == 0 {
		fmt.Fprintln(os.Stdout, "Nothing found")
		return
	}
	for i, v := range views {
		if limit > 0 && i >= limit {
			break
		}
		url := ""
		if v.URL != nil {
			url = *v.URL
		}
		fmt.Fprintf(os.Stdout, "- %s | %s | %s | %s\n", v.CompanyName, v.Title, formatSalary(v), url)
	}
}
