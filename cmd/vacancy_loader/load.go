package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/vacancy-warehouse/internal/hh"
	"github.com/jonathan/vacancy-warehouse/internal/loader"
	"github.com/jonathan/vacancy-warehouse/internal/logging"
)

// defaultSeeds is the stock set of large HH employers ingested when no
// --seeds flag is given.
var defaultSeeds = []loader.Seed{
	{HHID: 1740, Note: "Yandex"},
	{HHID: 3529, Note: "Sber"},
	{HHID: 80, Note: "Alfa-Bank"},
	{HHID: 78638, Note: "T-Bank"},
	{HHID: 4181, Note: "VK"},
	{HHID: 15478, Note: "Ozon"},
	{HHID: 2180, Note: "Avito"},
	{HHID: 84585, Note: "Kaspersky"},
	{HHID: 87021, Note: "MTS"},
	{HHID: 3776, Note: "Rostelecom"},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch employers and vacancies from hh.ru into the database",
	RunE:  runLoad,
}

var (
	seedIDs        []int
	onlyWithSalary bool
	areaID         int
)

func init() {
	loadCmd.Flags().IntSliceVar(&seedIDs, "seeds", nil, "HH employer ids to ingest (default: stock employer set)")
	loadCmd.Flags().BoolVar(&onlyWithSalary, "only-with-salary", false, "Fetch only vacancies that state a salary")
	loadCmd.Flags().IntVar(&areaID, "area", 0, "Restrict vacancies to an HH area id (0 = no filter)")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, cfg, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	seeds := defaultSeeds
	if len(seedIDs) > 0 {
		seeds = make([]loader.Seed, 0, len(seedIDs))
		for _, id := range seedIDs {
			seeds = append(seeds, loader.Seed{HHID: id})
		}
	}

	opts := loader.Options{
		PerPage:        cfg.PerPage,
		MaxPages:       cfg.MaxPages,
		OnlyWithSalary: onlyWithSalary,
		FetchWorkers:   cfg.FetchWorkers,
	}
	if areaID > 0 {
		opts.Area = &areaID
	}

	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	client := hh.NewClient(cfg.HHBaseURL, cfg.UserAgent)
	report, err := loader.New(client, s, log).Run(ctx, seeds, opts)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Run %s completed\n", report.RunID)
	fmt.Fprintf(os.Stdout, "  companies upserted: %d\n", report.CompaniesUpserted)
	fmt.Fprintf(os.Stdout, "  vacancies fetched:  %d\n", report.VacanciesFetched)
	fmt.Fprintf(os.Stdout, "  vacancies upserted: %d\n", report.VacanciesUpserted)
	fmt.Fprintf(os.Stdout, "  orphans skipped:    %d\n", report.OrphansSkipped)
	for _, f := range report.FailedEmployers {
		fmt.Fprintf(os.Stdout, "  employer %d failed: %v\n", f.HHID, f.Err)
	}

	return nil
}
