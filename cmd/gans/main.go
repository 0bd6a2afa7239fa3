package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexivanou/gans/internal/collector"
	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/database"
	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/repository"
	"github.com/alexivanou/gans/internal/seeder"
	"github.com/alexivanou/gans/internal/service"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

// populationToken as the only argument refreshes the population of every stored city
const populationToken = "_population"

func main() {
	file := flag.String("file", "", "Read additional city names from a .txt or .zip file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [-file cities.txt] [city ...]\n       %s %s\n", os.Args[0], os.Args[0], populationToken)
		flag.PrintDefaults()
	}
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DB, cfg.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	svc := service.NewService(repos, collector.NewSources(cfg.Sources, logger), cfg.Collector.ForecastUpto, logger)

	args := flag.Args()
	if len(args) == 1 && args[0] == populationToken && *file == "" {
		n, err := svc.RefreshPopulation(ctx)
		if err != nil {
			logger.Fatal("Population refresh failed", zap.Error(err))
		}
		color.Green("Population refreshed for %d cities", n)
		return
	}

	cities := args
	if *file != "" {
		fromFile, err := seeder.ParseFile(*file)
		if err != nil {
			logger.Fatal("Failed to read city list", zap.String("file", *file), zap.Error(err))
		}
		cities = seeder.Merge(cities, fromFile)
	}
	if len(cities) == 0 {
		cities = cfg.Collector.Cities
	}
	if len(cities) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if missing := collector.MissingKeys(cfg.Sources); len(missing) > 0 {
		logger.Warn("Source credentials missing, lookups will fail", zap.Strings("keys", missing))
	}

	report := svc.Run(ctx, cities)
	printReport(report)
	if report.Failed() > 0 {
		os.Exit(1)
	}
}

func printReport(report model.RunReport) {
	bold := color.New(color.Bold)
	bold.Printf("Run %s (%s)\n", report.RunID, report.Started.Format("2006-01-02 15:04:05"))

	for _, r := range report.Results {
		var status string
		switch r.Outcome {
		case model.OutcomeOnboarded:
			status = color.GreenString("%-9s", r.Outcome)
		case model.OutcomeExisting:
			status = color.CyanString("%-9s", r.Outcome)
		default:
			status = color.RedString("%-9s", r.Outcome)
		}

		fmt.Printf("  %-25s %s", r.City, status)
		if r.Refreshed {
			fmt.Printf("  %d forecasts, %d arrivals", r.Forecasts, r.Arrivals)
		}
		if r.Err != nil {
			fmt.Printf("  %s", color.YellowString(r.Err.Error()))
		}
		fmt.Println()
	}

	if failed := report.Failed(); failed > 0 {
		color.Red("%d of %d cities failed", failed, len(report.Results))
	} else {
		color.Green("All %d cities processed", len(report.Results))
	}
}
