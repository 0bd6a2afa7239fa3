package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexivanou/gans/internal/api"
	"github.com/alexivanou/gans/internal/collector"
	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/database"
	"github.com/alexivanou/gans/internal/repository"
	"github.com/alexivanou/gans/internal/scheduler"
	"github.com/alexivanou/gans/internal/seeder"
	"github.com/alexivanou/gans/internal/service"
	"github.com/alexivanou/gans/internal/stats"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to database", zap.String("type", string(cfg.DB.Type)))

	if err := database.Migrate(db, cfg.DB, cfg.MigrationsPath); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	cities := cfg.Collector.Cities
	if cfg.Collector.CitiesFile != "" {
		fromFile, err := seeder.ParseFile(cfg.Collector.CitiesFile)
		if err != nil {
			logger.Fatal("Failed to read city list", zap.String("file", cfg.Collector.CitiesFile), zap.Error(err))
		}
		cities = seeder.Merge(cities, fromFile)
	}

	empty, err := repository.IsDatabaseEmpty(ctx, db)
	if err != nil {
		logger.Warn("Failed to check if database is empty", zap.Error(err))
	} else if empty && len(cities) == 0 {
		logger.Warn("No city stored and none configured; set CITIES or CITIES_FILE or POST /api/v1/runs")
	}

	if missing := collector.MissingKeys(cfg.Sources); len(missing) > 0 {
		logger.Warn("Source credentials missing, lookups will fail", zap.Strings("keys", missing))
	}

	repos := repository.NewRepositories(db, cfg.DB.Type)
	svc := service.NewService(repos, collector.NewSources(cfg.Sources, logger), cfg.Collector.ForecastUpto, logger)
	statsCollector := stats.NewCollector(db, cfg.DB)

	sched := scheduler.New(cfg.Collector.Schedule, cities, &collector.RecordingRunner{
		Runner:   svc,
		Recorder: statsCollector,
	}, logger)

	if len(cities) > 0 {
		go func() {
			report := sched.RunNow(ctx)
			logger.Info("Initial run finished",
				zap.String("run_id", report.RunID),
				zap.Int("cities", len(report.Results)),
				zap.Int("failed", report.Failed()),
			)
		}()
	}

	if err := sched.Start(ctx); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      api.NewRouter(svc, statsCollector, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Server exited")
}
