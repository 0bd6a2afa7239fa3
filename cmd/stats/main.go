package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/database"
	"github.com/alexivanou/gans/internal/stats"
	"github.com/fatih/color"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := database.Connect(context.Background(), cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// an in-memory database starts empty, give it the tables to count
	if cfg.DB.IsMemory() {
		if err := database.Migrate(db, cfg.DB, cfg.MigrationsPath); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	logger.Info("Collecting statistics...", zap.String("db_type", string(cfg.DB.Type)))

	statistics, err := stats.NewCollector(db, cfg.DB).Collect(context.Background())
	if err != nil {
		logger.Fatal("Failed to collect statistics", zap.Error(err))
	}

	outputFormat := os.Getenv("OUTPUT_FORMAT")
	if outputFormat == "" {
		outputFormat = "json"
	}

	switch outputFormat {
	case "json":
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(statistics); err != nil {
			logger.Fatal("Failed to encode statistics", zap.Error(err))
		}
	case "text", "human":
		printHumanReadable(statistics)
	default:
		logger.Fatal("Unknown output format", zap.String("format", outputFormat))
	}
}

func printHumanReadable(s *stats.Stats) {
	heading := color.New(color.Bold, color.FgCyan)

	heading.Println("=== Collector Statistics ===")
	fmt.Printf("Timestamp: %s\n\n", s.Timestamp.Format("2006-01-02 15:04:05"))

	heading.Println("--- Database ---")
	fmt.Printf("Type:                    %s\n", s.Database.Type)
	fmt.Printf("Total rows:              %d\n", s.Database.TotalRecords)
	if s.Database.SizeBytes > 0 {
		fmt.Printf("Size:                    %s\n", formatBytes(uint64(s.Database.SizeBytes)))
	}
	if s.Database.CitiesWithoutAirports > 0 {
		color.Yellow("Cities without airports: %d", s.Database.CitiesWithoutAirports)
	} else {
		fmt.Printf("Cities without airports: %d\n", s.Database.CitiesWithoutAirports)
	}
	fmt.Println()

	for _, ts := range s.Database.TableStats {
		rows := fmt.Sprintf("%10d rows", ts.RowCount)
		if ts.RowCount == 0 {
			rows = color.YellowString(rows)
		} else {
			rows = color.GreenString(rows)
		}
		fmt.Printf("  %-12s %s", ts.Name, rows)
		if ts.SizeBytes > 0 {
			fmt.Printf(" (%s)", formatBytes(uint64(ts.SizeBytes)))
		}
		fmt.Println()
	}
	fmt.Println()

	heading.Println("--- Runtime ---")
	fmt.Printf("Allocated:   %s\n", formatBytes(s.Memory.Alloc))
	fmt.Printf("Goroutines:  %d\n", s.Runtime.NumGoroutines)
}

func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
