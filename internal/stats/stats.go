package stats

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/model"
	"github.com/jmoiron/sqlx"
)

// Tables lists the tables written by the collector, parents first
var Tables = []string{"cities", "geo", "population", "airports", "weather", "flights"}

// Stats is a snapshot of the process and the collected data
type Stats struct {
	Timestamp time.Time     `json:"timestamp"`
	Memory    MemoryStats   `json:"memory"`
	Database  DatabaseStats `json:"database"`
	Runtime   RuntimeStats  `json:"runtime"`
	LastRun   *RunSummary   `json:"last_run,omitempty"`
}

type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"num_gc"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapInuse  uint64 `json:"heap_inuse"`
}

type DatabaseStats struct {
	Type         string      `json:"type"`
	TotalRecords int64       `json:"total_records"`
	SizeBytes    int64       `json:"size_bytes"`
	TableStats   []TableStat `json:"table_stats"`
	// CitiesWithoutAirports counts cities whose refresh skips flights
	CitiesWithoutAirports int `json:"cities_without_airports"`
}

type TableStat struct {
	Name      string `json:"name"`
	RowCount  int64  `json:"row_count"`
	SizeBytes int64  `json:"size_bytes,omitempty"`
}

type RuntimeStats struct {
	NumGoroutines int   `json:"num_goroutines"`
	NumCPU        int   `json:"num_cpu"`
	UptimeSeconds int64 `json:"uptime_seconds"`
}

// RunSummary describes the most recent collection run
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Started   time.Time `json:"started"`
	Cities    int       `json:"cities"`
	Onboarded int       `json:"onboarded"`
	Failed    int       `json:"failed"`
	Forecasts int       `json:"forecasts"`
	Arrivals  int       `json:"arrivals"`
}

// Summarize condenses a run report
func Summarize(report model.RunReport) RunSummary {
	summary := RunSummary{
		RunID:   report.RunID,
		Started: report.Started,
		Cities:  len(report.Results),
		Failed:  report.Failed(),
	}
	for _, r := range report.Results {
		if r.Outcome == model.OutcomeOnboarded {
			summary.Onboarded++
		}
		summary.Forecasts += r.Forecasts
		summary.Arrivals += r.Arrivals
	}
	return summary
}

// Collector gathers Stats for one database
type Collector struct {
	db        *sqlx.DB
	config    config.DBConfig
	startTime time.Time

	mu        sync.RWMutex
	cachedMem *MemoryStats
	cacheTime time.Time
	lastRun   *RunSummary
}

var memStatsCacheDuration = 5 * time.Second

func NewCollector(db *sqlx.DB, cfg config.DBConfig) *Collector {
	return &Collector{
		db:        db,
		config:    cfg,
		startTime: time.Now(),
	}
}

// RecordRun remembers report as the latest run
func (c *Collector) RecordRun(report model.RunReport) {
	summary := Summarize(report)
	c.mu.Lock()
	c.lastRun = &summary
	c.mu.Unlock()
}

func (c *Collector) Collect(ctx context.Context) (*Stats, error) {
	dbStats, err := c.collectDatabaseStats(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Timestamp: time.Now(),
		Memory:    c.collectMemoryStats(),
		Database:  *dbStats,
		Runtime:   c.collectRuntimeStats(),
	}

	c.mu.RLock()
	if c.lastRun != nil {
		last := *c.lastRun
		stats.LastRun = &last
	}
	c.mu.RUnlock()

	return stats, nil
}

func (c *Collector) collectMemoryStats() MemoryStats {
	c.mu.RLock()
	if c.cachedMem != nil && time.Since(c.cacheTime) < memStatsCacheDuration {
		mem := *c.cachedMem
		c.mu.RUnlock()
		return mem
	}
	c.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	mem := MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		HeapAlloc:  m.HeapAlloc,
		HeapInuse:  m.HeapInuse,
	}

	c.mu.Lock()
	c.cachedMem = &mem
	c.cacheTime = time.Now()
	c.mu.Unlock()

	return mem
}

func (c *Collector) collectDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{
		Type: string(c.config.Type),
	}

	if totalSize, err := c.databaseSize(ctx); err == nil {
		stats.SizeBytes = totalSize
	}

	for _, table := range Tables {
		stat, err := c.tableStat(ctx, table)
		if err != nil {
			// not migrated yet
			continue
		}
		stats.TableStats = append(stats.TableStats, *stat)
		stats.TotalRecords += stat.RowCount
	}

	if n, err := c.citiesWithoutAirports(ctx); err == nil {
		stats.CitiesWithoutAirports = n
	}

	return stats, nil
}

func (c *Collector) databaseSize(ctx context.Context) (int64, error) {
	query := "SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()"
	if c.config.Type == config.DBTypePostgreSQL {
		query = "SELECT pg_database_size(current_database())"
	}

	var size int64
	if err := c.db.GetContext(ctx, &size, query); err != nil {
		return 0, err
	}
	return size, nil
}

func (c *Collector) citiesWithoutAirports(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM cities c
		WHERE NOT EXISTS (SELECT 1 FROM airports a WHERE a.city_id = c.city_id)`

	var count int
	if err := c.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("failed to count cities without airports: %w", err)
	}
	return count, nil
}

func (c *Collector) tableStat(ctx context.Context, table string) (*TableStat, error) {
	stat := &TableStat{Name: table}
	if err := c.db.GetContext(ctx, &stat.RowCount, "SELECT COUNT(*) FROM "+table); err != nil {
		return nil, err
	}

	// sizes are best effort; dbstat is missing from most sqlite builds
	var size int64
	if c.config.Type == config.DBTypePostgreSQL {
		if err := c.db.GetContext(ctx, &size, `SELECT COALESCE(pg_total_relation_size($1::regclass), 0)`, table); err == nil {
			stat.SizeBytes = size
		}
	} else if err := c.db.GetContext(ctx, &size, `SELECT COALESCE(SUM(pgsize), 0) FROM dbstat WHERE name = ?`, table); err == nil {
		stat.SizeBytes = size
	}

	return stat, nil
}

func (c *Collector) collectRuntimeStats() RuntimeStats {
	return RuntimeStats{
		NumGoroutines: runtime.NumGoroutine(),
		NumCPU:        runtime.NumCPU(),
		UptimeSeconds: int64(time.Since(c.startTime).Seconds()),
	}
}
