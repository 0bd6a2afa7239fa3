package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config holds application configuration
type Config struct {
	DB             DBConfig
	Server         ServerConfig
	Sources        SourcesConfig
	Collector      CollectorConfig
	MigrationsPath string
}

// DBType represents database type
type DBType string

const (
	DBTypePostgreSQL DBType = "postgres"
	DBTypeSQLite     DBType = "sqlite"
	DBTypeMemory     DBType = "memory"
)

// DBConfig holds database configuration
type DBConfig struct {
	Type     DBType
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Path     string
}

// SourcesConfig holds credentials and endpoints of the external data sources
type SourcesConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	RapidAPIKey        string
	AeroDataBoxBaseURL string
	WikipediaBaseURL   string
	HTTPTimeout        time.Duration
	// BreakerFailures is the number of consecutive failures after which
	// calls to a source are short-circuited.
	BreakerFailures int
}

// CollectorConfig holds settings of the collection runs
type CollectorConfig struct {
	ForecastUpto int
	Cities       []string
	CitiesFile   string
	Schedule     string
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
}

// DSN returns the database connection string
func (c DBConfig) DSN() string {
	switch c.Type {
	case DBTypeMemory:
		if c.Name != "" && c.Name != "gans" {
			return fmt.Sprintf("file:%s?mode=memory&cache=shared", c.Name)
		}
		return "file::memory:?cache=shared"
	case DBTypeSQLite:
		return fmt.Sprintf("file:%s?_foreign_keys=on", c.Path)
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}

// IsMemory returns true if using in-memory database
func (c DBConfig) IsMemory() bool {
	return c.Type == DBTypeMemory
}

// IsSQLite returns true for both the file and the in-memory SQLite flavours
func (c DBConfig) IsSQLite() bool {
	return c.Type == DBTypeMemory || c.Type == DBTypeSQLite
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbType := DBType(getEnv("DB_TYPE", "sqlite"))
	if dbType != DBTypePostgreSQL && dbType != DBTypeMemory && dbType != DBTypeSQLite {
		dbType = DBTypeSQLite
	}

	timeout, err := time.ParseDuration(getEnv("HTTP_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}

	schedule := getEnv("REFRESH_SCHEDULE", "5 */3 * * *")
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_SCHEDULE: %w", err)
	}

	breakerFailures := getEnvAsInt("SOURCE_BREAKER_FAILURES", 5)
	if breakerFailures < 0 {
		return nil, fmt.Errorf("invalid SOURCE_BREAKER_FAILURES: %d is negative", breakerFailures)
	}

	config := &Config{
		DB: DBConfig{
			Type:     dbType,
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "gans"),
			Password: getEnv("DB_PASSWORD", "gans_password"),
			Name:     getEnv("DB_NAME", "gans"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			Path:     getEnv("DB_PATH", "gans.db"),
		},
		Server: ServerConfig{
			Port: getEnv("APP_PORT", "8080"),
		},
		Sources: SourcesConfig{
			OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
			OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			RapidAPIKey:        os.Getenv("RAPIDAPI_KEY"),
			AeroDataBoxBaseURL: getEnv("AERODATABOX_BASE_URL", "https://aerodatabox.p.rapidapi.com"),
			WikipediaBaseURL:   getEnv("WIKIPEDIA_BASE_URL", "https://en.wikipedia.org/wiki"),
			HTTPTimeout:        timeout,
			BreakerFailures:    breakerFailures,
		},
		Collector: CollectorConfig{
			ForecastUpto: getEnvAsInt("FORECAST_UPTO", 2),
			Cities:       getEnvAsSlice("CITIES"),
			CitiesFile:   os.Getenv("CITIES_FILE"),
			Schedule:     schedule,
		},
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
