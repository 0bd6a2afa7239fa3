package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const pgUndefinedTable = "42P01"

// ErrCityExists is returned when a city with the same name is already stored
var ErrCityExists = errors.New("city already exists")

// CityRepository defines operations for cities and their static facts
type CityRepository interface {
	GetCityByName(ctx context.Context, name string) (*model.City, error)
	ListCities(ctx context.Context) ([]model.City, error)
	GetGeo(ctx context.Context, cityID int64) (*model.Geo, error)
	ListAirports(ctx context.Context, cityID int64) ([]model.Airport, error)
	// CreateCity stores the city together with its geo, population and
	// airport rows in one transaction and returns the assigned city id.
	CreateCity(ctx context.Context, profile model.CityProfile) (int64, error)
}

// PopulationRepository defines operations for the population history
type PopulationRepository interface {
	InsertPopulation(ctx context.Context, p model.Population) error
	LatestPopulation(ctx context.Context, cityID int64) (*model.Population, error)
}

// WeatherRepository defines operations for forecast rows
type WeatherRepository interface {
	InsertForecasts(ctx context.Context, forecasts []model.Forecast) error
}

// FlightRepository defines operations for arrival rows
type FlightRepository interface {
	InsertArrivals(ctx context.Context, arrivals []model.Arrival) error
}

// Container holds all repositories
type Container struct {
	City       CityRepository
	Population PopulationRepository
	Weather    WeatherRepository
	Flight     FlightRepository
}

// NewRepositories creates repository implementations based on DB type
func NewRepositories(db *sqlx.DB, dbType config.DBType) *Container {
	if dbType == config.DBTypePostgreSQL {
		return &Container{
			City:       &pgCityRepository{db: db},
			Population: &pgPopulationRepository{db: db},
			Weather:    &pgWeatherRepository{db: db},
			Flight:     &pgFlightRepository{db: db},
		}
	}

	// Default to SQLite
	return &Container{
		City:       &sqliteCityRepository{db: db},
		Population: &sqlitePopulationRepository{db: db},
		Weather:    &sqliteWeatherRepository{db: db},
		Flight:     &sqliteFlightRepository{db: db},
	}
}

// IsDatabaseEmpty reports whether no city has been on-boarded yet. A missing
// cities table counts as empty; any other failure is returned.
func IsDatabaseEmpty(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM cities"
	err := db.GetContext(ctx, &count, query)
	if err != nil {
		if isMissingTable(err) {
			return true, nil
		}
		return false, fmt.Errorf("failed to count cities: %w", err)
	}
	return count == 0, nil
}

func isMissingTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUndefinedTable
	}
	return strings.Contains(err.Error(), "no such table")
}

func airportRows(cityID int64, icaos []string) []model.Airport {
	rows := make([]model.Airport, 0, len(icaos))
	for _, icao := range icaos {
		rows = append(rows, model.Airport{CityID: cityID, ICAO: icao})
	}
	return rows
}

// inChunks calls fn with consecutive slices of at most size items
func inChunks[T any](items []T, size int, fn func(batch []T) error) error {
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		if err := fn(items[i:end]); err != nil {
			return err
		}
	}
	return nil
}

const (
	insertGeoQuery = `INSERT INTO geo (city_id, latitude, longitude, country, tz)
		VALUES (:city_id, :latitude, :longitude, :country, :tz)`

	insertPopulationQuery = `INSERT INTO population (city_id, population, year_retrieved)
		VALUES (:city_id, :population, :year_retrieved)`

	insertAirportQuery = `INSERT INTO airports (city_id, icao) VALUES (:city_id, :icao)`

	insertForecastQuery = `INSERT INTO weather (city_id, timestamp, temperature, feeled_temperature,
		humidity, overall, clouds, windspeed, rain, visibility)
		VALUES (:city_id, :timestamp, :temperature, :feeled_temperature,
		:humidity, :overall, :clouds, :windspeed, :rain, :visibility)`

	insertArrivalQuery = `INSERT INTO flights (icao, arrival, from_where) VALUES (:icao, :arrival, :from_where)`
)

// insertDependents writes the rows that reference a freshly inserted city
func insertDependents(ctx context.Context, tx *sqlx.Tx, cityID int64, p model.CityProfile) error {
	geo := p.Geo
	geo.CityID = cityID
	if _, err := tx.NamedExecContext(ctx, insertGeoQuery, geo); err != nil {
		return err
	}

	pop := p.Population
	pop.CityID = cityID
	if _, err := tx.NamedExecContext(ctx, insertPopulationQuery, pop); err != nil {
		return err
	}

	if len(p.Airports) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, insertAirportQuery, airportRows(cityID, p.Airports))
	return err
}
