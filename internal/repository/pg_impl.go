package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexivanou/gans/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

// --- PostgreSQL Implementation ---

const pgUniqueViolation = "23505"

type pgCityRepository struct {
	db *sqlx.DB
}

func (r *pgCityRepository) GetCityByName(ctx context.Context, name string) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT city_id, city FROM cities WHERE city = $1", name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *pgCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, "SELECT city_id, city FROM cities ORDER BY city_id"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *pgCityRepository) GetGeo(ctx context.Context, cityID int64) (*model.Geo, error) {
	var geo model.Geo
	q := "SELECT city_id, latitude, longitude, country, tz FROM geo WHERE city_id = $1"
	if err := r.db.GetContext(ctx, &geo, q, cityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &geo, nil
}

func (r *pgCityRepository) ListAirports(ctx context.Context, cityID int64) ([]model.Airport, error) {
	var airports []model.Airport
	q := "SELECT city_id, TRIM(icao) AS icao FROM airports WHERE city_id = $1 ORDER BY airport_id"
	if err := r.db.SelectContext(ctx, &airports, q, cityID); err != nil {
		return nil, err
	}
	return airports, nil
}

func (r *pgCityRepository) CreateCity(ctx context.Context, p model.CityProfile) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var cityID int64
	if err := tx.GetContext(ctx, &cityID, "INSERT INTO cities (city) VALUES ($1) RETURNING city_id", p.Name); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrCityExists, p.Name)
		}
		return 0, err
	}

	if err := insertDependents(ctx, tx, cityID, p); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return cityID, nil
}

type pgPopulationRepository struct {
	db *sqlx.DB
}

func (r *pgPopulationRepository) InsertPopulation(ctx context.Context, p model.Population) error {
	_, err := r.db.NamedExecContext(ctx, insertPopulationQuery, p)
	return err
}

func (r *pgPopulationRepository) LatestPopulation(ctx context.Context, cityID int64) (*model.Population, error) {
	var p model.Population
	q := `SELECT city_id, population, year_retrieved FROM population
		WHERE city_id = $1 ORDER BY population_id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, q, cityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

type pgWeatherRepository struct {
	db *sqlx.DB
}

func (r *pgWeatherRepository) InsertForecasts(ctx context.Context, forecasts []model.Forecast) error {
	// Chunking to avoid parameter limit issues (max 65535 parameters)
	return inChunks(forecasts, 2000, func(batch []model.Forecast) error {
		_, err := r.db.NamedExecContext(ctx, insertForecastQuery, batch)
		return err
	})
}

type pgFlightRepository struct {
	db *sqlx.DB
}

func (r *pgFlightRepository) InsertArrivals(ctx context.Context, arrivals []model.Arrival) error {
	return inChunks(arrivals, 5000, func(batch []model.Arrival) error {
		_, err := r.db.NamedExecContext(ctx, insertArrivalQuery, batch)
		return err
	})
}
