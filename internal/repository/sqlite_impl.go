package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alexivanou/gans/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

type sqliteCityRepository struct {
	db *sqlx.DB
}

func (r *sqliteCityRepository) GetCityByName(ctx context.Context, name string) (*model.City, error) {
	var city model.City
	if err := r.db.GetContext(ctx, &city, "SELECT city_id, city FROM cities WHERE city = ?", name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &city, nil
}

func (r *sqliteCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	var cities []model.City
	if err := r.db.SelectContext(ctx, &cities, "SELECT city_id, city FROM cities ORDER BY city_id"); err != nil {
		return nil, err
	}
	return cities, nil
}

func (r *sqliteCityRepository) GetGeo(ctx context.Context, cityID int64) (*model.Geo, error) {
	var geo model.Geo
	q := "SELECT city_id, latitude, longitude, country, tz FROM geo WHERE city_id = ?"
	if err := r.db.GetContext(ctx, &geo, q, cityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &geo, nil
}

func (r *sqliteCityRepository) ListAirports(ctx context.Context, cityID int64) ([]model.Airport, error) {
	var airports []model.Airport
	q := "SELECT city_id, icao FROM airports WHERE city_id = ? ORDER BY airport_id"
	if err := r.db.SelectContext(ctx, &airports, q, cityID); err != nil {
		return nil, err
	}
	return airports, nil
}

func (r *sqliteCityRepository) CreateCity(ctx context.Context, p model.CityProfile) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "INSERT INTO cities (city) VALUES (?)", p.Name)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ErrCityExists, p.Name)
		}
		return 0, err
	}
	cityID, err := res.LastInsertId()
	if err != nil {
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

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

type sqlitePopulationRepository struct {
	db *sqlx.DB
}

func (r *sqlitePopulationRepository) InsertPopulation(ctx context.Context, p model.Population) error {
	_, err := r.db.NamedExecContext(ctx, insertPopulationQuery, p)
	return err
}

func (r *sqlitePopulationRepository) LatestPopulation(ctx context.Context, cityID int64) (*model.Population, error) {
	var p model.Population
	q := `SELECT city_id, population, year_retrieved FROM population
		WHERE city_id = ? ORDER BY population_id DESC LIMIT 1`
	if err := r.db.GetContext(ctx, &p, q, cityID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

type sqliteWeatherRepository struct {
	db *sqlx.DB
}

func (r *sqliteWeatherRepository) InsertForecasts(ctx context.Context, forecasts []model.Forecast) error {
	// 10 params per row keeps a batch of 50 well below SQLite's variable limit
	return inChunks(forecasts, 50, func(batch []model.Forecast) error {
		_, err := r.db.NamedExecContext(ctx, insertForecastQuery, batch)
		return err
	})
}

type sqliteFlightRepository struct {
	db *sqlx.DB
}

func (r *sqliteFlightRepository) InsertArrivals(ctx context.Context, arrivals []model.Arrival) error {
	return inChunks(arrivals, 100, func(batch []model.Arrival) error {
		_, err := r.db.NamedExecContext(ctx, insertArrivalQuery, batch)
		return err
	})
}
