package service

import (
	"context"
	"time"

	"github.com/alexivanou/gans/internal/model"
	"github.com/stretchr/testify/mock"
)

// MockCityRepository implements repository.CityRepository interface
type MockCityRepository struct {
	mock.Mock
}

func (m *MockCityRepository) GetCityByName(ctx context.Context, name string) (*model.City, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.City), args.Error(1)
}

func (m *MockCityRepository) ListCities(ctx context.Context) ([]model.City, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.City), args.Error(1)
}

func (m *MockCityRepository) GetGeo(ctx context.Context, cityID int64) (*model.Geo, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Geo), args.Error(1)
}

func (m *MockCityRepository) ListAirports(ctx context.Context, cityID int64) ([]model.Airport, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Airport), args.Error(1)
}

func (m *MockCityRepository) CreateCity(ctx context.Context, profile model.CityProfile) (int64, error) {
	args := m.Called(ctx, profile)
	return args.Get(0).(int64), args.Error(1)
}

// MockPopulationRepository implements repository.PopulationRepository interface
type MockPopulationRepository struct {
	mock.Mock
}

func (m *MockPopulationRepository) InsertPopulation(ctx context.Context, p model.Population) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPopulationRepository) LatestPopulation(ctx context.Context, cityID int64) (*model.Population, error) {
	args := m.Called(ctx, cityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Population), args.Error(1)
}

type MockWeatherRepository struct {
	mock.Mock
}

func (m *MockWeatherRepository) InsertForecasts(ctx context.Context, forecasts []model.Forecast) error {
	args := m.Called(ctx, forecasts)
	return args.Error(0)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) InsertArrivals(ctx context.Context, arrivals []model.Arrival) error {
	args := m.Called(ctx, arrivals)
	return args.Error(0)
}

type MockPlaceSource struct {
	mock.Mock
}

func (m *MockPlaceSource) LookupPlace(ctx context.Context, name string) (model.GeoFacts, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(model.GeoFacts), args.Error(1)
}

func (m *MockPlaceSource) LookupPopulation(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

type MockAirportLocator struct {
	mock.Mock
}

func (m *MockAirportLocator) NearbyAirports(ctx context.Context, lat, lon float64) (model.AirportSearch, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(model.AirportSearch), args.Error(1)
}

type MockForecastSource struct {
	mock.Mock
}

func (m *MockForecastSource) Forecasts(ctx context.Context, lat, lon float64, upto int) ([]model.Forecast, error) {
	args := m.Called(ctx, lat, lon, upto)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Forecast), args.Error(1)
}

type MockArrivalSource struct {
	mock.Mock
}

func (m *MockArrivalSource) Arrivals(ctx context.Context, icao string, at time.Time, tz string) ([]model.Arrival, error) {
	args := m.Called(ctx, icao, at, tz)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Arrival), args.Error(1)
}
