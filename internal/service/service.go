package service

import (
	"context"
	"sync"
	"time"

	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/repository"
	"go.uber.org/zap"
)

// PlaceSource resolves a place name to its geographic facts
type PlaceSource interface {
	LookupPlace(ctx context.Context, name string) (model.GeoFacts, error)
	LookupPopulation(ctx context.Context, name string) (int64, error)
}

// AirportLocator finds airports around a position
type AirportLocator interface {
	NearbyAirports(ctx context.Context, lat, lon float64) (model.AirportSearch, error)
}

// ForecastSource returns normalized forecasts for a position
type ForecastSource interface {
	Forecasts(ctx context.Context, lat, lon float64, upto int) ([]model.Forecast, error)
}

// ArrivalSource returns the arrivals in the window starting at a UTC instant
type ArrivalSource interface {
	Arrivals(ctx context.Context, icao string, at time.Time, tz string) ([]model.Arrival, error)
}

// Sources bundles the external data sources
type Sources struct {
	Places    PlaceSource
	Airports  AirportLocator
	Forecasts ForecastSource
	Arrivals  ArrivalSource
}

// Service on-boards cities and refreshes their weather and flight data
type Service struct {
	cityRepo       repository.CityRepository
	populationRepo repository.PopulationRepository
	weatherRepo    repository.WeatherRepository
	flightRepo     repository.FlightRepository

	places    PlaceSource
	airports  AirportLocator
	forecasts ForecastSource
	arrivals  ArrivalSource

	upto   int
	logger *zap.Logger
	now    func() time.Time

	// runMu keeps batches and population passes from writing concurrently
	runMu sync.Mutex
}

// NewService creates a new service instance. upto caps the forecast entries
// stored per refresh; a negative value keeps all of them.
func NewService(repos *repository.Container, sources Sources, upto int, logger *zap.Logger) *Service {
	return &Service{
		cityRepo:       repos.City,
		populationRepo: repos.Population,
		weatherRepo:    repos.Weather,
		flightRepo:     repos.Flight,
		places:         sources.Places,
		airports:       sources.Airports,
		forecasts:      sources.Forecasts,
		arrivals:       sources.Arrivals,
		upto:           upto,
		logger:         logger,
		now:            time.Now,
	}
}
