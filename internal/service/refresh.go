package service

import (
	"context"
	"fmt"

	"github.com/alexivanou/gans/internal/model"
	"go.uber.org/zap"
)

// RefreshCity appends the next forecasts of an on-boarded city and the
// arrivals at its airports during each forecast window. It returns the number
// of forecast and arrival rows written.
func (s *Service) RefreshCity(ctx context.Context, cityID int64) (int, int, error) {
	return s.refreshCity(ctx, s.logger, cityID)
}

func (s *Service) refreshCity(ctx context.Context, logger *zap.Logger, cityID int64) (int, int, error) {
	geo, err := s.cityRepo.GetGeo(ctx, cityID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get geo: %w", err)
	}
	if geo == nil {
		return 0, 0, fmt.Errorf("no geo row for city %d", cityID)
	}

	forecasts, err := s.forecasts.Forecasts(ctx, geo.Latitude, geo.Longitude, s.upto)
	if err != nil {
		return 0, 0, err
	}
	for i := range forecasts {
		forecasts[i].CityID = cityID
	}
	if err := s.weatherRepo.InsertForecasts(ctx, forecasts); err != nil {
		return 0, 0, fmt.Errorf("failed to store forecasts: %w", err)
	}

	if geo.Timezone == "" {
		logger.Debug("city has no airport timezone, skipping flights", zap.Int64("city_id", cityID))
		return len(forecasts), 0, nil
	}

	airports, err := s.cityRepo.ListAirports(ctx, cityID)
	if err != nil {
		return len(forecasts), 0, fmt.Errorf("failed to list airports: %w", err)
	}

	var arrivals []model.Arrival
	for _, f := range forecasts {
		for _, a := range airports {
			if err := ctx.Err(); err != nil {
				return len(forecasts), 0, err
			}
			found, err := s.arrivals.Arrivals(ctx, a.ICAO, f.Timestamp, geo.Timezone)
			if err != nil {
				logger.Warn("arrival lookup failed",
					zap.String("icao", a.ICAO),
					zap.Time("window_start", f.Timestamp),
					zap.Error(err),
				)
				continue
			}
			arrivals = append(arrivals, found...)
		}
	}

	if err := s.flightRepo.InsertArrivals(ctx, arrivals); err != nil {
		return len(forecasts), 0, fmt.Errorf("failed to store arrivals: %w", err)
	}
	return len(forecasts), len(arrivals), nil
}

// RefreshPopulation appends the current population of every stored city. A
// city whose page cannot be read, or shows no population, is skipped and
// keeps its previous figure.
func (s *Service) RefreshPopulation(ctx context.Context) (int, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	cities, err := s.cityRepo.ListCities(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cities: %w", err)
	}

	year := s.now().Year()
	updated := 0
	for _, city := range cities {
		if err := ctx.Err(); err != nil {
			return updated, err
		}

		population, err := s.places.LookupPopulation(ctx, city.Name)
		if err != nil {
			s.logger.Warn("population lookup failed", zap.String("city", city.Name), zap.Error(err))
			continue
		}
		if population == model.UnknownPopulation {
			s.logger.Info("no population on page, keeping previous figure",
				zap.String("city", city.Name),
				zap.Int("year", year),
			)
			continue
		}

		err = s.populationRepo.InsertPopulation(ctx, model.Population{
			CityID:        city.ID,
			Population:    population,
			YearRetrieved: year,
		})
		if err != nil {
			return updated, fmt.Errorf("failed to store population of %s: %w", city.Name, err)
		}
		updated++
	}

	s.logger.Info("population refreshed", zap.Int("cities", len(cities)), zap.Int("updated", updated))
	return updated, nil
}
