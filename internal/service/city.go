package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/repository"
	"go.uber.org/zap"
)

// OnboardCity registers a city that is not stored yet. A stored city is left
// untouched and costs no external call. A failed lookup is returned as a
// *model.NotFoundError and nothing is written.
func (s *Service) OnboardCity(ctx context.Context, name string) (int64, model.Outcome, error) {
	city, err := s.cityRepo.GetCityByName(ctx, name)
	if err != nil {
		return 0, model.OutcomeFailed, fmt.Errorf("failed to check city: %w", err)
	}
	if city != nil {
		return city.ID, model.OutcomeExisting, nil
	}

	facts, err := s.places.LookupPlace(ctx, name)
	if err != nil {
		return 0, model.OutcomeFailed, &model.NotFoundError{City: name, Err: err}
	}

	found, err := s.airports.NearbyAirports(ctx, facts.Latitude, facts.Longitude)
	if err != nil {
		return 0, model.OutcomeFailed, &model.NotFoundError{City: name, Err: err}
	}
	if found.Timezone == "" {
		// an abbreviation like CET cannot drive local time conversion
		s.logger.Info("no airport near city, flights will be skipped",
			zap.String("city", name),
			zap.String("timezone_abbr", facts.TimezoneAbbr),
		)
	}

	profile := model.CityProfile{
		Name: name,
		Geo: model.Geo{
			Latitude:  facts.Latitude,
			Longitude: facts.Longitude,
			Country:   facts.Country,
			Timezone:  found.Timezone,
		},
		Population: model.Population{
			Population:    facts.Population,
			YearRetrieved: s.now().Year(),
		},
		Airports: found.ICAOs,
	}

	id, err := s.cityRepo.CreateCity(ctx, profile)
	if errors.Is(err, repository.ErrCityExists) {
		// stored concurrently since the existence check
		city, getErr := s.cityRepo.GetCityByName(ctx, name)
		if getErr == nil && city != nil {
			return city.ID, model.OutcomeExisting, nil
		}
	}
	if err != nil {
		return 0, model.OutcomeFailed, fmt.Errorf("failed to store city: %w", err)
	}

	s.logger.Info("city on-boarded",
		zap.String("city", name),
		zap.Int64("city_id", id),
		zap.String("country", facts.Country),
		zap.Int64("population", facts.Population),
		zap.Strings("airports", found.ICAOs),
	)
	return id, model.OutcomeOnboarded, nil
}

// ListCities returns all on-boarded cities
func (s *Service) ListCities(ctx context.Context) ([]model.City, error) {
	cities, err := s.cityRepo.ListCities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return cities, nil
}

// GetCityDetail returns the stored facts of a city, nil if it is unknown
func (s *Service) GetCityDetail(ctx context.Context, name string) (*model.CityDetail, error) {
	city, err := s.cityRepo.GetCityByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	if city == nil {
		return nil, nil
	}

	geo, err := s.cityRepo.GetGeo(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get geo: %w", err)
	}

	population, err := s.populationRepo.LatestPopulation(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get population: %w", err)
	}

	airports, err := s.cityRepo.ListAirports(ctx, city.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get airports: %w", err)
	}

	detail := &model.CityDetail{
		City:       *city,
		Geo:        geo,
		Population: population,
		Airports:   make([]string, 0, len(airports)),
	}
	for _, a := range airports {
		detail.Airports = append(detail.Airports, a.ICAO)
	}
	return detail, nil
}
