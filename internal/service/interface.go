package service

import (
	"context"

	"github.com/alexivanou/gans/internal/model"
)

// ServiceInterface defines the service interface for testing
type ServiceInterface interface {
	ListCities(ctx context.Context) ([]model.City, error)
	GetCityDetail(ctx context.Context, name string) (*model.CityDetail, error)
	Run(ctx context.Context, names []string) model.RunReport
	RefreshPopulation(ctx context.Context) (int, error)
}
