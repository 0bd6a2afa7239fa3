package service

import (
	"context"
	"errors"

	"github.com/alexivanou/gans/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Run on-boards every named city that is not stored yet and refreshes each
// stored one. A failing city is recorded in the report and the batch moves on.
// Concurrent calls are serialized.
func (s *Service) Run(ctx context.Context, names []string) model.RunReport {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	report := model.RunReport{
		RunID:   uuid.NewString(),
		Started: s.now(),
		Results: make([]model.CityResult, 0, len(names)),
	}
	logger := s.logger.With(zap.String("run_id", report.RunID))
	logger.Info("run started", zap.Int("cities", len(names)))

	for _, name := range names {
		if ctx.Err() != nil {
			logger.Warn("run cancelled", zap.Error(ctx.Err()))
			break
		}
		report.Results = append(report.Results, s.runCity(ctx, logger, name))
	}

	logger.Info("run finished",
		zap.Int("processed", len(report.Results)),
		zap.Int("failed", report.Failed()),
		zap.Duration("took", s.now().Sub(report.Started)),
	)
	return report
}

func (s *Service) runCity(ctx context.Context, logger *zap.Logger, name string) model.CityResult {
	result := model.CityResult{City: name}
	logger = logger.With(zap.String("city", name))

	id, outcome, err := s.OnboardCity(ctx, name)
	result.Outcome = outcome
	if err != nil {
		result.Err = err
		logger.Warn("city on-boarding failed", zap.String("kind", errorKind(err)), zap.Error(err))
		return result
	}

	result.Forecasts, result.Arrivals, err = s.refreshCity(ctx, logger, id)
	if err != nil {
		result.Err = err
		logger.Warn("city refresh failed", zap.String("kind", errorKind(err)), zap.Error(err))
		return result
	}
	result.Refreshed = true

	logger.Info("city refreshed",
		zap.String("outcome", string(outcome)),
		zap.Int("forecasts", result.Forecasts),
		zap.Int("arrivals", result.Arrivals),
	)
	return result
}

func errorKind(err error) string {
	var (
		parseErr  *model.ParseError
		lookupErr *model.LookupError
	)
	switch {
	case errors.As(err, &parseErr):
		return "parse"
	case errors.As(err, &lookupErr):
		return "lookup"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "storage"
	}
}
