// Package collector assembles the production pipeline: the external source
// clients, the service on top of them and the recording of run reports.
package collector

import (
	"context"
	"net/http"

	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/scheduler"
	"github.com/alexivanou/gans/internal/service"
	"github.com/alexivanou/gans/internal/source"
	"github.com/alexivanou/gans/internal/source/aerodatabox"
	"github.com/alexivanou/gans/internal/source/openweather"
	"github.com/alexivanou/gans/internal/source/wikipedia"
	"go.uber.org/zap"
)

// UserAgent identifies the collector to the place page server
const UserAgent = "gans-collector/1.0 (city data pipeline)"

// NewSources builds the clients of the three external sources
func NewSources(cfg config.SourcesConfig, logger *zap.Logger) service.Sources {
	options := func(header http.Header) source.Options {
		return source.Options{
			Timeout:         cfg.HTTPTimeout,
			BreakerFailures: cfg.BreakerFailures,
			Header:          header,
		}
	}

	places := wikipedia.NewClient(cfg.WikipediaBaseURL, source.NewClient(
		wikipedia.SourceName,
		options(http.Header{"User-Agent": {UserAgent}}),
		logger,
	))

	forecasts := openweather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, source.NewClient(
		openweather.SourceName,
		options(http.Header{"X-Api-Key": {cfg.OpenWeatherAPIKey}}),
		logger,
	))

	flightsHeader := http.Header{}
	flightsHeader.Set("x-rapidapi-host", aerodatabox.Host)
	flightsHeader.Set("x-rapidapi-key", cfg.RapidAPIKey)
	flights := aerodatabox.NewClient(cfg.AeroDataBoxBaseURL,
		source.NewClient(aerodatabox.SourceName, options(flightsHeader), logger),
		source.NewClient(aerodatabox.SourceName+"-arrivals", options(flightsHeader), logger),
		logger,
	)

	return service.Sources{
		Places:    places,
		Airports:  flights,
		Forecasts: forecasts,
		Arrivals:  flights,
	}
}

// Recorder keeps run reports, e.g. for the stats endpoint
type Recorder interface {
	RecordRun(report model.RunReport)
}

// RecordingRunner hands every report produced by Runner to Recorder
type RecordingRunner struct {
	Runner   scheduler.Runner
	Recorder Recorder
}

var _ scheduler.Runner = (*RecordingRunner)(nil)

// Run runs the batch and records its report
func (r *RecordingRunner) Run(ctx context.Context, names []string) model.RunReport {
	report := r.Runner.Run(ctx, names)
	if r.Recorder != nil {
		r.Recorder.RecordRun(report)
	}
	return report
}

// MissingKeys lists the credentials the sources need but cfg lacks
func MissingKeys(cfg config.SourcesConfig) []string {
	var missing []string
	if cfg.OpenWeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}
	if cfg.RapidAPIKey == "" {
		missing = append(missing, "RAPIDAPI_KEY")
	}
	return missing
}
