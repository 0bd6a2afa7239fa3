package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexivanou/gans/internal/config"
	"github.com/alexivanou/gans/internal/database"
	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/repository"
	"github.com/alexivanou/gans/internal/service"
	"github.com/alexivanou/gans/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeSources answers every lookup for Springfield and nothing else
type fakeSources struct{}

func (fakeSources) LookupPlace(_ context.Context, name string) (model.GeoFacts, error) {
	if name != "Springfield" {
		return model.GeoFacts{}, &model.LookupError{Source: "wikipedia", StatusCode: http.StatusNotFound}
	}
	return model.GeoFacts{Latitude: 39.8, Longitude: -89.633, Country: "United States", Population: 114250}, nil
}

func (fakeSources) LookupPopulation(_ context.Context, _ string) (int64, error) {
	return 114394, nil
}

func (fakeSources) NearbyAirports(_ context.Context, _, _ float64) (model.AirportSearch, error) {
	return model.AirportSearch{ICAOs: []string{"KSPI"}, Timezone: "America/Chicago"}, nil
}

func (fakeSources) Forecasts(_ context.Context, _, _ float64, upto int) ([]model.Forecast, error) {
	start := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	out := make([]model.Forecast, upto)
	for i := range out {
		out[i] = model.Forecast{Timestamp: start.Add(time.Duration(i) * 3 * time.Hour), Temperature: 14, Visibility: 10000}
	}
	return out, nil
}

func (fakeSources) Arrivals(_ context.Context, icao string, at time.Time, _ string) ([]model.Arrival, error) {
	return []model.Arrival{{ICAO: icao, Scheduled: at.Add(20 * time.Minute), FromWhere: "Chicago O'Hare"}}, nil
}

func setupIntegrationStack(t *testing.T) http.Handler {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cfg := config.DBConfig{
		Type: config.DBTypeMemory,
		Name: fmt.Sprintf("testdb_%d", rng.Int()),
	}

	db, err := database.Connect(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db, cfg, "../../migrations"))

	repos := repository.NewRepositories(db, cfg.Type)
	src := fakeSources{}
	svc := service.NewService(repos, service.Sources{
		Places:    src,
		Airports:  src,
		Forecasts: src,
		Arrivals:  src,
	}, 2, zap.NewNop())

	return NewRouter(svc, stats.NewCollector(db, cfg), zap.NewNop())
}

func TestAPI_Integration_RunAndRead(t *testing.T) {
	handler := setupIntegrationStack(t)

	req := httptest.NewRequest("POST", "/api/v1/runs", strings.NewReader(`{"cities": ["Springfield", "Atlantis"]}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var run RunResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &run))
	require.Len(t, run.Results, 2)
	assert.Equal(t, "onboarded", run.Results[0].Outcome)
	assert.Equal(t, 2, run.Results[0].Forecasts)
	assert.Equal(t, 2, run.Results[0].Arrivals)
	assert.Equal(t, "failed", run.Results[1].Outcome)

	req = httptest.NewRequest("GET", "/api/v1/cities/Springfield", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var detail model.CityDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, "United States", detail.Geo.Country)
	assert.Equal(t, int64(114250), detail.Population.Population)
	assert.Equal(t, []string{"KSPI"}, detail.Airports)

	req = httptest.NewRequest("GET", "/api/v1/cities/Atlantis", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAPI_Integration_Stats(t *testing.T) {
	handler := setupIntegrationStack(t)

	req := httptest.NewRequest("POST", "/api/v1/runs", strings.NewReader(`{"cities": ["Springfield"]}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = httptest.NewRequest("GET", "/api/v1/stats", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var snapshot stats.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &snapshot))

	rows := make(map[string]int64)
	for _, ts := range snapshot.Database.TableStats {
		rows[ts.Name] = ts.RowCount
	}
	assert.Equal(t, int64(1), rows["cities"])
	assert.Equal(t, int64(2), rows["weather"])
	assert.Equal(t, int64(2), rows["flights"])
	require.NotNil(t, snapshot.LastRun)
	assert.Equal(t, 1, snapshot.LastRun.Onboarded)
}

func TestAPI_Integration_Health(t *testing.T) {
	handler := setupIntegrationStack(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
