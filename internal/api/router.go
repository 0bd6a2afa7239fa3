package api

import (
	"github.com/alexivanou/gans/internal/service"
	"github.com/alexivanou/gans/internal/stats"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter creates a new HTTP router
func NewRouter(service service.ServiceInterface, statsCollector *stats.Collector, logger *zap.Logger) *mux.Router {
	handler := NewHandler(service, statsCollector, logger)
	statsHandler := NewStatsHandler(statsCollector, logger)

	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/cities", handler.ListCities).Methods("GET")
	v1.HandleFunc("/cities/{name}", handler.GetCity).Methods("GET")
	v1.HandleFunc("/runs", handler.StartRun).Methods("POST")
	v1.HandleFunc("/stats", statsHandler.GetStats).Methods("GET")

	return router
}
