package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/alexivanou/gans/internal/stats"
	"go.uber.org/zap"
)

// StatsCollector produces a stats snapshot
type StatsCollector interface {
	Collect(ctx context.Context) (*stats.Stats, error)
}

// StatsHandler handles statistics requests
type StatsHandler struct {
	collector StatsCollector
	logger    *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(collector StatsCollector, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{collector: collector, logger: logger}
}

// GetStats handles GET /api/v1/stats
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.collector.Collect(r.Context())
	if err != nil {
		h.logger.Error("Error collecting statistics", zap.Error(err))
		http.Error(w, "failed to collect statistics", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		h.logger.Error("Error encoding statistics", zap.Error(err))
	}
}
