package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/alexivanou/gans/internal/model"
	"github.com/alexivanou/gans/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

var validate = validator.New()

// RunRecorder keeps track of finished runs
type RunRecorder interface {
	RecordRun(report model.RunReport)
}

// Handler handles HTTP requests
type Handler struct {
	service  service.ServiceInterface
	recorder RunRecorder
	logger   *zap.Logger
}

// NewHandler creates a new handler instance
func NewHandler(service service.ServiceInterface, recorder RunRecorder, logger *zap.Logger) *Handler {
	return &Handler{service: service, recorder: recorder, logger: logger}
}

// RunRequest is the body of POST /api/v1/runs
type RunRequest struct {
	Cities []string `json:"cities" validate:"required,min=1,max=50,dive,max=200"`
}

// CityRunResult is one city of a RunResponse
type CityRunResult struct {
	City      string `json:"city"`
	Outcome   string `json:"outcome"`
	Refreshed bool   `json:"refreshed"`
	Forecasts int    `json:"forecasts"`
	Arrivals  int    `json:"arrivals"`
	Error     string `json:"error,omitempty"`
}

// RunResponse is the JSON view of a model.RunReport
type RunResponse struct {
	RunID   string          `json:"run_id"`
	Started time.Time       `json:"started"`
	Failed  int             `json:"failed"`
	Results []CityRunResult `json:"results"`
}

func newRunResponse(report model.RunReport) RunResponse {
	resp := RunResponse{
		RunID:   report.RunID,
		Started: report.Started,
		Failed:  report.Failed(),
		Results: make([]CityRunResult, 0, len(report.Results)),
	}
	for _, r := range report.Results {
		res := CityRunResult{
			City:      r.City,
			Outcome:   string(r.Outcome),
			Refreshed: r.Refreshed,
			Forecasts: r.Forecasts,
			Arrivals:  r.Arrivals,
		}
		if r.Err != nil {
			res.Error = r.Err.Error()
		}
		resp.Results = append(resp.Results, res)
	}
	return resp
}

// ListCities handles GET /api/v1/cities
func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		h.logger.Error("Error listing cities", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if cities == nil {
		cities = []model.City{}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"cities": cities,
		"count":  len(cities),
	})
}

// GetCity handles GET /api/v1/cities/{name}
func (h *Handler) GetCity(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if name == "" {
		http.Error(w, "city name is required", http.StatusBadRequest)
		return
	}

	city, err := h.service.GetCityDetail(r.Context(), name)
	if err != nil {
		h.logger.Error("Error getting city", zap.String("city", name), zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if city == nil {
		http.Error(w, "city not found", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, city)
}

// StartRun handles POST /api/v1/runs. The run is synchronous.
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var cities []string
	for _, c := range req.Cities {
		if c = strings.TrimSpace(c); c != "" {
			cities = append(cities, c)
		}
	}
	req.Cities = cities
	if err := validate.Struct(req); err != nil {
		http.Error(w, "between 1 and 50 city names are required", http.StatusBadRequest)
		return
	}

	report := h.service.Run(r.Context(), req.Cities)
	if h.recorder != nil {
		h.recorder.RecordRun(report)
	}

	h.writeJSON(w, http.StatusOK, newRunResponse(report))
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Error encoding response", zap.Error(err))
	}
}
