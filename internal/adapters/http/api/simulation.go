package api

import (
	"context"
	"net/http"

	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/model"
)

// Defaults applied to fields missing from a simulation request.
const (
	defaultSimulationCategory  = model.CategoryFood
	defaultSimulationReduction = 15.0
)

// SimulationDependencies defines the interface for what-if simulations.
type SimulationDependencies interface {
	ResolveUser(ctx context.Context, n int) (string, error)
	Simulate(ctx context.Context, userID string, iv forecast.Intervention) (forecast.Simulation, error)
}

// SimulationHandler handles simulation requests.
type SimulationHandler struct {
	deps SimulationDependencies
}

// NewSimulationHandler creates a new simulation handler.
func NewSimulationHandler(deps SimulationDependencies) *SimulationHandler {
	return &SimulationHandler{deps: deps}
}

type simulationRequest struct {
	UserID           int      `json:"user_id"`
	Category         string   `json:"category"`
	ReductionPercent *float64 `json:"reduction_percent"`
}

type simulationResponse struct {
	Result forecast.Simulation `json:"result"`
}

func (s simulationRequest) intervention() forecast.Intervention {
	iv := forecast.Intervention{
		Category:         model.Category(s.Category),
		ReductionPercent: defaultSimulationReduction,
	}
	if iv.Category == "" {
		iv.Category = defaultSimulationCategory
	}
	if s.ReductionPercent != nil {
		iv.ReductionPercent = *s.ReductionPercent
	}
	return iv
}

// HandleSimulation handles POST /api/simulation requests.
func (h *SimulationHandler) HandleSimulation(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req simulationRequest
	if err := decodeBody(r, &req); err != nil {
		writeDomainError(w, err)
		return
	}
	userID, err := h.deps.ResolveUser(r.Context(), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sim, err := h.deps.Simulate(r.Context(), userID, req.intervention())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, simulationResponse{Result: sim})
}
