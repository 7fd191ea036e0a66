// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/finno/internal/adapters/repository"
	"github.com/okian/finno/internal/app"
	"github.com/okian/finno/internal/domain/forecast"
	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the engine.
type Dependencies interface {
	// ResolveUser maps the numeric user_id parameter onto a user id.
	ResolveUser(ctx context.Context, n int) (string, error)

	Dashboard(ctx context.Context, userID string) (types.Dashboard, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	Insights(ctx context.Context, userID string) (types.Insights, error)
	HealthScore(ctx context.Context, userID string) (types.HealthScore, error)
	Cohort(ctx context.Context, userID string) (types.CohortSummary, error)
	Simulate(ctx context.Context, userID string, iv forecast.Intervention) (forecast.Simulation, error)
	Recommend(ctx context.Context, userID string, goals []model.Goal) ([]model.Recommendation, error)

	Enrich(raw string) model.Transaction
	AddTransaction(ctx context.Context, userID string, tx model.Transaction) (model.Transaction, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	userHandler        *UserHandler
	simulationHandler  *SimulationHandler
	recommendHandler   *RecommendationHandler
	transactionHandler *TransactionHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		userHandler:        NewUserHandler(deps),
		simulationHandler:  NewSimulationHandler(deps),
		recommendHandler:   NewRecommendationHandler(deps),
		transactionHandler: NewTransactionHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/dashboard", MetricsMiddleware(s.userHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/api/transactions", MetricsMiddleware(s.userHandler.HandleTransactions, "transactions"))
	mux.HandleFunc("/api/insights", MetricsMiddleware(s.userHandler.HandleInsights, "insights"))
	mux.HandleFunc("/api/health-score", MetricsMiddleware(s.userHandler.HandleHealthScore, "health_score"))
	mux.HandleFunc("/api/cohort", MetricsMiddleware(s.userHandler.HandleCohort, "cohort"))
	mux.HandleFunc("/api/simulation", MetricsMiddleware(s.simulationHandler.HandleSimulation, "simulation"))
	mux.HandleFunc("/api/recommendations", MetricsMiddleware(s.recommendHandler.HandleRecommendations, "recommendations"))
	mux.HandleFunc("/api/enrich", MetricsMiddleware(s.transactionHandler.HandleEnrich, "enrich"))
	mux.HandleFunc("/api/add-transaction", MetricsMiddleware(s.transactionHandler.HandleAddTransaction, "add_transaction"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates engine errors into HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, repository.ErrInvalidTransaction):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, app.ErrUnknownUser):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, app.ErrDuplicateTransaction):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, app.ErrNoCohort):
		writeError(w, http.StatusNotFound, "no_cohort", err)
	case errors.Is(err, app.ErrNotTrained):
		writeError(w, http.StatusServiceUnavailable, "not_trained", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrMethodNotAllowed)
	return false
}

// queryUser reads the user_id query parameter, defaulting to 0.
func queryUser(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: user_id must be an integer", ErrBadRequest)
	}
	return n, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", ErrBadRequest, err)
	}
	return nil
}
