package api

import (
	"context"
	"net/http"

	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/internal/domain/types"
)

// UserDependencies defines the read operations keyed by user.
type UserDependencies interface {
	ResolveUser(ctx context.Context, n int) (string, error)
	Dashboard(ctx context.Context, userID string) (types.Dashboard, error)
	Transactions(ctx context.Context, userID string) ([]model.Transaction, error)
	Insights(ctx context.Context, userID string) (types.Insights, error)
	HealthScore(ctx context.Context, userID string) (types.HealthScore, error)
	Cohort(ctx context.Context, userID string) (types.CohortSummary, error)
}

// UserHandler serves the per-user GET endpoints.
type UserHandler struct {
	deps UserDependencies
}

// NewUserHandler creates a new user handler.
func NewUserHandler(deps UserDependencies) *UserHandler {
	return &UserHandler{deps: deps}
}

type transactionsResponse struct {
	Transactions []model.Transaction `json:"transactions"`
}

// resolve runs the shared prologue of every user endpoint: method check,
// user_id parsing and resolution. It writes the error response itself.
func (h *UserHandler) resolve(w http.ResponseWriter, r *http.Request) (string, bool) {
	if !allowMethod(w, r, http.MethodGet) {
		return "", false
	}
	n, err := queryUser(r)
	if err != nil {
		writeDomainError(w, err)
		return "", false
	}
	userID, err := h.deps.ResolveUser(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return "", false
	}
	return userID, true
}

// HandleDashboard handles GET /api/dashboard requests.
func (h *UserHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	d, err := h.deps.Dashboard(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// HandleTransactions handles GET /api/transactions requests.
func (h *UserHandler) HandleTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	txs, err := h.deps.Transactions(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transactionsResponse{Transactions: txs})
}

// HandleInsights handles GET /api/insights requests.
func (h *UserHandler) HandleInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	in, err := h.deps.Insights(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, in)
}

// HandleHealthScore handles GET /api/health-score requests.
func (h *UserHandler) HandleHealthScore(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	hs, err := h.deps.HealthScore(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hs)
}

// HandleCohort handles GET /api/cohort requests.
func (h *UserHandler) HandleCohort(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.resolve(w, r)
	if !ok {
		return
	}
	c, err := h.deps.Cohort(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
