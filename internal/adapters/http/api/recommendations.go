package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/finno/internal/domain/model"
)

var knownGoals = map[model.Goal]bool{
	model.GoalSavings:          true,
	model.GoalExpenseReduction: true,
	model.GoalInvestment:       true,
	model.GoalDebtManagement:   true,
}

// RecommendationDependencies defines the interface for recommendations.
type RecommendationDependencies interface {
	ResolveUser(ctx context.Context, n int) (string, error)
	Recommend(ctx context.Context, userID string, goals []model.Goal) ([]model.Recommendation, error)
}

// RecommendationHandler handles recommendation requests.
type RecommendationHandler struct {
	deps RecommendationDependencies
}

// NewRecommendationHandler creates a new recommendation handler.
func NewRecommendationHandler(deps RecommendationDependencies) *RecommendationHandler {
	return &RecommendationHandler{deps: deps}
}

type recommendationsResponse struct {
	Recommendations []model.Recommendation `json:"recommendations"`
}

// HandleRecommendations handles GET /api/recommendations requests. The
// optional goals parameter is a comma separated goal list.
func (h *RecommendationHandler) HandleRecommendations(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	n, err := queryUser(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	goals, err := parseGoals(r.URL.Query().Get("goals"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	userID, err := h.deps.ResolveUser(r.Context(), n)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	recs, err := h.deps.Recommend(r.Context(), userID, goals)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{Recommendations: recs})
}

// parseGoals returns nil for an empty list so the defaults apply.
func parseGoals(raw string) ([]model.Goal, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var goals []model.Goal
	for _, part := range strings.Split(raw, ",") {
		g := model.Goal(strings.TrimSpace(part))
		if !knownGoals[g] {
			return nil, fmt.Errorf("%w: unknown goal %q", ErrBadRequest, g)
		}
		goals = append(goals, g)
	}
	return goals, nil
}
