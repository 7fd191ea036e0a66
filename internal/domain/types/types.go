// Package types contains the view types shared by the engine and the HTTP API.
package types

import (
	"math"

	"github.com/okian/finno/internal/domain/model"
)

// Dashboard is the headline view of one household.
type Dashboard struct {
	UserID             string              `json:"userId"`
	HealthScore        float64             `json:"healthScore"`
	CurrentBalance     int64               `json:"currentBalance"`
	MonthlyIncome      int64               `json:"monthlyIncome"`
	MonthlyExpenses    int64               `json:"monthlyExpenses"`
	SavingsRate        float64             `json:"savingsRate"`
	RecentTransactions []model.Transaction `json:"recentTransactions"`
}

// HealthScore is a score with its per-feature explanation.
type HealthScore struct {
	UserID       string             `json:"userId"`
	Score        float64            `json:"score"`
	BaseValue    float64            `json:"baseValue"`
	Explanations map[string]float64 `json:"explanations"`
	Fallback     bool               `json:"fallback"`
}

// ForecastChart holds one projected amount per category, aligned with
// Categories. Fallback marks the fixed demo series used when no forecast
// exists.
type ForecastChart struct {
	Weeks      []string         `json:"weeks"`
	Categories []model.Category `json:"categories"`
	Amounts    []float64        `json:"amounts"`
	Fallback   bool             `json:"fallback"`
}

// Breakdown is the user's total per category, labels in category order.
type Breakdown struct {
	Labels  []model.Category `json:"labels"`
	Amounts []int64          `json:"amounts"`
}

// Insights combines the forecast chart and the category breakdown.
type Insights struct {
	UserID            string        `json:"userId"`
	Forecast          ForecastChart `json:"forecast"`
	CategoryBreakdown Breakdown     `json:"categoryBreakdown"`
}

// CohortSummary describes the cluster a user belongs to.
type CohortSummary struct {
	UserID   string             `json:"userId"`
	Label    int                `json:"label"`
	Clusters int                `json:"clusters"`
	Size     int                `json:"size"`
	Peers    []string           `json:"peers"`
	Centroid map[string]float64 `json:"centroid"`
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
