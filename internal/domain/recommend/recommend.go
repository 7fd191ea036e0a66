// Package recommend builds a short, de-duplicated list of actions from a
// user's own spending (content branch) and from how users with a similar
// health score fared (cohort branch).
package recommend

import (
	"fmt"
	"math"

	"github.com/okian/finno/internal/domain/model"
	"github.com/okian/finno/pkg/money"
)

// MaxRecommendations caps the merged list.
const MaxRecommendations = 5

// Health score bands for the cohort branch.
const (
	lowBand  = 50
	highBand = 70
)

const (
	savingsCutPercent = 15
	goalConfidence    = 0.6
)

// fallbackCategory names the dominant category of a user without expenses.
const fallbackCategory = model.CategoryFood

// Input is everything the generator looks at for one user.
type Input struct {
	Transactions []model.Transaction
	HealthScore  float64
	// Forecast may be empty.
	Forecast map[model.Category]float64
	// Goals defaults to model.DefaultGoals when nil.
	Goals []model.Goal
	// CohortSize is the number of users sharing the user's cohort, zero
	// when unknown.
	CohortSize int
}

var (
	budgetRecommendation = model.Recommendation{
		Action:         "Create a monthly spending budget",
		ExpectedImpact: "-10% total spending",
		Reason:         "Based on your current spending pattern",
		Confidence:     0.7,
	}
	mutualFundsRecommendation = model.Recommendation{
		Action:         "Invest in mutual funds",
		ExpectedImpact: "+8% long-term return",
		Reason:         "Users with a similar score succeeded with this",
		Confidence:     0.75,
	}
	portfolioRecommendation = model.Recommendation{
		Action:         "Optimize your investment portfolio",
		ExpectedImpact: "+12% return",
		Reason:         "Based on the success of top-scoring users",
		Confidence:     0.9,
	}
	debtRecommendation = model.Recommendation{
		Action:         "Pay off high-interest debt first",
		ExpectedImpact: "Lower monthly interest cost",
		Reason:         "Matches your debt management goal",
		Confidence:     goalConfidence,
	}
)

// Generate returns at most MaxRecommendations entries with unique actions,
// content branch first.
func Generate(in Input) []model.Recommendation {
	goals := in.Goals
	if goals == nil {
		goals = model.DefaultGoals
	}
	all := append(content(in, goals), cohort(in))
	return merge(all)
}

func content(in Input, goals []model.Goal) []model.Recommendation {
	_, expenses := model.Totals(in.Transactions)
	top, spent, _ := dominant(in.Transactions)

	var out []model.Recommendation
	for _, g := range goals {
		switch g {
		case model.GoalSavings:
			if expenses <= 0 {
				continue
			}
			saved := money.Percent(money.FromMinor(spent), savingsCutPercent).Truncate(0)
			reason := "Based on your spending analysis"
			if f := in.Forecast[top]; f > 0 {
				reason = fmt.Sprintf("%s; %s is forecast at %s per week", reason, top, money.FormatVND(money.FromMinor(int64(f))))
			}
			out = append(out, model.Recommendation{
				Action:         fmt.Sprintf("Reduce %s spending by %d%%", top, savingsCutPercent),
				ExpectedImpact: fmt.Sprintf("+%s/month", money.FormatVND(saved)),
				Reason:         reason,
				Confidence:     0.8,
			})
		case model.GoalExpenseReduction:
			out = append(out, budgetRecommendation)
		case model.GoalInvestment:
			rec := mutualFundsRecommendation
			rec.Reason = "Matches your investment goal"
			rec.Confidence = goalConfidence
			out = append(out, rec)
		case model.GoalDebtManagement:
			out = append(out, debtRecommendation)
		}
	}
	return out
}

func cohort(in Input) model.Recommendation {
	score := in.HealthScore
	if math.IsNaN(score) {
		score = 0
	}
	switch {
	case score < lowBand:
		top, _, _ := dominant(in.Transactions)
		reason := "Based on the success of users with a similar spending pattern"
		if in.CohortSize > 1 {
			reason = fmt.Sprintf("%s among the %d users in your cohort", reason, in.CohortSize)
		}
		return model.Recommendation{
			Action:         fmt.Sprintf("Users with similarly high %s spending succeeded by setting a dedicated budget for it", top),
			ExpectedImpact: "+5% financial health score",
			Reason:         reason,
			Confidence:     0.85,
		}
	case score < highBand:
		return mutualFundsRecommendation
	default:
		return portfolioRecommendation
	}
}

// dominant is the largest non-income spending category, food when there is
// none.
func dominant(txs []model.Transaction) (model.Category, int64, bool) {
	c, total, ok := model.TopExpenseCategory(txs)
	if !ok {
		return fallbackCategory, 0, false
	}
	return c, total, true
}

func merge(recs []model.Recommendation) []model.Recommendation {
	seen := make(map[string]struct{}, len(recs))
	out := make([]model.Recommendation, 0, MaxRecommendations)
	for _, r := range recs {
		if len(out) == MaxRecommendations {
			break
		}
		if _, dup := seen[r.Action]; dup {
			continue
		}
		seen[r.Action] = struct{}{}
		out = append(out, r)
	}
	return out
}
