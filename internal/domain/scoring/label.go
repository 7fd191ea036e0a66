package scoring

import (
	"math"
	"math/rand"

	"github.com/okian/finno/internal/domain/features"
)

// Reference label formula constants.
const (
	labelBase             = 60
	labelSavingsWeight    = 50
	labelDebtWeight       = 20
	labelVolatilityWeight = 0.0001
	underdeterminedMin    = 20
	underdeterminedSpan   = 20
	maxScoreValue         = 100
)

// ReferenceLabel is the heuristic used to bootstrap training targets. It is
// not used at inference time. Users without income are underdetermined and
// get a random label in [20,40) drawn from rng.
func ReferenceLabel(v features.Vector, rng *rand.Rand) float64 {
	if v[features.TotalIncome] > 0 {
		score := labelBase +
			labelSavingsWeight*v[features.SavingsRate] -
			labelDebtWeight*v[features.DebtToIncomeRatio] -
			labelVolatilityWeight*v[features.ExpenseVolatility]
		return clampScore(score)
	}
	return underdeterminedMin + rng.Float64()*underdeterminedSpan
}

// Labels applies ReferenceLabel to every row in order.
func Labels(rows []features.Vector, rng *rand.Rand) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = ReferenceLabel(row, rng)
	}
	return out
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) {
		return 0
	}
	return math.Max(0, math.Min(maxScoreValue, score))
}
