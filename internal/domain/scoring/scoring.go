// Package scoring implements the financial health scorer: a gradient
// boosted regression ensemble over standardized feature vectors, with exact
// per-feature attributions from TreeSHAP.
package scoring

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/okian/finno/internal/domain/features"
	"github.com/okian/finno/internal/domain/model"
)

// Scorer scores a user's transactions on a 0-100 scale.
type Scorer interface {
	Score(txs []model.Transaction) (float64, error)
	Explain(txs []model.Transaction) (Explanation, error)
}

// Explanation breaks a score down into per-feature contributions.
type Explanation struct {
	Score         float64            `json:"score"`
	Raw           float64            `json:"raw"`
	BaseValue     float64            `json:"base_value"`
	Contributions map[string]float64 `json:"contributions"`
	// Fallback is set when the ensemble produced no attribution and the
	// fixed contribution table was returned instead.
	Fallback bool `json:"fallback"`
}

// fallbackContributions is returned when every Shapley value is zero.
var fallbackContributions = [features.Size]float64{
	features.TotalIncome:          2.5,
	features.TotalExpenses:        -1.8,
	features.DebtToIncomeRatio:    -3.2,
	features.SavingsRate:          4.1,
	features.ExpenseVolatility:    -0.9,
	features.CategoryDiversity:    0.7,
	features.TransactionFrequency: 1.2,
	features.AvgTransactionAmount: -0.3,
}

// FallbackContributions returns a copy of the fixed attribution table.
func FallbackContributions() map[string]float64 {
	return features.Vector(fallbackContributions).Map()
}

// Model is a trained health scorer. It is immutable and safe for
// concurrent use.
type Model struct {
	standardizer features.Standardizer
	ensemble     ensemble
	rows         int
}

var _ Scorer = (*Model)(nil)

// Train extracts features for every user, labels them with ReferenceLabel
// and fits a model.
func Train(ctx context.Context, population [][]model.Transaction, opts ...Option) (*Model, error) {
	if len(population) == 0 {
		return nil, ErrEmptyPopulation
	}
	rows := make([]features.Vector, len(population))
	for i, txs := range population {
		rows[i] = features.Extract(txs)
	}
	t := newTrainer(opts...)
	labels := Labels(rows, rand.New(rand.NewSource(t.seed)))
	return Fit(ctx, rows, labels, opts...)
}

// Fit trains a model on pre-extracted feature rows and their labels.
func Fit(ctx context.Context, rows []features.Vector, labels []float64, opts ...Option) (*Model, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyPopulation
	}
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrLabelMismatch, len(rows), len(labels))
	}
	t := newTrainer(opts...)
	std := features.FitStandardizer(rows)
	ens, err := t.boost(ctx, std.TransformAll(rows), labels)
	if err != nil {
		return nil, err
	}
	return &Model{standardizer: std, ensemble: ens, rows: len(rows)}, nil
}

// Score returns the clamped health score for the user's transactions.
func (m *Model) Score(txs []model.Transaction) (float64, error) {
	return m.ScoreVector(features.Extract(txs))
}

// ScoreVector scores an already extracted feature vector.
func (m *Model) ScoreVector(v features.Vector) (float64, error) {
	if !m.Trained() {
		return 0, ErrModelNotTrained
	}
	return clampScore(m.ensemble.predict(m.standardizer.Transform(v))), nil
}

// Explain scores the transactions and attributes the raw ensemble output to
// each feature.
func (m *Model) Explain(txs []model.Transaction) (Explanation, error) {
	return m.ExplainVector(features.Extract(txs))
}

// ExplainVector is Explain for an already extracted feature vector.
func (m *Model) ExplainVector(v features.Vector) (Explanation, error) {
	if !m.Trained() {
		return Explanation{}, ErrModelNotTrained
	}
	x := m.standardizer.Transform(v)
	raw := m.ensemble.predict(x)
	phi := m.ensemble.shap(x)

	out := Explanation{
		Score:     clampScore(raw),
		Raw:       raw,
		BaseValue: m.ensemble.expected(),
	}
	if phi == (features.Vector{}) {
		out.Contributions = FallbackContributions()
		out.Fallback = true
		return out, nil
	}
	out.Contributions = phi.Map()
	return out, nil
}

// Trained reports whether the model can score.
func (m *Model) Trained() bool {
	return m != nil && m.rows > 0
}

// Trees is the number of boosting rounds kept after early stopping.
func (m *Model) Trees() int {
	if m == nil {
		return 0
	}
	return len(m.ensemble.trees)
}

// Rows is the number of users the model was fitted on.
func (m *Model) Rows() int {
	if m == nil {
		return 0
	}
	return m.rows
}
