package scoring

import "github.com/okian/finno/internal/domain/features"

// Default boosting configuration constants.
const (
	defaultRounds              = 100
	defaultLearningRate        = 0.05
	defaultMaxLeaves           = 31
	defaultMinLeafSamples      = 2
	defaultFeatureFraction     = 0.9
	defaultEarlyStoppingRounds = 10
	defaultSeed                = 42
)

// DefaultMonotone constrains the features the reference label is built
// from: the score never falls as the savings rate rises, and never rises
// with the debt ratio, total expenses or expense volatility.
var DefaultMonotone = [features.Size]int{
	features.SavingsRate:       1,
	features.DebtToIncomeRatio: -1,
	features.TotalExpenses:     -1,
	features.ExpenseVolatility: -1,
}

// Option applies a configuration option to a training run.
type Option func(*trainer)

// WithRounds caps the number of boosting rounds.
func WithRounds(rounds int) Option {
	return func(t *trainer) {
		if rounds > 0 {
			t.rounds = rounds
		}
	}
}

// WithLearningRate sets the shrinkage applied to every tree.
func WithLearningRate(rate float64) Option {
	return func(t *trainer) {
		if rate > 0 && rate <= 1 {
			t.learningRate = rate
		}
	}
}

// WithMaxLeaves bounds the leaves grown per tree.
func WithMaxLeaves(leaves int) Option {
	return func(t *trainer) {
		if leaves >= 2 {
			t.maxLeaves = leaves
		}
	}
}

// WithMinLeafSamples sets the minimum number of rows a leaf must hold.
func WithMinLeafSamples(n int) Option {
	return func(t *trainer) {
		if n > 0 {
			t.minLeafSamples = n
		}
	}
}

// WithFeatureFraction sets the share of features sampled for each tree.
func WithFeatureFraction(fraction float64) Option {
	return func(t *trainer) {
		if fraction > 0 && fraction <= 1 {
			t.featureFraction = fraction
		}
	}
}

// WithEarlyStopping stops boosting after rounds without validation
// improvement. Zero disables early stopping.
func WithEarlyStopping(rounds int) Option {
	return func(t *trainer) {
		if rounds >= 0 {
			t.earlyStopping = rounds
		}
	}
}

// WithValidationFraction holds out a share of rows for early stopping.
// Zero validates on the training rows.
func WithValidationFraction(fraction float64) Option {
	return func(t *trainer) {
		if fraction >= 0 && fraction < 1 {
			t.validationFraction = fraction
		}
	}
}

// WithSeed fixes the random source used for labels, feature sampling and
// the validation split.
func WithSeed(seed int64) Option {
	return func(t *trainer) {
		t.seed = seed
	}
}

// WithMonotoneConstraints sets one constraint per feature: 1 keeps the
// output non-decreasing in that feature, -1 non-increasing and 0 leaves it
// free. Other values are treated as 0.
func WithMonotoneConstraints(constraints [features.Size]int) Option {
	return func(t *trainer) {
		for i, c := range constraints {
			t.monotone[i] = max(-1, min(1, c))
		}
	}
}

// trainer carries the hyper-parameters for one training run.
type trainer struct {
	rounds             int
	learningRate       float64
	maxLeaves          int
	minLeafSamples     int
	featureFraction    float64
	earlyStopping      int
	validationFraction float64
	seed               int64
	monotone           [features.Size]int
}

func newTrainer(opts ...Option) *trainer {
	t := &trainer{
		rounds:          defaultRounds,
		learningRate:    defaultLearningRate,
		maxLeaves:       defaultMaxLeaves,
		minLeafSamples:  defaultMinLeafSamples,
		featureFraction: defaultFeatureFraction,
		earlyStopping:   defaultEarlyStoppingRounds,
		seed:            defaultSeed,
		monotone:        DefaultMonotone,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
