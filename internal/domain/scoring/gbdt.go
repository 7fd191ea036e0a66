package scoring

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/okian/finno/internal/domain/features"
)

// ensemble is an additive model: init plus the sum of tree outputs.
type ensemble struct {
	init  float64
	trees []*tree
}

func (e ensemble) predict(x features.Vector) float64 {
	out := e.init
	for _, t := range e.trees {
		out += t.predict(x)
	}
	return out
}

// expected is the mean raw prediction over the training rows.
func (e ensemble) expected() float64 {
	out := e.init
	for _, t := range e.trees {
		out += t.expected()
	}
	return out
}

// boost fits a gradient boosted ensemble under squared loss. Boosting stops
// early once the validation RMSE has not improved for earlyStopping rounds
// and the ensemble is truncated to its best round.
func (t *trainer) boost(ctx context.Context, x []features.Vector, y []float64) (ensemble, error) {
	rng := rand.New(rand.NewSource(t.seed))
	train, valid := t.split(len(x), rng)

	init := 0.0
	for _, i := range train {
		init += y[i]
	}
	init /= float64(len(train))

	pred := make([]float64, len(x))
	for i := range pred {
		pred[i] = init
	}
	residual := make([]float64, len(x))

	var trees []*tree
	bestRMSE := math.Inf(1)
	bestRounds := 0
	stale := 0
	for round := 0; round < t.rounds; round++ {
		if err := ctx.Err(); err != nil {
			return ensemble{}, fmt.Errorf("boosting round %d: %w", round, err)
		}
		for _, i := range train {
			residual[i] = y[i] - pred[i]
		}
		tr := t.grow(x, residual, train, t.sampleFeatures(rng))
		trees = append(trees, tr)
		for i := range x {
			pred[i] += tr.predict(x[i])
		}

		score := rmse(y, pred, valid)
		if score < bestRMSE {
			bestRMSE = score
			bestRounds = len(trees)
			stale = 0
			continue
		}
		stale++
		if t.earlyStopping > 0 && stale >= t.earlyStopping {
			break
		}
	}
	return ensemble{init: init, trees: trees[:bestRounds]}, nil
}

// split partitions row indices into training and validation sets. Without a
// usable holdout both sets are every row.
func (t *trainer) split(n int, rng *rand.Rand) (train, valid []int) {
	if t.validationFraction > 0 {
		holdout := int(t.validationFraction * float64(n))
		if holdout >= 1 && n-holdout >= 2*t.minLeafSamples {
			perm := rng.Perm(n)
			valid = append(valid, perm[:holdout]...)
			train = append(train, perm[holdout:]...)
			sort.Ints(valid)
			sort.Ints(train)
			return train, valid
		}
	}
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all, all
}

func (t *trainer) sampleFeatures(rng *rand.Rand) []int {
	count := int(math.Round(t.featureFraction * features.Size))
	count = max(1, min(count, features.Size))
	feats := rng.Perm(features.Size)[:count]
	sort.Ints(feats)
	return feats
}

func rmse(y, pred []float64, rows []int) float64 {
	sum := 0.0
	for _, i := range rows {
		d := y[i] - pred[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(rows)))
}
