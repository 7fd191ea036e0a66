package scoring

import (
	"math"
	"sort"

	"github.com/okian/finno/internal/domain/features"
)

const (
	leafFeature  = -1
	minSplitGain = 1e-9
)

// node is one vertex of a regression tree. Leaves carry feature == -1.
// Rows with x[feature] <= threshold go left.
type node struct {
	feature   int
	threshold float64
	left      int
	right     int
	value     float64
	cover     float64
}

func (n node) isLeaf() bool { return n.feature == leafFeature }

type tree struct {
	nodes []node
}

func (t *tree) predict(x features.Vector) float64 {
	i := 0
	for !t.nodes[i].isLeaf() {
		n := t.nodes[i]
		if x[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
	return t.nodes[i].value
}

// expected is the cover-weighted mean leaf value, i.e. the tree output
// averaged over its training rows.
func (t *tree) expected() float64 {
	return t.expectedFrom(0)
}

func (t *tree) expectedFrom(i int) float64 {
	n := t.nodes[i]
	if n.isLeaf() {
		return n.value
	}
	l, r := t.nodes[n.left], t.nodes[n.right]
	return (l.cover*t.expectedFrom(n.left) + r.cover*t.expectedFrom(n.right)) / n.cover
}

func (t *tree) depth() int {
	return t.depthFrom(0)
}

func (t *tree) depthFrom(i int) int {
	n := t.nodes[i]
	if n.isLeaf() {
		return 0
	}
	return 1 + max(t.depthFrom(n.left), t.depthFrom(n.right))
}

func (t *tree) leaves() int {
	count := 0
	for _, n := range t.nodes {
		if n.isLeaf() {
			count++
		}
	}
	return count
}

// bounds limits the leaf values a subtree may produce so that monotone
// splits above it stay ordered.
type bounds struct {
	lower float64
	upper float64
}

var unbounded = bounds{lower: math.Inf(-1), upper: math.Inf(1)}

func (b bounds) clamp(v float64) float64 {
	return math.Max(b.lower, math.Min(b.upper, v))
}

type split struct {
	ok         bool
	feature    int
	threshold  float64
	gain       float64
	leftValue  float64
	rightValue float64
	left       []int
	right      []int
}

type frontier struct {
	node    int
	samples []int
	limit   bounds
	best    split
}

// grow fits one tree on the residuals of rows in samples, splitting the
// leaf with the largest gain first until maxLeaves is reached or no leaf
// can be split. A split on a constrained feature caps the left subtree and
// floors the right one (or the reverse) at the midpoint of the two child
// values, which keeps the whole tree monotone in that feature.
func (t *trainer) grow(x []features.Vector, residual []float64, samples []int, feats []int) *tree {
	tr := &tree{nodes: []node{t.leaf(residual, samples, unbounded)}}
	open := []frontier{{node: 0, samples: samples, limit: unbounded, best: t.bestSplit(x, residual, samples, feats, unbounded)}}

	for leaves := 1; leaves < t.maxLeaves; leaves++ {
		pick := -1
		for i, f := range open {
			if f.best.ok && (pick < 0 || f.best.gain > open[pick].best.gain) {
				pick = i
			}
		}
		if pick < 0 {
			break
		}
		f := open[pick]
		open = append(open[:pick], open[pick+1:]...)

		leftLimit, rightLimit := t.childBounds(f.limit, f.best)
		left, right := len(tr.nodes), len(tr.nodes)+1
		tr.nodes = append(tr.nodes, t.leaf(residual, f.best.left, leftLimit), t.leaf(residual, f.best.right, rightLimit))
		parent := &tr.nodes[f.node]
		parent.feature = f.best.feature
		parent.threshold = f.best.threshold
		parent.left = left
		parent.right = right

		open = append(open,
			frontier{node: left, samples: f.best.left, limit: leftLimit, best: t.bestSplit(x, residual, f.best.left, feats, leftLimit)},
			frontier{node: right, samples: f.best.right, limit: rightLimit, best: t.bestSplit(x, residual, f.best.right, feats, rightLimit)},
		)
	}
	return tr
}

// childBounds narrows the parent's bounds for the two children of s.
func (t *trainer) childBounds(parent bounds, s split) (left, right bounds) {
	left, right = parent, parent
	mid := (s.leftValue + s.rightValue) / 2
	switch t.monotone[s.feature] {
	case 1:
		left.upper = min(left.upper, mid)
		right.lower = max(right.lower, mid)
	case -1:
		left.lower = max(left.lower, mid)
		right.upper = min(right.upper, mid)
	}
	return left, right
}

func (t *trainer) leafValue(sum float64, n int, limit bounds) float64 {
	if n == 0 {
		return limit.clamp(0)
	}
	return limit.clamp(t.learningRate * sum / float64(n))
}

func (t *trainer) leaf(residual []float64, samples []int, limit bounds) node {
	sum := 0.0
	for _, i := range samples {
		sum += residual[i]
	}
	return node{feature: leafFeature, value: t.leafValue(sum, len(samples), limit), cover: float64(len(samples))}
}

// bestSplit scans every sampled feature for the threshold that most reduces
// squared error, subject to the minimum leaf size and to the feature's
// monotone constraint: a split whose child values run against it is
// skipped.
func (t *trainer) bestSplit(x []features.Vector, residual []float64, samples []int, feats []int, limit bounds) split {
	n := len(samples)
	best := split{gain: minSplitGain}
	if n < 2*t.minLeafSamples {
		return split{}
	}

	total := 0.0
	for _, i := range samples {
		total += residual[i]
	}

	order := make([]int, n)
	for _, f := range feats {
		copy(order, samples)
		sort.SliceStable(order, func(a, b int) bool { return x[order[a]][f] < x[order[b]][f] })

		leftSum := 0.0
		for k := 0; k < n-1; k++ {
			leftSum += residual[order[k]]
			nl, nr := k+1, n-k-1
			if nl < t.minLeafSamples || nr < t.minLeafSamples {
				continue
			}
			lo, hi := x[order[k]][f], x[order[k+1]][f]
			if lo == hi {
				continue
			}
			meanL := leftSum / float64(nl)
			meanR := (total - leftSum) / float64(nr)
			gain := float64(nl) * float64(nr) / float64(n) * (meanL - meanR) * (meanL - meanR)
			if gain <= best.gain {
				continue
			}
			valueL := t.leafValue(leftSum, nl, limit)
			valueR := t.leafValue(total-leftSum, nr, limit)
			if c := t.monotone[f]; (c > 0 && valueL > valueR) || (c < 0 && valueL < valueR) {
				continue
			}
			threshold := lo + (hi-lo)/2
			if !(threshold < hi) || math.IsInf(threshold, 0) {
				threshold = lo
			}
			best = split{ok: true, feature: f, threshold: threshold, gain: gain, leftValue: valueL, rightValue: valueR}
		}
	}
	if !best.ok {
		return split{}
	}
	for _, i := range samples {
		if x[i][best.feature] <= best.threshold {
			best.left = append(best.left, i)
		} else {
			best.right = append(best.right, i)
		}
	}
	return best
}
