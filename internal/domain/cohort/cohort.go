// Package cohort groups users into behavioural cohorts with k-means over
// standardized feature vectors.
package cohort

import (
	"math"
	"math/rand"

	"github.com/okian/finno/internal/domain/features"
	"gonum.org/v1/gonum/floats"
)

// Assignment maps every input user index to a cohort label in [0,K).
// The zero value means no clustering was possible.
type Assignment struct {
	Labels    []int             `json:"labels"`
	K         int               `json:"k"`
	Centroids []features.Vector `json:"centroids"`
	Inertia   float64           `json:"inertia"`
}

// Label returns the cohort of user i.
func (a Assignment) Label(i int) (int, bool) {
	if i < 0 || i >= len(a.Labels) {
		return 0, false
	}
	return a.Labels[i], true
}

// Members returns the user indexes in cohort label, ascending.
func (a Assignment) Members(label int) []int {
	var out []int
	for i, l := range a.Labels {
		if l == label {
			out = append(out, i)
		}
	}
	return out
}

// Empty reports whether the assignment has no labels.
func (a Assignment) Empty() bool {
	return len(a.Labels) == 0
}

// Cluster assigns each vector to one of min(maxK, n) cohorts. Fewer than two
// users yields the zero Assignment. The result is deterministic for a seed.
func Cluster(vectors []features.Vector, opts ...Option) Assignment {
	c := &clusterer{
		maxK:          defaultMaxK,
		seed:          defaultSeed,
		restarts:      defaultRestarts,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(c)
	}

	n := len(vectors)
	if n < 2 {
		return Assignment{}
	}
	k := min(c.maxK, n)
	x := features.FitStandardizer(vectors).TransformAll(vectors)
	rng := rand.New(rand.NewSource(c.seed))

	var best Assignment
	for r := 0; r < c.restarts; r++ {
		run := c.lloyd(x, seed(x, k, rng))
		if r == 0 || run.Inertia < best.Inertia {
			best = run
		}
	}
	return best
}

// seed picks k initial centroids with k-means++.
func seed(x []features.Vector, k int, rng *rand.Rand) []features.Vector {
	centroids := []features.Vector{x[rng.Intn(len(x))]}
	dist := make([]float64, len(x))
	for len(centroids) < k {
		total := 0.0
		for i, v := range x {
			dist[i] = nearest(v, centroids).dist
			total += dist[i]
		}
		if total == 0 {
			centroids = append(centroids, x[rng.Intn(len(x))])
			continue
		}
		target := rng.Float64() * total
		pick := len(x) - 1
		for i, d := range dist {
			target -= d
			if target < 0 {
				pick = i
				break
			}
		}
		centroids = append(centroids, x[pick])
	}
	return centroids
}

func (c *clusterer) lloyd(x []features.Vector, centroids []features.Vector) Assignment {
	k := len(centroids)
	labels := make([]int, len(x))
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < c.maxIterations; iter++ {
		changed := false
		for i, v := range x {
			if l := nearest(v, centroids).label; l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for i, v := range x {
			l := labels[i]
			if sums[l] == nil {
				sums[l] = make([]float64, features.Size)
			}
			floats.Add(sums[l], v[:])
			counts[l]++
		}
		for l := range centroids {
			if counts[l] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[l]), sums[l])
			copy(centroids[l][:], sums[l])
		}
	}

	inertia := 0.0
	for i, v := range x {
		d := floats.Distance(v[:], centroids[labels[i]][:], 2)
		inertia += d * d
	}
	return Assignment{Labels: labels, K: k, Centroids: centroids, Inertia: inertia}
}

type hit struct {
	label int
	dist  float64
}

// nearest returns the closest centroid by squared distance; ties go to the
// lower label.
func nearest(v features.Vector, centroids []features.Vector) hit {
	best := hit{label: -1, dist: math.Inf(1)}
	for l, c := range centroids {
		d := floats.Distance(v[:], c[:], 2)
		if d*d < best.dist {
			best = hit{label: l, dist: d * d}
		}
	}
	return best
}
