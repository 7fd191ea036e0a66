package scoring

import "github.com/okian/finno/internal/domain/features"

// pathElement tracks one feature on the unique decision path walked by
// TreeSHAP. zero is the share of training cover that flows down the path
// when the feature is absent, one is 1 when x itself follows the path.
type pathElement struct {
	feature int
	zero    float64
	one     float64
	weight  float64
}

// shap returns exact Shapley values of the ensemble output at x. The sum of
// the returned values plus expected() equals predict(x).
func (e ensemble) shap(x features.Vector) features.Vector {
	var phi features.Vector
	for _, t := range e.trees {
		t.shap(x, &phi)
	}
	return phi
}

func (t *tree) shap(x features.Vector, phi *features.Vector) {
	if len(t.nodes) < 2 {
		return
	}
	t.shapRecurse(x, phi, 0, nil, 0, 1, 1, leafFeature)
}

func (t *tree) shapRecurse(x features.Vector, phi *features.Vector, idx int,
	parent []pathElement, depth int, zero, one float64, feature int) {
	path := make([]pathElement, depth+1)
	copy(path, parent[:depth])
	extendPath(path, depth, zero, one, feature)

	n := t.nodes[idx]
	if n.isLeaf() {
		for i := 1; i <= depth; i++ {
			w := unwoundPathSum(path, depth, i)
			el := path[i]
			phi[el.feature] += w * (el.one - el.zero) * n.value
		}
		return
	}

	hot, cold := n.left, n.right
	if x[n.feature] > n.threshold {
		hot, cold = cold, hot
	}
	hotZero := t.nodes[hot].cover / n.cover
	coldZero := t.nodes[cold].cover / n.cover

	incomingZero, incomingOne := 1.0, 1.0
	for i := 0; i <= depth; i++ {
		if path[i].feature == n.feature {
			incomingZero = path[i].zero
			incomingOne = path[i].one
			unwindPath(path, depth, i)
			depth--
			break
		}
	}

	t.shapRecurse(x, phi, hot, path, depth+1, hotZero*incomingZero, incomingOne, n.feature)
	t.shapRecurse(x, phi, cold, path, depth+1, coldZero*incomingZero, 0, n.feature)
}

func extendPath(path []pathElement, depth int, zero, one float64, feature int) {
	weight := 0.0
	if depth == 0 {
		weight = 1
	}
	path[depth] = pathElement{feature: feature, zero: zero, one: one, weight: weight}
	for i := depth - 1; i >= 0; i-- {
		path[i+1].weight += one * path[i].weight * float64(i+1) / float64(depth+1)
		path[i].weight = zero * path[i].weight * float64(depth-i) / float64(depth+1)
	}
}

func unwindPath(path []pathElement, depth, index int) {
	one, zero := path[index].one, path[index].zero
	next := path[depth].weight
	for i := depth - 1; i >= 0; i-- {
		if one != 0 {
			tmp := path[i].weight
			path[i].weight = next * float64(depth+1) / (float64(i+1) * one)
			next = tmp - path[i].weight*zero*float64(depth-i)/float64(depth+1)
		} else {
			path[i].weight = path[i].weight * float64(depth+1) / (zero * float64(depth-i))
		}
	}
	for i := index; i < depth; i++ {
		path[i].feature = path[i+1].feature
		path[i].zero = path[i+1].zero
		path[i].one = path[i+1].one
	}
}

func unwoundPathSum(path []pathElement, depth, index int) float64 {
	one, zero := path[index].one, path[index].zero
	next := path[depth].weight
	total := 0.0
	for i := depth - 1; i >= 0; i-- {
		switch {
		case one != 0:
			tmp := next * float64(depth+1) / (float64(i+1) * one)
			total += tmp
			next = path[i].weight - tmp*zero*float64(depth-i)/float64(depth+1)
		case zero != 0:
			total += path[i].weight / zero / (float64(depth-i) / float64(depth+1))
		}
	}
	return total
}
