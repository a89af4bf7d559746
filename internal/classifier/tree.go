package classifier

import (
	"sort"

	"golang.org/x/exp/rand"
)

// node is one tree node. Internal nodes carry a split; leaves carry the
// weighted class distribution of their training samples.
type node struct {
	feature   int
	threshold float64
	left      *node
	right     *node
	dist      [numClasses]float64
}

// descend walks the tree to the leaf for x. Samples with a feature value at
// or below the threshold go left.
func (n *node) descend(x [numFeatures]float64) *node {
	for n.left != nil {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n
}

// treeBuilder grows a single CART tree with Gini impurity splits over a
// random feature subset per node, recording impurity decreases per feature.
type treeBuilder struct {
	maxDepth    int
	maxFeatures int
	rng         *rand.Rand
	weights     [numClasses]float64
	importance  []float64
}

// split is a candidate partition of a node's samples.
type split struct {
	feature   int
	threshold float64
	score     float64 // weighted child impurity, lower is better
	valid     bool
}

func (b *treeBuilder) build(samples []sample, depth int) *node {
	counts := b.classWeights(samples)
	total := sum(counts)
	impurity := gini(counts, total)

	if depth >= b.maxDepth || len(samples) < 2 || impurity == 0 {
		return leaf(counts, total)
	}

	best := b.bestSplit(samples, impurity)
	if !best.valid {
		return leaf(counts, total)
	}

	b.importance[best.feature] += total * (impurity - best.score)

	left, right := partition(samples, best.feature, best.threshold)
	return &node{
		feature:   best.feature,
		threshold: best.threshold,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit scans a random subset of features for the threshold minimizing
// weighted child Gini impurity. Thresholds are midpoints between distinct
// consecutive sorted values.
func (b *treeBuilder) bestSplit(samples []sample, parentImpurity float64) split {
	best := split{score: parentImpurity}

	order := b.rng.Perm(numFeatures)
	sorted := make([]sample, len(samples))

	for _, feature := range order[:b.maxFeatures] {
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].x[feature] < sorted[j].x[feature]
		})

		var leftCounts [numClasses]float64
		rightCounts := b.classWeights(sorted)
		totalWeight := sum(rightCounts)

		for i := 0; i < len(sorted)-1; i++ {
			w := b.weights[sorted[i].label]
			leftCounts[sorted[i].label] += w
			rightCounts[sorted[i].label] -= w

			if sorted[i].x[feature] == sorted[i+1].x[feature] {
				continue
			}

			leftWeight := sum(leftCounts)
			rightWeight := totalWeight - leftWeight
			score := (leftWeight*gini(leftCounts, leftWeight) +
				rightWeight*gini(rightCounts, rightWeight)) / totalWeight

			if score < best.score {
				best = split{
					feature:   feature,
					threshold: (sorted[i].x[feature] + sorted[i+1].x[feature]) / 2,
					score:     score,
					valid:     true,
				}
			}
		}
	}
	return best
}

// classWeights sums balanced sample weights per class.
func (b *treeBuilder) classWeights(samples []sample) [numClasses]float64 {
	var counts [numClasses]float64
	for _, s := range samples {
		counts[s.label] += b.weights[s.label]
	}
	return counts
}

func partition(samples []sample, feature int, threshold float64) ([]sample, []sample) {
	left := make([]sample, 0, len(samples))
	right := make([]sample, 0, len(samples))
	for _, s := range samples {
		if s.x[feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}

// leaf builds a terminal node holding the normalized class distribution.
func leaf(counts [numClasses]float64, total float64) *node {
	n := &node{}
	if total == 0 {
		return n
	}
	for c := range counts {
		n.dist[c] = counts[c] / total
	}
	return n
}

// gini computes 1 - sum(p^2) over weighted class frequencies.
func gini(counts [numClasses]float64, total float64) float64 {
	if total == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, c := range counts {
		p := c / total
		sumSquares += p * p
	}
	return 1 - sumSquares
}

func sum(counts [numClasses]float64) float64 {
	t := 0.0
	for _, c := range counts {
		t += c
	}
	return t
}
