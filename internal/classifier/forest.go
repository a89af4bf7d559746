// Package classifier implements the stress classifier: a bagged ensemble of
// CART decision trees trained once at startup on synthetically generated,
// rule-labeled samples. Training is deterministic under a fixed seed; the
// trained forest is immutable and safe for concurrent reads.
package classifier

import (
	"math"

	"github.com/montanaflynn/stats"

	"github.com/fieldsense/crop-stress-service/internal/domain"
)

// FeatureNames lists the model's input features in vector order.
var FeatureNames = []string{
	"days_after_sowing",
	"season_encoded",
	"soil_retention",
	"avg_temp_norm",
	"rainfall_norm",
	"rolling_rainfall_norm",
	"dry_days_norm",
	"temp_deviation_norm",
	"moisture_stress",
	"heat_stress",
	"waterlogging",
}

const (
	numFeatures = 11
	numClasses  = 4
)

// Config holds forest hyperparameters. The defaults are contractual: changing
// them changes every downstream prediction.
type Config struct {
	Seed     uint64
	Trees    int
	MaxDepth int
	Samples  int
}

// DefaultConfig returns the production hyperparameters.
func DefaultConfig() Config {
	return Config{Seed: 42, Trees: 50, MaxDepth: 10, Samples: 1000}
}

// Forest is a trained ensemble. It is read-only after Train returns.
type Forest struct {
	trees      []*node
	importance []float64
}

// Train builds the ensemble from rule-labeled synthetic samples. Identical
// configs always produce identical forests.
func Train(cfg Config) *Forest {
	samples := generateSamples(cfg)
	weights := balancedClassWeights(samples)

	rng := newRNG(cfg.Seed + 1)
	maxFeatures := int(math.Sqrt(numFeatures)) // square root of the feature count, 3 of 11

	f := &Forest{
		trees:      make([]*node, 0, cfg.Trees),
		importance: make([]float64, numFeatures),
	}
	for range cfg.Trees {
		boot := bootstrap(samples, rng)
		b := &treeBuilder{
			maxDepth:    cfg.MaxDepth,
			maxFeatures: maxFeatures,
			rng:         rng,
			weights:     weights,
			importance:  make([]float64, numFeatures),
		}
		root := b.build(boot, 0)
		f.trees = append(f.trees, root)
		accumulateNormalized(f.importance, b.importance)
	}

	normalize(f.importance)
	return f
}

// Classify returns the argmax class of the ensemble's averaged probability
// distribution, with ties broken by the fixed class ordering.
func (f *Forest) Classify(fv domain.FeatureVector) domain.Classification {
	probs := f.Probabilities(fv)

	best := 0
	for i := 1; i < numClasses; i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return domain.Classification{
		StressType: domain.StressTypes[best],
		Confidence: probs[best],
	}
}

// Probabilities returns the averaged class distribution for a feature vector,
// ordered as domain.StressTypes.
func (f *Forest) Probabilities(fv domain.FeatureVector) [numClasses]float64 {
	x := vectorize(fv)

	var probs [numClasses]float64
	for _, root := range f.trees {
		leaf := root.descend(x)
		for c, p := range leaf.dist {
			probs[c] += p
		}
	}
	for c := range probs {
		probs[c] /= float64(len(f.trees))
	}
	return probs
}

// Importance returns the normalized mean impurity-decrease importance per
// feature name.
func (f *Forest) Importance() map[string]float64 {
	out := make(map[string]float64, numFeatures)
	for i, name := range FeatureNames {
		out[name] = f.importance[i]
	}
	return out
}

// vectorize flattens a FeatureVector into model input order.
func vectorize(fv domain.FeatureVector) [numFeatures]float64 {
	return [numFeatures]float64{
		float64(fv.DaysAfterSowing),
		float64(fv.SeasonCode),
		fv.SoilRetention,
		fv.AvgTempNorm,
		fv.RainfallNorm,
		fv.RollingRainfallNorm,
		fv.DryDaysNorm,
		fv.TempDeviationNorm,
		fv.MoistureStress,
		fv.HeatStress,
		fv.Waterlogging,
	}
}

// balancedClassWeights computes n/(k*count) per class so rare labels carry
// proportionally more weight during splitting.
func balancedClassWeights(samples []sample) [numClasses]float64 {
	var counts [numClasses]int
	for _, s := range samples {
		counts[s.label]++
	}
	var w [numClasses]float64
	n := float64(len(samples))
	for c, count := range counts {
		if count > 0 {
			w[c] = n / (numClasses * float64(count))
		}
	}
	return w
}

// accumulateNormalized adds a tree's importance, normalized to sum one, into
// the forest total.
func accumulateNormalized(total, tree []float64) {
	sum, err := stats.Sum(stats.Float64Data(tree))
	if err != nil || sum == 0 {
		return
	}
	for i, v := range tree {
		total[i] += v / sum
	}
}

func normalize(vals []float64) {
	sum, err := stats.Sum(stats.Float64Data(vals))
	if err != nil || sum == 0 {
		return
	}
	for i := range vals {
		vals[i] /= sum
	}
}
