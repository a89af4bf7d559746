package classifier

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// sample is one rule-labeled training example.
type sample struct {
	x     [numFeatures]float64
	label int
}

// Class indices into the label space, matching domain.StressTypes order.
const (
	labelMoisture = iota
	labelHeat
	labelWaterlogging
	labelNoStress
)

func newRNG(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// generateSamples draws cfg.Samples synthetic feature vectors uniformly across
// each feature's valid domain and labels them with the fixed precedence rules.
// The ensemble learns to reproduce these labels; the rules are the ground
// truth this system encodes, not field data.
func generateSamples(cfg Config) []sample {
	rng := newRNG(cfg.Seed)
	unit := distuv.Uniform{Min: 0, Max: 1, Src: rng}
	soil := distuv.Uniform{Min: 0.15, Max: 0.45, Src: rng}

	samples := make([]sample, 0, cfg.Samples)
	for range cfg.Samples {
		var x [numFeatures]float64
		x[0] = float64(rng.Intn(150)) // days_after_sowing
		x[1] = float64(rng.Intn(3))   // season_encoded
		x[2] = soil.Rand()            // soil_retention
		for i := 3; i < numFeatures; i++ {
			x[i] = unit.Rand()
		}
		samples = append(samples, sample{x: x, label: labelFor(x)})
	}
	return samples
}

// labelFor applies the fixed labeling precedence: moisture, then heat, then
// waterlogging, else no stress.
func labelFor(x [numFeatures]float64) int {
	moisture, heat, water := x[8], x[9], x[10]
	dryDays, tempDev, rollingRain := x[6], x[7], x[5]

	switch {
	case moisture > 0.6 && dryDays > 0.5:
		return labelMoisture
	case heat > 0.7 && tempDev > 0.6:
		return labelHeat
	case water > 0.7 && rollingRain > 0.7:
		return labelWaterlogging
	default:
		return labelNoStress
	}
}

// bootstrap draws len(samples) examples with replacement.
func bootstrap(samples []sample, rng *rand.Rand) []sample {
	out := make([]sample, len(samples))
	for i := range out {
		out[i] = samples[rng.Intn(len(samples))]
	}
	return out
}
