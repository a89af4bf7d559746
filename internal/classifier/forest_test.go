package classifier

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsense/crop-stress-service/internal/domain"
)

// trainedForest shares one default-config forest across tests; training is the
// expensive part and the forest is immutable.
var trainedForest = sync.OnceValue(func() *Forest {
	return Train(DefaultConfig())
})

func TestTrain_Deterministic(t *testing.T) {
	cfg := Config{Seed: 42, Trees: 10, MaxDepth: 8, Samples: 300}
	a := Train(cfg)
	b := Train(cfg)

	assert.Equal(t, a.Importance(), b.Importance())

	probes := []domain.FeatureVector{
		{DaysAfterSowing: 80, SoilRetention: 0.35, MoistureStress: 0.9, DryDaysNorm: 0.8, RollingRainfallNorm: 0.1},
		{DaysAfterSowing: 30, SoilRetention: 0.45, Waterlogging: 0.9, RollingRainfallNorm: 0.9, RainfallNorm: 0.8},
		{DaysAfterSowing: 60, SoilRetention: 0.25, HeatStress: 0.4, MoistureStress: 0.3},
	}
	for _, fv := range probes {
		assert.Equal(t, a.Probabilities(fv), b.Probabilities(fv))
	}
}

func TestTrain_SeedChangesModel(t *testing.T) {
	cfg := Config{Seed: 42, Trees: 10, MaxDepth: 8, Samples: 300}
	other := cfg
	other.Seed = 7

	a := Train(cfg)
	b := Train(other)
	assert.NotEqual(t, a.Importance(), b.Importance())
}

func TestClassify_ClearConditions(t *testing.T) {
	f := trainedForest()

	tests := []struct {
		name string
		fv   domain.FeatureVector
		want domain.StressType
	}{
		{
			name: "deep moisture stress region",
			fv: domain.FeatureVector{
				DaysAfterSowing: 80, SoilRetention: 0.20,
				AvgTempNorm: 0.5, RollingRainfallNorm: 0.05, DryDaysNorm: 0.9,
				TempDeviationNorm: 0.5, MoistureStress: 0.95, HeatStress: 0.4, Waterlogging: 0.1,
			},
			want: domain.StressMoisture,
		},
		{
			name: "deep heat stress region",
			fv: domain.FeatureVector{
				DaysAfterSowing: 60, SoilRetention: 0.35,
				AvgTempNorm: 0.95, RainfallNorm: 0.3, RollingRainfallNorm: 0.4, DryDaysNorm: 0.3,
				TempDeviationNorm: 0.9, MoistureStress: 0.4, HeatStress: 0.95, Waterlogging: 0.2,
			},
			want: domain.StressHeat,
		},
		{
			name: "deep waterlogging region",
			fv: domain.FeatureVector{
				DaysAfterSowing: 30, SoilRetention: 0.45,
				AvgTempNorm: 0.4, RainfallNorm: 0.9, RollingRainfallNorm: 0.95, DryDaysNorm: 0.05,
				TempDeviationNorm: 0.5, MoistureStress: 0.2, HeatStress: 0.3, Waterlogging: 0.95,
			},
			want: domain.StressWaterlogging,
		},
		{
			name: "calm conditions",
			fv: domain.FeatureVector{
				DaysAfterSowing: 50, SoilRetention: 0.35,
				AvgTempNorm: 0.4, RainfallNorm: 0.3, RollingRainfallNorm: 0.3, DryDaysNorm: 0.2,
				TempDeviationNorm: 0.5, MoistureStress: 0.3, HeatStress: 0.3, Waterlogging: 0.3,
			},
			want: domain.StressNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := f.Classify(tt.fv)
			assert.Equal(t, tt.want, c.StressType)
			assert.Greater(t, c.Confidence, 0.5)
		})
	}
}

func TestProbabilities_SumToOne(t *testing.T) {
	f := trainedForest()

	fvs := []domain.FeatureVector{
		{DaysAfterSowing: 10, SoilRetention: 0.45, Waterlogging: 0.8, RollingRainfallNorm: 0.8},
		{DaysAfterSowing: 100, SoilRetention: 0.15, MoistureStress: 0.7, DryDaysNorm: 0.6},
		{},
	}
	for _, fv := range fvs {
		probs := f.Probabilities(fv)
		var sum float64
		for _, p := range probs {
			assert.GreaterOrEqual(t, p, 0.0)
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestImportance(t *testing.T) {
	f := trainedForest()

	imp := f.Importance()
	require.Len(t, imp, len(FeatureNames))

	var sum float64
	for _, name := range FeatureNames {
		v, ok := imp[name]
		require.True(t, ok, "missing feature %q", name)
		assert.GreaterOrEqual(t, v, 0.0)
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// The labeling rules key off the blended indicators, so together they
	// should carry a substantial share of the importance mass.
	indicators := imp["moisture_stress"] + imp["heat_stress"] + imp["waterlogging"] +
		imp["dry_days_norm"] + imp["temp_deviation_norm"] + imp["rolling_rainfall_norm"]
	assert.Greater(t, indicators, 0.5)
}

func TestLabelFor_Precedence(t *testing.T) {
	base := func() [numFeatures]float64 {
		var x [numFeatures]float64
		x[2] = 0.3
		return x
	}

	t.Run("moisture beats heat and waterlogging", func(t *testing.T) {
		x := base()
		x[8], x[6] = 0.9, 0.9 // moisture + dry days
		x[9], x[7] = 0.9, 0.9 // heat + deviation
		x[10], x[5] = 0.9, 0.9
		assert.Equal(t, labelMoisture, labelFor(x))
	})

	t.Run("heat beats waterlogging", func(t *testing.T) {
		x := base()
		x[9], x[7] = 0.9, 0.9
		x[10], x[5] = 0.9, 0.9
		assert.Equal(t, labelHeat, labelFor(x))
	})

	t.Run("single condition alone is not enough", func(t *testing.T) {
		x := base()
		x[8] = 0.9 // elevated moisture but no dry spell
		assert.Equal(t, labelNoStress, labelFor(x))
	})
}
