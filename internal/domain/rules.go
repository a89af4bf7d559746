package domain

// StressType identifies the classified crop stress.
type StressType string

const (
	StressMoisture     StressType = "moisture_stress"
	StressHeat         StressType = "heat_stress"
	StressWaterlogging StressType = "waterlogging"
	StressNone         StressType = "no_stress"
)

// StressTypes lists all classes in canonical order. The classifier breaks
// probability ties by this ordering.
var StressTypes = []StressType{StressMoisture, StressHeat, StressWaterlogging, StressNone}

// Classification is the raw classifier output before rule validation.
type Classification struct {
	StressType StressType
	Confidence float64
}

// Validation reasons identify which rule determined the final result.
const (
	ReasonLowConfidence    = "low_confidence"
	ReasonHighDryPeriod    = "high_dry_period"
	ReasonCriticalStage    = "critical_stage"
	ReasonSufficientRain   = "sufficient_rainfall"
	ReasonExtremeHeat      = "extreme_heat"
	ReasonCriticalHeat     = "critical_stage_heat"
	ReasonNormalTemp       = "normal_temperature"
	ReasonPoorDrainage     = "heavy_rainfall_poor_drainage"
	ReasonGoodDrainage     = "good_drainage"
	ReasonRecentHeavyRain  = "recent_heavy_rain"
	ReasonInsufficientRain = "insufficient_rainfall"
	ReasonOverrideMoisture = "rule_override_moisture"
	ReasonOverrideHeat     = "rule_override_heat"
	ReasonOverrideWater    = "rule_override_waterlogging"
	ReasonValidated        = "validated"
	ReasonValidatedNone    = "validated_no_stress"
)

// lowConfidenceGate is the classifier confidence below which every prediction
// is suppressed to no_stress before any per-type rule runs.
const lowConfidenceGate = 0.45

// criticalStages lists the yield-sensitive growth stages per crop.
var criticalStages = map[string][]string{
	"wheat":  {StageFlowering, StageGrainFilling},
	"rice":   {StageFlowering, StageGrainFilling},
	"maize":  {StageFlowering, StageGrainFilling},
	"cotton": {StageFlowering, StageBollDevelopment},
}

// ValidatedResult is the rule validator's output: the final stress call, the
// possibly adjusted confidence, and the reason tag of the rule that fired.
type ValidatedResult struct {
	StressType StressType
	Confidence float64
	Reason     string
}

// guard is one entry in an ordered rule chain. It returns a result and true
// when its condition matches; evaluation stops at the first match.
type guard func(fv FeatureVector, conf float64) (ValidatedResult, bool)

// Validate confirms, adjusts, or overrides a classification using the
// agronomic rule chains. It is total: every branch has an explicit fallthrough.
func Validate(fv FeatureVector, c Classification) ValidatedResult {
	if c.Confidence < lowConfidenceGate {
		return ValidatedResult{StressNone, 0.0, ReasonLowConfidence}
	}

	var chain []guard
	switch c.StressType {
	case StressMoisture:
		chain = moistureRules
	case StressHeat:
		chain = heatRules
	case StressWaterlogging:
		chain = waterloggingRules
	default:
		chain = noStressRules
	}

	for _, g := range chain {
		if res, ok := g(fv, c.Confidence); ok {
			return res
		}
	}
	return ValidatedResult{c.StressType, c.Confidence, ReasonValidated}
}

// inCriticalStage reports whether the crop is in a yield-sensitive stage.
func inCriticalStage(fv FeatureVector) bool {
	for _, stage := range criticalStages[fv.CropType] {
		if fv.GrowthStage == stage {
			return true
		}
	}
	return false
}

// moistureRules: clear dry-period signal, critical-stage amplification, then
// a false-positive filter when rain has been sufficient.
var moistureRules = []guard{
	func(fv FeatureVector, conf float64) (ValidatedResult, bool) {
		if fv.DryDaysNorm > 0.7 && fv.RollingRainfallNorm < 0.2 && fv.MoistureStress > 0.6 {
			return ValidatedResult{StressMoisture, max(conf, 0.85), ReasonHighDryPeriod}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, conf float64) (ValidatedResult, bool) {
		if inCriticalStage(fv) && fv.MoistureStress > 0.5 {
			return ValidatedResult{StressMoisture, min(conf*1.2, 0.95), ReasonCriticalStage}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.RollingRainfallNorm > 0.5 && fv.DryDaysNorm < 0.3 {
			return ValidatedResult{StressNone, 0.0, ReasonSufficientRain}, true
		}
		return ValidatedResult{}, false
	},
}

// heatRules: strong heat signal, critical-stage sensitivity, then a filter
// for normal temperatures.
var heatRules = []guard{
	func(fv FeatureVector, conf float64) (ValidatedResult, bool) {
		if fv.AvgTempNorm > 0.8 && fv.TempDeviationNorm > 0.7 {
			return ValidatedResult{StressHeat, max(conf, 0.85), ReasonExtremeHeat}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, conf float64) (ValidatedResult, bool) {
		if inCriticalStage(fv) && fv.HeatStress > 0.6 {
			return ValidatedResult{StressHeat, min(conf*1.15, 0.95), ReasonCriticalHeat}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.AvgTempNorm < 0.5 && fv.TempDeviationNorm < 0.4 {
			return ValidatedResult{StressNone, 0.0, ReasonNormalTemp}, true
		}
		return ValidatedResult{}, false
	},
}

// waterloggingRules: heavy rain on poor drainage, a sandy-soil filter, recent
// heavy rain, then a filter for insufficient rainfall.
var waterloggingRules = []guard{
	func(fv FeatureVector, conf float64) (ValidatedResult, bool) {
		if fv.RollingRainfallNorm > 0.7 && fv.SoilRetention > 0.35 {
			return ValidatedResult{StressWaterlogging, max(conf, 0.80), ReasonPoorDrainage}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.SoilRetention < 0.20 {
			return ValidatedResult{StressNone, 0.0, ReasonGoodDrainage}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, conf float64) (ValidatedResult, bool) {
		if fv.RainfallNorm > 0.8 && fv.RollingRainfallNorm > 0.6 {
			return ValidatedResult{StressWaterlogging, min(conf*1.1, 0.90), ReasonRecentHeavyRain}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.RollingRainfallNorm < 0.3 {
			return ValidatedResult{StressNone, 0.0, ReasonInsufficientRain}, true
		}
		return ValidatedResult{}, false
	},
}

// noStressRules: the classifier called no stress, but a critically elevated
// indicator (checked moisture, heat, waterlogging in that order) overrides it.
var noStressRules = []guard{
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.MoistureStress > 0.8 {
			return ValidatedResult{StressMoisture, 0.75, ReasonOverrideMoisture}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.HeatStress > 0.8 {
			return ValidatedResult{StressHeat, 0.75, ReasonOverrideHeat}, true
		}
		return ValidatedResult{}, false
	},
	func(fv FeatureVector, _ float64) (ValidatedResult, bool) {
		if fv.Waterlogging > 0.8 {
			return ValidatedResult{StressWaterlogging, 0.75, ReasonOverrideWater}, true
		}
		return ValidatedResult{}, false
	},
	func(_ FeatureVector, conf float64) (ValidatedResult, bool) {
		return ValidatedResult{StressNone, conf, ReasonValidatedNone}, true
	},
}
