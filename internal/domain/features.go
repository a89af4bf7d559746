package domain

import (
	"strings"
)

// Stage names for the crop lifecycle. Which names apply depends on the crop;
// StageUnknown is used for unrecognized crops and StagePostMaturity for days
// beyond the last tabled range.
const (
	StageGermination     = "germination"
	StageTillering       = "tillering"
	StageStemElongation  = "stem_elongation"
	StageVegetative      = "vegetative"
	StageFlowering       = "flowering"
	StageGrainFilling    = "grain_filling"
	StageBollDevelopment = "boll_development"
	StageMaturity        = "maturity"
	StagePostMaturity    = "post_maturity"
	StageUnknown         = "unknown"
)

// stageRange maps an inclusive days-after-sowing interval to a growth stage.
type stageRange struct {
	minDays int
	maxDays int
	stage   string
}

// growthStages holds the per-crop lifecycle tables. Ranges are contiguous
// closed intervals; only days beyond the final range fall through to
// post_maturity.
var growthStages = map[string][]stageRange{
	"wheat": {
		{0, 21, StageGermination},
		{22, 45, StageTillering},
		{46, 75, StageStemElongation},
		{76, 105, StageFlowering},
		{106, 135, StageGrainFilling},
		{136, 150, StageMaturity},
	},
	"rice": {
		{0, 20, StageGermination},
		{21, 40, StageTillering},
		{41, 65, StageStemElongation},
		{66, 95, StageFlowering},
		{96, 120, StageGrainFilling},
		{121, 140, StageMaturity},
	},
	"maize": {
		{0, 15, StageGermination},
		{16, 35, StageVegetative},
		{36, 55, StageFlowering},
		{56, 85, StageGrainFilling},
		{86, 110, StageMaturity},
	},
	"cotton": {
		{0, 25, StageGermination},
		{26, 60, StageVegetative},
		{61, 95, StageFlowering},
		{96, 145, StageBollDevelopment},
		{146, 180, StageMaturity},
	},
}

// seasonCodes maps season synonyms to the three numeric codes. Unrecognized
// seasons take the monsoon code (0).
var seasonCodes = map[string]int{
	"monsoon": 0,
	"kharif":  0,
	"winter":  1,
	"rabi":    1,
	"summer":  2,
	"zaid":    2,
}

// defaultSoilRetention is the mid-range water retention applied to soil types
// missing from the table.
const defaultSoilRetention = 0.30

// soilRetention maps normalized soil type names to water retention factors.
var soilRetention = map[string]float64{
	"clay":       0.45,
	"clay_loam":  0.40,
	"loam":       0.35,
	"sandy_loam": 0.25,
	"sandy":      0.15,
	"silt":       0.38,
	"silt_loam":  0.35,
}

// FeatureVector is the derived, read-only input to classification, validation,
// severity scoring, and explanation. It is created once per assessment and
// never mutated downstream.
type FeatureVector struct {
	CropType string `json:"crop_type"`
	SoilType string `json:"soil_type"`
	Season   string `json:"season"`

	DaysAfterSowing int    `json:"days_after_sowing"`
	GrowthStage     string `json:"growth_stage"`
	SeasonCode      int    `json:"season_encoded"`

	SoilRetention float64 `json:"soil_retention"`

	AvgTempNorm         float64 `json:"avg_temp_norm"`
	RainfallNorm        float64 `json:"rainfall_norm"`
	RollingRainfallNorm float64 `json:"rolling_rainfall_norm"`
	DryDaysNorm         float64 `json:"dry_days_norm"`
	TempDeviationNorm   float64 `json:"temp_deviation_norm"`

	MoistureStress float64 `json:"moisture_stress"`
	HeatStress     float64 `json:"heat_stress"`
	Waterlogging   float64 `json:"waterlogging"`
}

// EngineerFeatures derives a FeatureVector from a raw assessment request.
// Unrecognized crop, soil, and season values resolve to documented defaults;
// the only possible error is an unparseable sowing date.
func EngineerFeatures(in RawInput) (FeatureVector, error) {
	cropType := strings.ToLower(strings.TrimSpace(in.CropType))
	if cropType == "" {
		cropType = "wheat"
	}
	soilType := strings.TrimSpace(in.SoilType)
	if soilType == "" {
		soilType = "loam"
	}
	season := strings.TrimSpace(in.Season)
	if season == "" {
		season = "monsoon"
	}

	days, err := daysAfterSowing(in.SowingDate)
	if err != nil {
		return FeatureVector{}, err
	}

	fv := FeatureVector{
		CropType:        cropType,
		SoilType:        soilType,
		Season:          season,
		DaysAfterSowing: days,
		GrowthStage:     growthStage(cropType, days),
		SeasonCode:      encodeSeason(season),
		SoilRetention:   soilRetentionFactor(soilType),
	}

	fv.AvgTempNorm = clamp01((in.Weather.AvgTemp - 15) / 30)              // 15–45°C
	fv.RainfallNorm = clamp01(in.Weather.Rainfall / 100)                  // 0–100mm
	fv.RollingRainfallNorm = clamp01(in.Weather.Rolling7DayRainfall / 200) // 0–200mm
	fv.DryDaysNorm = clamp01(float64(in.Weather.ConsecutiveDryDays) / 14) // 0–14 days
	fv.TempDeviationNorm = clamp01((in.Weather.TempDeviationFromNormal + 10) / 20)

	computeIndicators(&fv)
	return fv, nil
}

// daysAfterSowing returns whole days between the sowing date and the package
// clock's now, clamped at zero for future dates.
func daysAfterSowing(sowingDate string) (int, error) {
	sowing, err := parseSowingDate(sowingDate)
	if err != nil {
		return 0, err
	}
	days := int(clock.Now().Sub(sowing).Hours() / 24)
	if days < 0 {
		return 0, nil
	}
	return days, nil
}

// growthStage looks up the crop's stage table; the first inclusive range
// containing days wins. Days beyond every range are post_maturity, and
// unrecognized crops are unknown.
func growthStage(cropType string, days int) string {
	ranges, ok := growthStages[cropType]
	if !ok {
		return StageUnknown
	}
	for _, r := range ranges {
		if days >= r.minDays && days <= r.maxDays {
			return r.stage
		}
	}
	return StagePostMaturity
}

func encodeSeason(season string) int {
	return seasonCodes[strings.ToLower(season)]
}

func soilRetentionFactor(soilType string) float64 {
	key := strings.ReplaceAll(strings.ToLower(soilType), " ", "_")
	if r, ok := soilRetention[key]; ok {
		return r
	}
	return defaultSoilRetention
}

// computeIndicators fills the three stress indicator blends. Weights are
// contractual constants.
func computeIndicators(fv *FeatureVector) {
	rainfallDeficit := 1.0 - fv.RollingRainfallNorm
	soilDeficit := 1.0 - fv.SoilRetention
	fv.MoistureStress = clamp01(fv.DryDaysNorm*0.4 + rainfallDeficit*0.4 + soilDeficit*0.2)

	fv.HeatStress = clamp01(fv.AvgTempNorm*0.6 + fv.TempDeviationNorm*0.4)

	fv.Waterlogging = clamp01(fv.RainfallNorm*0.3 + fv.RollingRainfallNorm*0.5 + fv.SoilRetention*0.2)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
