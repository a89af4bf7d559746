package domain

import (
	"fmt"
	"math"
	"strings"
)

// Explain renders the human-readable explanation for a validated stress call.
// Output is assembled from fixed narrative fragments in a fixed order, joined
// by single spaces; fragment wording is contractual.
func Explain(stress StressType, fv FeatureVector) string {
	switch stress {
	case StressNone:
		return explainNoStress(fv)
	case StressMoisture:
		return explainMoisture(fv)
	case StressHeat:
		return explainHeat(fv)
	case StressWaterlogging:
		return explainWaterlogging(fv)
	}
	return "Stress detected based on current conditions."
}

func explainNoStress(fv FeatureVector) string {
	return fmt.Sprintf(
		"Crop is currently in %s stage with favorable conditions. "+
			"Weather parameters are within normal range for %s season. "+
			"Continue regular monitoring and field management practices.",
		fv.GrowthStage, fv.Season,
	)
}

func explainMoisture(fv FeatureVector) string {
	parts := []string{
		fmt.Sprintf("Moisture stress detected in %s during %s stage.", fv.CropType, fv.GrowthStage),
	}

	if fv.DryDaysNorm > 0.5 {
		dryDays := int(math.Round(fv.DryDaysNorm * 14))
		parts = append(parts, fmt.Sprintf("Field has experienced approximately %d consecutive dry days.", dryDays))
	}

	if fv.RollingRainfallNorm < 0.4 {
		parts = append(parts, fmt.Sprintf("Recent rainfall has been below normal levels for %s season.", fv.Season))
	}

	parts = append(parts, fmt.Sprintf("Soil type (%s) has moderate water retention capacity.", fv.SoilType))

	if fv.GrowthStage == StageFlowering || fv.GrowthStage == StageGrainFilling {
		parts = append(parts, "This is a critical growth stage - moisture stress can significantly impact yield.")
	}

	parts = append(parts, fmt.Sprintf("Seasonal baseline applied: %s.", fv.Season))
	return strings.Join(parts, " ")
}

func explainHeat(fv FeatureVector) string {
	// Reverse the normalization to quote an approximate temperature.
	estimatedTemp := 15 + fv.AvgTempNorm*30

	parts := []string{
		fmt.Sprintf("Heat stress detected in %s during %s stage.", fv.CropType, fv.GrowthStage),
		fmt.Sprintf("Current temperatures (approximately %.1f°C) are above optimal range.", estimatedTemp),
	}

	if fv.TempDeviationNorm > 0.6 {
		parts = append(parts, "Temperatures are significantly higher than historical averages for this period.")
	}

	parts = append(parts, "High temperatures increase evapotranspiration, raising water demand.")

	if fv.GrowthStage == StageFlowering || fv.GrowthStage == StageGrainFilling {
		parts = append(parts, "Heat stress during this critical stage can cause flower abortion and reduce grain formation.")
	}

	parts = append(parts, fmt.Sprintf("Seasonal baseline applied: %s.", fv.Season))
	return strings.Join(parts, " ")
}

func explainWaterlogging(fv FeatureVector) string {
	parts := []string{
		fmt.Sprintf("Waterlogging risk detected in %s during %s stage.", fv.CropType, fv.GrowthStage),
	}

	if fv.RollingRainfallNorm > 0.6 {
		estimatedRainfall := int(fv.RollingRainfallNorm * 200)
		parts = append(parts, fmt.Sprintf("Cumulative rainfall over past 7 days (approximately %dmm) is above normal.", estimatedRainfall))
	}

	if fv.SoilRetention > 0.35 {
		parts = append(parts, fmt.Sprintf("Soil type (%s) has high water retention, reducing drainage efficiency.", fv.SoilType))
	}

	parts = append(parts, "Excess water reduces soil oxygen levels, affecting root respiration and nutrient uptake.")

	switch fv.GrowthStage {
	case StageGermination, StageVegetative, StageTillering:
		parts = append(parts, "Waterlogging during early growth stages can severely damage root systems.")
	}

	parts = append(parts, fmt.Sprintf("Seasonal baseline applied: %s.", fv.Season))
	return strings.Join(parts, " ")
}

// advisories holds the canned advisory per stress type and severity tier.
var advisories = map[StressType]map[string]string{
	StressMoisture: {
		SeverityHigh:   "Increase irrigation frequency by 30-40% immediately. Apply mulch to reduce evaporation. Monitor soil moisture daily.",
		SeverityMedium: "Increase irrigation frequency by 20%. Consider light irrigation at critical times. Monitor crop stress symptoms.",
		SeverityLow:    "Plan supplemental irrigation. Monitor weather forecast and soil moisture levels closely.",
	},
	StressHeat: {
		SeverityHigh:   "Increase irrigation to maintain soil moisture. Avoid field operations during peak heat hours. Consider protective measures for sensitive stages.",
		SeverityMedium: "Maintain adequate soil moisture through regular irrigation. Monitor crop canopy temperature. Avoid stress-inducing operations.",
		SeverityLow:    "Ensure adequate water supply. Monitor temperature trends and crop response.",
	},
	StressWaterlogging: {
		SeverityHigh:   "Implement emergency drainage immediately. Avoid field operations to prevent soil compaction. Monitor for disease symptoms.",
		SeverityMedium: "Improve field drainage. Reduce irrigation. Allow soil to dry before next irrigation cycle.",
		SeverityLow:    "Monitor drainage conditions. Adjust irrigation schedule based on rainfall. Check soil moisture before irrigation.",
	},
}

// Advise returns the actionable advisory for a stress type and severity.
func Advise(stress StressType, severity string) string {
	if stress == StressNone {
		return "Continue regular field monitoring and standard crop management practices."
	}
	if tiers, ok := advisories[stress]; ok {
		if msg, ok := tiers[severity]; ok {
			return msg
		}
	}
	return "Monitor field conditions and adjust management practices accordingly."
}
