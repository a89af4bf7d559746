package domain

import "strings"

// Severity levels and their display colors.
const (
	SeverityNone   = "none"
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"

	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorAmber  = "amber"
	ColorRed    = "red"
)

// escalationStages are the growth stages that raise severity one level
// regardless of crop.
var escalationStages = map[string]bool{
	StageFlowering:       true,
	StageGrainFilling:    true,
	StageBollDevelopment: true,
}

var severityColors = map[string]string{
	SeverityLow:    ColorYellow,
	SeverityMedium: ColorAmber,
	SeverityHigh:   ColorRed,
}

// Score maps a validated stress call to a severity level and display color.
// no_stress is always (none, green). The base level comes from confidence
// thresholds; escalations apply independently and cap at high.
func Score(stress StressType, confidence float64, fv FeatureVector) (string, string) {
	if stress == StressNone {
		return SeverityNone, ColorGreen
	}

	var severity string
	switch {
	case confidence >= 0.80:
		severity = SeverityHigh
	case confidence >= 0.60:
		severity = SeverityMedium
	default:
		severity = SeverityLow
	}

	if escalationStages[fv.GrowthStage] {
		severity = escalate(severity)
	}

	// Sandy soil worsens moisture stress; it cannot lift low to medium.
	if stress == StressMoisture && fv.SoilRetention < 0.20 && severity == SeverityMedium {
		severity = SeverityHigh
	}

	// The literal season string, not the encoded code: "zaid" shares the
	// summer code but does not trigger this escalation.
	if stress == StressHeat && strings.EqualFold(fv.Season, "summer") && severity == SeverityMedium {
		severity = SeverityHigh
	}

	return severity, severityColors[severity]
}

// escalate raises severity one level, capped at high.
func escalate(severity string) string {
	switch severity {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	default:
		return severity
	}
}

// ThresholdRef pairs the confidence and indicator levels associated with a
// severity tier. Reference data for model introspection, not used in scoring.
type ThresholdRef struct {
	Confidence float64 `json:"confidence"`
	Indicator  float64 `json:"indicator"`
}

// SeverityThresholds returns the reference threshold table per stress type.
func SeverityThresholds(stress StressType) map[string]ThresholdRef {
	switch stress {
	case StressMoisture, StressWaterlogging:
		return map[string]ThresholdRef{
			SeverityLow:    {0.45, 0.50},
			SeverityMedium: {0.60, 0.65},
			SeverityHigh:   {0.80, 0.80},
		}
	case StressHeat:
		return map[string]ThresholdRef{
			SeverityLow:    {0.45, 0.55},
			SeverityMedium: {0.60, 0.70},
			SeverityHigh:   {0.80, 0.85},
		}
	default:
		return map[string]ThresholdRef{}
	}
}
