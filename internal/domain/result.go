package domain

import "math"

// Metadata carries the diagnostic context behind a prediction, including the
// raw classifier call before rule validation.
type Metadata struct {
	GrowthStage      string  `json:"growth_stage"`
	DaysAfterSowing  int     `json:"days_after_sowing"`
	Season           string  `json:"season"`
	MLPrediction     string  `json:"ml_prediction"`
	MLConfidence     float64 `json:"ml_confidence"`
	ValidationReason string  `json:"validation_reason"`
}

// PredictionResult is the packaged output returned to callers. Confidence
// fields are percentages (0-100, one decimal); it is never mutated after
// construction.
type PredictionResult struct {
	StressType    string   `json:"stress_type"`
	Severity      string   `json:"severity"`
	SeverityColor string   `json:"severity_color"`
	Confidence    float64  `json:"confidence"`
	Advisory      string   `json:"advisory"`
	Explanation   string   `json:"explanation"`
	Metadata      Metadata `json:"metadata"`
}

// Percent converts an internal [0,1] confidence to a percentage with one
// decimal place.
func Percent(confidence float64) float64 {
	return math.Round(confidence*1000) / 10
}
