package domain

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidSowingDate marks a sowing date that could not be parsed. It is the
// only failure the pipeline itself can produce; adapters map it to a 400.
var ErrInvalidSowingDate = errors.New("invalid sowing date")

// WeatherObservation holds the raw weather readings for a field.
type WeatherObservation struct {
	AvgTemp                 float64 `json:"avg_temp"`
	Rainfall                float64 `json:"rainfall"`
	Rolling7DayRainfall     float64 `json:"rolling_7day_rainfall"`
	ConsecutiveDryDays      int     `json:"consecutive_dry_days"`
	TempDeviationFromNormal float64 `json:"temp_deviation_from_normal"`
}

// RawInput is an assessment request as received from callers. It is never
// mutated after decoding; all derived state lives in FeatureVector.
type RawInput struct {
	CropType   string             `json:"crop_type"`
	SowingDate string             `json:"sowing_date"`
	SoilType   string             `json:"soil_type"`
	Season     string             `json:"season"`
	Weather    WeatherObservation `json:"weather"`
}

// sowingDateLayouts are tried in order when parsing a sowing date.
var sowingDateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"}

// parseSowingDate parses a sowing date in YYYY-MM-DD or RFC 3339 form.
func parseSowingDate(s string) (time.Time, error) {
	for _, layout := range sowingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidSowingDate, s)
}

// RawRequest represents an unprocessed assessment message from the source topic.
type RawRequest struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// OutputMessage is a serialized prediction result destined for the sink topic.
type OutputMessage struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}
