package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldsense/crop-stress-service/internal/domain"
)

// Predictor is the slice of the core the stream pipeline needs.
type Predictor interface {
	Predict(in domain.RawInput) (domain.PredictionResult, error)
}

// AssessmentTransformer implements Transformer by decoding a raw request and
// running it through the prediction pipeline.
type AssessmentTransformer struct {
	predictor Predictor
	logger    *slog.Logger
}

// NewTransformer creates an AssessmentTransformer.
func NewTransformer(predictor Predictor, logger *slog.Logger) *AssessmentTransformer {
	return &AssessmentTransformer{predictor: predictor, logger: logger}
}

// Transform decodes an assessment request and produces the serialized
// prediction result. The incoming message key is carried through so sink
// consumers can correlate results with requests.
func (t *AssessmentTransformer) Transform(_ context.Context, raw domain.RawRequest) (domain.OutputMessage, error) {
	var in domain.RawInput
	if err := json.Unmarshal(raw.Value, &in); err != nil {
		return domain.OutputMessage{}, fmt.Errorf("parse assessment request: %w", err)
	}

	result, err := t.predictor.Predict(in)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("predict: %w", err)
	}

	return serializeResult(raw.Key, result)
}

// serializeResult marshals a prediction result into an output message with
// routing headers for sink consumers.
func serializeResult(key []byte, result domain.PredictionResult) (domain.OutputMessage, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return domain.OutputMessage{}, fmt.Errorf("serialize prediction result: %w", err)
	}
	return domain.OutputMessage{
		Key:   key,
		Value: data,
		Headers: map[string]string{
			"stress_type":  result.StressType,
			"severity":     result.Severity,
			"processed_at": time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}
