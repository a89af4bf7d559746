// Package predictor sequences the assessment pipeline: feature engineering,
// classification, rule validation, severity scoring, and explanation
// synthesis, exactly once per request.
package predictor

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fieldsense/crop-stress-service/internal/classifier"
	"github.com/fieldsense/crop-stress-service/internal/domain"
	"github.com/fieldsense/crop-stress-service/internal/observability"
)

// DefaultBatchConcurrency bounds parallel batch items when no limit is configured.
const DefaultBatchConcurrency = 8

// Predictor runs the five-stage pipeline against a trained, immutable forest.
// It is safe for concurrent use: predictions share no mutable state.
type Predictor struct {
	forest           *classifier.Forest
	logger           *slog.Logger
	metrics          *observability.Metrics
	batchConcurrency int
}

// New creates a Predictor. batchConcurrency <= 0 selects the default.
func New(forest *classifier.Forest, logger *slog.Logger, metrics *observability.Metrics, batchConcurrency int) *Predictor {
	if batchConcurrency <= 0 {
		batchConcurrency = DefaultBatchConcurrency
	}
	p := &Predictor{
		forest:           forest,
		logger:           logger,
		metrics:          metrics,
		batchConcurrency: batchConcurrency,
	}
	metrics.ClassifierReady.Set(1)
	return p
}

// Predict runs one request through the full pipeline. The only failure is an
// unparseable sowing date (domain.ErrInvalidSowingDate); everything after
// feature engineering is total.
func (p *Predictor) Predict(in domain.RawInput) (domain.PredictionResult, error) {
	start := time.Now()

	fv, err := domain.EngineerFeatures(in)
	if err != nil {
		return domain.PredictionResult{}, err
	}

	raw := p.forest.Classify(fv)
	validated := domain.Validate(fv, raw)
	severity, color := domain.Score(validated.StressType, validated.Confidence, fv)

	result := domain.PredictionResult{
		StressType:    string(validated.StressType),
		Severity:      severity,
		SeverityColor: color,
		Confidence:    domain.Percent(validated.Confidence),
		Advisory:      domain.Advise(validated.StressType, severity),
		Explanation:   domain.Explain(validated.StressType, fv),
		Metadata: domain.Metadata{
			GrowthStage:      fv.GrowthStage,
			DaysAfterSowing:  fv.DaysAfterSowing,
			Season:           fv.Season,
			MLPrediction:     string(raw.StressType),
			MLConfidence:     domain.Percent(raw.Confidence),
			ValidationReason: validated.Reason,
		},
	}

	p.metrics.PredictionsTotal.WithLabelValues(result.StressType, result.Severity).Inc()
	p.metrics.RuleOutcomes.WithLabelValues(validated.Reason).Inc()
	p.metrics.PredictionDuration.Observe(time.Since(start).Seconds())

	p.logger.Debug("prediction complete",
		"crop", fv.CropType,
		"stress_type", result.StressType,
		"severity", result.Severity,
		"reason", validated.Reason,
	)
	return result, nil
}

// PredictBatch applies Predict to each input independently, preserving input
// order. Items run in parallel up to the configured concurrency; the first
// failure cancels the remainder.
func (p *Predictor) PredictBatch(ctx context.Context, ins []domain.RawInput) ([]domain.PredictionResult, error) {
	results := make([]domain.PredictionResult, len(ins))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.batchConcurrency)
	for i, in := range ins {
		g.Go(func() error {
			res, err := p.Predict(in)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Importance exposes the trained ensemble's per-feature importance.
func (p *Predictor) Importance() map[string]float64 {
	return p.forest.Importance()
}

// CheckReadiness reports whether the predictor can serve traffic.
func (p *Predictor) CheckReadiness(_ context.Context) error {
	if p.forest == nil {
		return errors.New("classifier is not initialized")
	}
	return nil
}
