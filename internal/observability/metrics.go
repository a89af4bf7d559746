package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// prediction service and the stream pipeline.
type Metrics struct {
	PredictionsTotal   *prometheus.CounterVec // labels: stress_type, severity
	RuleOutcomes       *prometheus.CounterVec // labels: reason
	PredictionDuration prometheus.Histogram
	ClassifierReady    prometheus.Gauge

	// Stream pipeline metrics.
	RequestsConsumed        prometheus.Counter
	ResultsProduced         prometheus.Counter
	TransformErrors         prometheus.Counter
	PipelineRunning         prometheus.Gauge
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PredictionsTotal,
		m.RuleOutcomes,
		m.PredictionDuration,
		m.ClassifierReady,
		m.RequestsConsumed,
		m.ResultsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		PredictionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_stress",
			Name:      "predictions_total",
			Help:      "Completed predictions by final stress type and severity.",
		}, []string{"stress_type", "severity"}),
		RuleOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crop_stress",
			Name:      "rule_outcomes_total",
			Help:      "Validation rule outcomes by reason tag.",
		}, []string{"reason"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_stress",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a single prediction through the full pipeline.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		ClassifierReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_stress",
			Name:      "classifier_ready",
			Help:      "1 once the ensemble is trained and serving.",
		}),
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_stress",
			Name:      "requests_consumed_total",
			Help:      "Total assessment requests read from the source topic.",
		}),
		ResultsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_stress",
			Name:      "results_produced_total",
			Help:      "Total prediction results written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crop_stress",
			Name:      "transform_errors_total",
			Help:      "Total requests that failed to parse or predict.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "crop_stress",
			Name:      "pipeline_running",
			Help:      "1 when the stream pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_stress",
			Name:      "batch_size",
			Help:      "Number of requests per batch extracted from the source topic.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "crop_stress",
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-predict-produce cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
	}
}
