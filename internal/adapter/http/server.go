// Package http exposes the prediction API consumed by dashboards and field
// tooling, plus the operational health, readiness, and metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fieldsense/crop-stress-service/internal/classifier"
	"github.com/fieldsense/crop-stress-service/internal/domain"
)

// Predictor is the core entry point the API fronts.
type Predictor interface {
	Predict(in domain.RawInput) (domain.PredictionResult, error)
	PredictBatch(ctx context.Context, ins []domain.RawInput) ([]domain.PredictionResult, error)
	Importance() map[string]float64
	CheckReadiness(ctx context.Context) error
}

// Server exposes the prediction routes plus health, readiness, and metrics.
type Server struct {
	httpServer *http.Server
	predictor  Predictor
	model      classifier.Config
	logger     *slog.Logger
}

// NewServer creates the API server. The classifier config is reported by the
// model info endpoint.
func NewServer(addr string, predictor Predictor, model classifier.Config, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      withCORS(mux),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		predictor: predictor,
		model:     model,
		logger:    logger,
	}

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("POST /api/predict", s.handlePredict)
	mux.HandleFunc("POST /api/batch-predict", s.handleBatchPredict)
	mux.HandleFunc("GET /api/model/info", s.handleModelInfo)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "crop-stress-service",
		"status":  "operational",
		"endpoints": map[string]string{
			"health":        "/healthz",
			"predict":       "/api/predict",
			"batch_predict": "/api/batch-predict",
			"model_info":    "/api/model/info",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	modelLoaded := s.predictor.CheckReadiness(r.Context()) == nil
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "healthy",
		"model_loaded": modelLoaded,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.predictor.CheckReadiness(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in domain.RawInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.predictor.Predict(in)
	if err != nil {
		s.writePredictionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatchPredict(w http.ResponseWriter, r *http.Request) {
	var ins []domain.RawInput
	if err := json.NewDecoder(r.Body).Decode(&ins); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	results, err := s.predictor.PredictBatch(r.Context(), ins)
	if err != nil {
		s.writePredictionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"predictions": results})
}

func (s *Server) handleModelInfo(w http.ResponseWriter, _ *http.Request) {
	thresholds := make(map[string]map[string]domain.ThresholdRef)
	for _, stress := range domain.StressTypes {
		if stress == domain.StressNone {
			continue
		}
		thresholds[string(stress)] = domain.SeverityThresholds(stress)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model_type":          "random_forest",
		"n_estimators":        s.model.Trees,
		"max_depth":           s.model.MaxDepth,
		"features":            classifier.FeatureNames,
		"feature_importance":  s.predictor.Importance(),
		"stress_types":        domain.StressTypes,
		"severity_thresholds": thresholds,
	})
}

// writePredictionError maps pipeline failures to transport responses: invalid
// input is the caller's fault, anything else is ours.
func (s *Server) writePredictionError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidSowingDate) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error("prediction failed", "error", err)
	writeError(w, http.StatusInternalServerError, "prediction error")
}

// withCORS applies the permissive CORS policy the field dashboards rely on.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
