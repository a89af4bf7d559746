package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldsense/crop-stress-service/internal/classifier"
	"github.com/fieldsense/crop-stress-service/internal/domain"
)

// stubPredictor lets tests script each core operation independently.
type stubPredictor struct {
	predictFn   func(domain.RawInput) (domain.PredictionResult, error)
	readinessFn func(context.Context) error
}

func (s *stubPredictor) Predict(in domain.RawInput) (domain.PredictionResult, error) {
	if s.predictFn != nil {
		return s.predictFn(in)
	}
	return domain.PredictionResult{StressType: string(domain.StressNone), Severity: domain.SeverityNone}, nil
}

func (s *stubPredictor) PredictBatch(_ context.Context, ins []domain.RawInput) ([]domain.PredictionResult, error) {
	results := make([]domain.PredictionResult, 0, len(ins))
	for _, in := range ins {
		res, err := s.Predict(in)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func (s *stubPredictor) Importance() map[string]float64 {
	return map[string]float64{"moisture_stress": 0.6, "dry_days_norm": 0.4}
}

func (s *stubPredictor) CheckReadiness(ctx context.Context) error {
	if s.readinessFn != nil {
		return s.readinessFn(ctx)
	}
	return nil
}

func newTestServer(p Predictor) *Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(":0", p, classifier.DefaultConfig(), logger)
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleRoot(t *testing.T) {
	s := newTestServer(&stubPredictor{})

	rec := doRequest(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "crop-stress-service", body["service"])
	assert.Equal(t, "operational", body["status"])

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleHealth(t *testing.T) {
	t.Run("model loaded", func(t *testing.T) {
		s := newTestServer(&stubPredictor{})
		rec := doRequest(t, s, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, "healthy", body["status"])
		assert.Equal(t, true, body["model_loaded"])
	})

	t.Run("model missing still healthy", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			readinessFn: func(context.Context) error { return errors.New("no model") },
		})
		rec := doRequest(t, s, http.MethodGet, "/healthz", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, decodeBody(t, rec)["model_loaded"])
	})
}

func TestHandleReady(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		s := newTestServer(&stubPredictor{})
		rec := doRequest(t, s, http.MethodGet, "/readyz", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			readinessFn: func(context.Context) error { return errors.New("classifier is not initialized") },
		})
		rec := doRequest(t, s, http.MethodGet, "/readyz", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "not ready", decodeBody(t, rec)["status"])
	})
}

func TestHandlePredict(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			predictFn: func(in domain.RawInput) (domain.PredictionResult, error) {
				assert.Equal(t, "wheat", in.CropType)
				return domain.PredictionResult{
					StressType:    string(domain.StressMoisture),
					Severity:      domain.SeverityHigh,
					SeverityColor: domain.ColorRed,
					Confidence:    85.0,
				}, nil
			},
		})

		rec := doRequest(t, s, http.MethodPost, "/api/predict",
			`{"crop_type":"wheat","sowing_date":"2026-01-01","soil_type":"loam","season":"winter"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

		body := decodeBody(t, rec)
		assert.Equal(t, "moisture_stress", body["stress_type"])
		assert.Equal(t, "high", body["severity"])
		assert.Equal(t, 85.0, body["confidence"])
	})

	t.Run("malformed body is 400", func(t *testing.T) {
		s := newTestServer(&stubPredictor{})
		rec := doRequest(t, s, http.MethodPost, "/api/predict", `{"crop_type":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid sowing date is 400", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			predictFn: func(domain.RawInput) (domain.PredictionResult, error) {
				return domain.PredictionResult{}, domain.ErrInvalidSowingDate
			},
		})
		rec := doRequest(t, s, http.MethodPost, "/api/predict", `{"sowing_date":"garbage"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("other failures are 500", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			predictFn: func(domain.RawInput) (domain.PredictionResult, error) {
				return domain.PredictionResult{}, errors.New("boom")
			},
		})
		rec := doRequest(t, s, http.MethodPost, "/api/predict", `{}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "prediction error", decodeBody(t, rec)["error"])
	})

	t.Run("GET is not allowed", func(t *testing.T) {
		s := newTestServer(&stubPredictor{})
		rec := doRequest(t, s, http.MethodGet, "/api/predict", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestHandleBatchPredict(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			predictFn: func(in domain.RawInput) (domain.PredictionResult, error) {
				return domain.PredictionResult{StressType: in.CropType}, nil
			},
		})

		rec := doRequest(t, s, http.MethodPost, "/api/batch-predict",
			`[{"crop_type":"wheat","sowing_date":"2026-01-01"},{"crop_type":"rice","sowing_date":"2026-01-15"}]`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Predictions []domain.PredictionResult `json:"predictions"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body.Predictions, 2)
		assert.Equal(t, "wheat", body.Predictions[0].StressType)
		assert.Equal(t, "rice", body.Predictions[1].StressType)
	})

	t.Run("object instead of array is 400", func(t *testing.T) {
		s := newTestServer(&stubPredictor{})
		rec := doRequest(t, s, http.MethodPost, "/api/batch-predict", `{"crop_type":"wheat"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("one bad item fails the whole batch", func(t *testing.T) {
		s := newTestServer(&stubPredictor{
			predictFn: func(in domain.RawInput) (domain.PredictionResult, error) {
				if in.SowingDate == "garbage" {
					return domain.PredictionResult{}, domain.ErrInvalidSowingDate
				}
				return domain.PredictionResult{}, nil
			},
		})
		rec := doRequest(t, s, http.MethodPost, "/api/batch-predict",
			`[{"sowing_date":"2026-01-01"},{"sowing_date":"garbage"}]`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandleModelInfo(t *testing.T) {
	s := newTestServer(&stubPredictor{})

	rec := doRequest(t, s, http.MethodGet, "/api/model/info", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "random_forest", body["model_type"])
	assert.Equal(t, float64(50), body["n_estimators"])
	assert.Equal(t, float64(10), body["max_depth"])

	features, ok := body["features"].([]any)
	require.True(t, ok)
	assert.Len(t, features, len(classifier.FeatureNames))

	importance, ok := body["feature_importance"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, importance, "moisture_stress")

	thresholds, ok := body["severity_thresholds"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, thresholds, "moisture_stress")
	assert.Contains(t, thresholds, "heat_stress")
	assert.Contains(t, thresholds, "waterlogging")
	assert.NotContains(t, thresholds, "no_stress")
}

func TestWithCORS(t *testing.T) {
	s := newTestServer(&stubPredictor{})

	t.Run("headers on regular requests", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodGet, "/healthz", "")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight short-circuits", func(t *testing.T) {
		rec := doRequest(t, s, http.MethodOptions, "/api/predict", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	})
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&stubPredictor{})
	rec := doRequest(t, s, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
