// Command stream runs the Kafka assessment pipeline: it consumes crop
// assessment requests from the source topic, runs each through the prediction
// pipeline, and produces results to the sink topic.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/fieldsense/crop-stress-service/internal/adapter/http"
	kafkaadapter "github.com/fieldsense/crop-stress-service/internal/adapter/kafka"
	"github.com/fieldsense/crop-stress-service/internal/classifier"
	"github.com/fieldsense/crop-stress-service/internal/config"
	"github.com/fieldsense/crop-stress-service/internal/observability"
	"github.com/fieldsense/crop-stress-service/internal/pipeline"
	"github.com/fieldsense/crop-stress-service/internal/predictor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateKafka(); err != nil {
		slog.Error("invalid kafka config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	model := classifier.DefaultConfig()
	model.Seed = cfg.ClassifierSeed
	model.Trees = cfg.ClassifierTrees

	logger.Info("training classifier", "seed", model.Seed, "trees", model.Trees)
	forest := classifier.Train(model)
	p := predictor.New(forest, logger, metrics, cfg.BatchConcurrency)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(p, logger)

	pl := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	// The stream binary still serves the API alongside the pipeline, so ad-hoc
	// predictions and model introspection work against the same trained forest.
	srv := httpadapter.NewServer(cfg.HTTPAddr, streamPredictor{p, pl}, model, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := pl.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}

// streamPredictor reports readiness from the pipeline instead of the
// predictor, so /readyz reflects whether messages are flowing.
type streamPredictor struct {
	*predictor.Predictor
	pipeline *pipeline.Pipeline
}

func (s streamPredictor) CheckReadiness(ctx context.Context) error {
	return s.pipeline.CheckReadiness(ctx)
}
