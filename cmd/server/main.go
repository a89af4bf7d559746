// Command server runs the crop stress assessment HTTP API.
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
	"github.com/fieldsense/crop-stress-service/internal/classifier"
	"github.com/fieldsense/crop-stress-service/internal/config"
	"github.com/fieldsense/crop-stress-service/internal/observability"
	"github.com/fieldsense/crop-stress-service/internal/predictor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
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
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, model, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
