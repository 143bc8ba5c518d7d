package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/foodlens/backend/config"
	httpDelivery "github.com/foodlens/backend/internal/delivery/http"
	"github.com/foodlens/backend/internal/infrastructure/entrylog"
	"github.com/foodlens/backend/internal/infrastructure/storage"
	"github.com/foodlens/backend/internal/infrastructure/vision"
	"github.com/foodlens/backend/internal/logger"
	"github.com/foodlens/backend/internal/usecase"
	"github.com/foodlens/backend/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	log.WithFields(logrus.Fields{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"model":       cfg.OpenAI.Model,
	}).Info("Starting FoodLens Backend v1.0.0")

	// Initialize infrastructure dependencies
	store, err := storage.NewFileStore(cfg.Storage.UploadsDir, cfg.Storage.ProcessedDir)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare storage directories")
	}

	entries, err := entrylog.NewFileLog(cfg.Storage.EntriesFile)
	if err != nil {
		log.WithError(err).Fatal("Failed to open entry log")
	}

	visionClient := vision.NewClient(vision.Options{
		APIKey:            cfg.OpenAI.APIKey,
		BaseURL:           cfg.OpenAI.BaseURL,
		Model:             cfg.OpenAI.Model,
		MaxTokens:         cfg.OpenAI.MaxTokens,
		RequestsPerMinute: cfg.RateLimit.Vision,
	}, log)

	log.WithFields(logrus.Fields{
		"uploads":   cfg.Storage.UploadsDir,
		"processed": cfg.Storage.ProcessedDir,
		"entries":   cfg.Storage.EntriesFile,
	}).Info("Storage ready")

	// Initialize usecase layer
	analyzer := usecase.NewAnalyzeService(visionClient, store, entries, log)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(analyzer, cfg.Server.MaxUploadMB<<20, log)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler, web.Assets(), log)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infof("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}
