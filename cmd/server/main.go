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

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"isthisai-detection/internal/config"
	"isthisai-detection/internal/detector"
	"isthisai-detection/internal/handler"
	"isthisai-detection/internal/imaging"
	"isthisai-detection/internal/metrics"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	// Initialize logger
	log, err := config.NewLogger(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid log configuration")
	}

	// Initialize detection pipeline
	collector := metrics.NewMetricsCollector()
	detectionPipeline, err := detector.NewPipeline(detector.PipelineConfig{
		MaxTextLength:  cfg.Detection.MaxTextLength,
		MaxImageBytes:  cfg.Detection.MaxImageBytes,
		WorkerPoolSize: cfg.Detection.WorkerPoolSize,
		BatchLimit:     cfg.Detection.BatchLimit,
		DisabledChecks: cfg.Detection.DisabledChecks,
	}, imaging.NewDecoder(), collector, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize detection pipeline")
	}

	// Initialize HTTP handlers
	handlers := handler.NewDetectionHandler(detectionPipeline, log, cfg.Server.Timeout)

	gin.SetMode(gin.ReleaseMode)
	router := handler.NewRouter(handlers, handler.RouterConfig{
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		MetricsHandler: collector.Handler(),
	}, log)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		log.WithField("port", cfg.Server.Port).Info("Starting detection server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}
