package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adpulse-ai/platform/pkg/analytics/summary"
	"github.com/adpulse-ai/platform/pkg/common/config"
	"github.com/adpulse-ai/platform/pkg/common/database"
	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/metric"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("analytics-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	metricRepo := metric.NewRepository(db)
	if err := metricRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate metric tables")
	}

	cache := summary.NewCache(database.GetRedis(), cfg.SummaryCacheTTL)
	summaryService := summary.NewService(metricRepo, cache)
	summaryHandler := summary.NewHTTPHandler(summaryService)
	metricHandler := metric.NewHTTPHandler(metricRepo, cfg.MaxRequestBody)

	router := mux.NewRouter()
	router.Use(middleware.Recovery, middleware.Logging)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ready"}`))
	}).Methods(http.MethodGet)

	router.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	}).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Tenant)
	summaryHandler.Register(api)
	metricHandler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Analytics Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Analytics Service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Warn("failed to close redis")
	}

	logger.Log.Info("Analytics Service stopped")
}
