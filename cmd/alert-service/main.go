package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adpulse-ai/platform/pkg/alerting"
	"github.com/adpulse-ai/platform/pkg/common/config"
	"github.com/adpulse-ai/platform/pkg/common/database"
	"github.com/adpulse-ai/platform/pkg/common/kafka"
	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("alert-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	repo := alerting.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate alert tables")
	}

	rules, err := alerting.LoadRules(cfg.AlertRulesPath)
	if err != nil {
		logger.Log.WithError(err).Warn("falling back to default alert rules")
	}

	service := alerting.NewService(repo, rules)
	handler := alerting.NewHTTPHandler(repo)

	consumer := kafka.NewConsumer(cfg.SyncEventTopic, cfg.KafkaGroupID+"-alerts")
	defer consumer.Close()

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
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		logger.Log.WithField("topic", cfg.SyncEventTopic).Info("Consuming sync events")
		if err := consumer.Consume(ctx, service.HandleEvent); err != nil && err != context.Canceled {
			logger.Log.WithError(err).Error("sync event consumer stopped")
		}
	}()

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Alert Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Alert Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Alert Service stopped")
}
