package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adpulse-ai/platform/pkg/common/config"
	"github.com/adpulse-ai/platform/pkg/common/database"
	"github.com/adpulse-ai/platform/pkg/common/kafka"
	"github.com/adpulse-ai/platform/pkg/common/logger"
	"github.com/adpulse-ai/platform/pkg/integration"
	"github.com/adpulse-ai/platform/pkg/metric"
	"github.com/adpulse-ai/platform/pkg/middleware"
	"github.com/adpulse-ai/platform/pkg/observability/metrics"
	"github.com/adpulse-ai/platform/pkg/pipeline"
	"github.com/adpulse-ai/platform/pkg/provider"
	"github.com/adpulse-ai/platform/pkg/provider/adapters"
	"github.com/gorilla/mux"
)

func main() {
	logger.Init("sync-service")
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("failed to connect to postgres")
	}

	integRepo := integration.NewRepository(db)
	if err := integRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate integration tables")
	}
	metricRepo := metric.NewRepository(db)
	if err := metricRepo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("failed to migrate metric tables")
	}

	registry := provider.NewRegistry()
	adapters.New(metricRepo, cfg).Register(registry)

	producer := kafka.NewProducer(cfg.SyncEventTopic)
	defer producer.Close()

	orchestrator := pipeline.NewOrchestrator(pipeline.Config{
		ConcurrencyLimit:      cfg.SyncConcurrencyLimit,
		HighFrequencyInterval: cfg.SyncHighFreqInterval,
		LowFrequencyInterval:  cfg.SyncLowFreqInterval,
		AdapterTimeout:        cfg.SyncAdapterTimeout,
	}, registry, integRepo, producer)

	integService := integration.NewService(integRepo)
	integHandler := integration.NewHTTPHandler(integService, orchestrator, cfg.MaxRequestBody)

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
	integHandler.Register(api)

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
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Sync Service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("failed to start server")
		}
	}()

	// Scheduled pipeline pass per tenant. ShouldSync makes over-frequent
	// ticks harmless.
	go func() {
		ticker := time.NewTicker(cfg.SyncSchedulerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				runScheduledPass(ctx, integRepo, orchestrator)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(12 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := integService.Cleanup(context.Background(), cfg.SyncHistoryRetention); err != nil {
					logger.Log.WithError(err).Warn("history cleanup failed")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down Sync Service...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("server forced to shutdown")
	}

	logger.Log.Info("Sync Service stopped")
}

func runScheduledPass(ctx context.Context, repo *integration.Repository, orchestrator *pipeline.Orchestrator) {
	tenants, err := repo.DistinctTenants(ctx)
	if err != nil {
		logger.Log.WithError(err).Error("scheduler failed to enumerate tenants")
		return
	}
	for _, tenantID := range tenants {
		if ctx.Err() != nil {
			return
		}
		if _, err := orchestrator.Run(ctx, pipeline.RunConfig{TenantID: tenantID}); err != nil {
			logger.Log.WithError(err).WithField("tenant_id", tenantID).Error("scheduled pipeline pass failed")
		}
	}
}
