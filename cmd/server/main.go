package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandpilot/geo-audit/internal/api"
	"github.com/brandpilot/geo-audit/internal/audit"
	"github.com/brandpilot/geo-audit/internal/auth"
	"github.com/brandpilot/geo-audit/internal/brands"
	"github.com/brandpilot/geo-audit/internal/config"
	"github.com/brandpilot/geo-audit/internal/dispatch"
	"github.com/brandpilot/geo-audit/internal/metrics"
	"github.com/brandpilot/geo-audit/internal/notifications"
	"github.com/brandpilot/geo-audit/internal/platforms"
	"github.com/brandpilot/geo-audit/internal/scheduler"
	"github.com/brandpilot/geo-audit/internal/sitecheck"
	"github.com/brandpilot/geo-audit/internal/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting GEO audit service")

	ctx := context.Background()

	registry, err := brands.Load(cfg.BrandsFile)
	if err != nil {
		logrus.Fatalf("Failed to load brand registry: %v", err)
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	reports := storage.NewReportStore(objects)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.New("geo_audit", promRegistry)

	clients := platforms.FromConfig(cfg)
	for _, client := range clients {
		if !client.IsEnabled() {
			logrus.Warnf("%s has no credentials, demo mode: %v", client.GetName(), cfg.DemoMode)
		}
	}
	dispatcher := dispatch.NewDispatcher(cfg, clients, recorder)

	var notifier notifications.Notifier
	if cfg.NotificationsEnabled() {
		notifier = notifications.NewService(cfg)
	}

	auditService := audit.NewService(cfg, audit.Dependencies{
		Dispatcher: dispatcher,
		Store:      reports,
		Registry:   registry,
		Notifier:   notifier,
		Sites:      sitecheck.NewChecker(cfg.PlatformTimeout),
		Limiter:    auth.NewTierLimiter(cfg.DailyQuota),
		Metrics:    recorder,
	})

	schedulerService := scheduler.NewService(cfg, auditService, registry, notifier)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      api.NewServer(cfg, auditService, reports, promRegistry).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AuditTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server in a goroutine
	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Pending report saves and alerts
	auditService.Wait()

	logrus.Info("Server exited")
}

func newObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	switch {
	case cfg.StorageConnectionString != "":
		return storage.NewAzureStorageFromConnectionString(ctx, cfg.StorageConnectionString, cfg.StorageContainer)
	case cfg.StorageAccount != "":
		return storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
	default:
		logrus.Warn("No storage account configured, reports are kept in memory")
		return storage.NewMemoryStorage(), nil
	}
}
