package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/keepitcut/callerid-lookup/internal/callerid_service/adapters/meevo"
	"github.com/keepitcut/callerid-lookup/internal/callerid_service/app"
	httptransport "github.com/keepitcut/callerid-lookup/internal/callerid_service/transport/http"
	"github.com/keepitcut/callerid-lookup/internal/platform/config"
	"github.com/keepitcut/callerid-lookup/internal/platform/logger"
	"github.com/keepitcut/callerid-lookup/internal/platform/messagebroker"
)

const serviceName = "callerid_service"

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Caller ID lookup service starting...",
		"port", cfg.ServerPort, "location_id", cfg.MeevoLocationID)

	meevoClient := meevo.NewClient(meevo.Config{
		AuthURL:           cfg.MeevoAuthURL,
		APIURL:            cfg.MeevoAPIURL,
		ClientID:          cfg.MeevoClientID,
		ClientSecret:      cfg.MeevoClientSecret,
		TenantID:          cfg.MeevoTenantID,
		LocationID:        cfg.MeevoLocationID,
		TokenSafetyMargin: time.Duration(cfg.TokenSafetyMarginMinutes) * time.Minute,
	}, appLogger, &http.Client{Timeout: time.Duration(cfg.HTTPClientTimeoutSeconds) * time.Second})

	phoneCache := app.NewPhoneCache()

	resolvers := []app.Resolver{
		app.NewCacheResolver(phoneCache, meevoClient, appLogger),
	}
	if cfg.FeedEnabled {
		resolvers = append(resolvers, app.NewFeedResolver(
			meevoClient, time.Duration(cfg.FeedLookbackHours)*time.Hour, cfg.FeedMaxPages, appLogger))
	}
	resolvers = append(resolvers, app.NewDirectoryResolver(
		meevoClient, cfg.ScanItemsPerPage, cfg.ScanMaxPages, cfg.ScanParallel, cfg.ScanBatchSize, appLogger))

	var publisher messagebroker.Publisher
	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			appLogger.Warn("Failed to connect to NATS, lookup events disabled", "error", err)
		} else {
			defer natsClient.Close()
			publisher = natsClient
			appLogger.Info("Connected to NATS", "url", cfg.NATSUrl)
		}
	}

	lookupService := app.NewLookupService(meevoClient, resolvers, publisher, appLogger)

	validate := validator.New()
	lookupHandler := httptransport.NewLookupHandler(lookupService, appLogger)
	adminHandler := httptransport.NewAdminHandler(phoneCache, lookupService, validate, cfg.MeevoLocationID, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	// The telephony platform abandons the call flow after ~10s; anything
	// slower than that is already a failure, so cut it off server-side too.
	r.Use(chimiddleware.Timeout(15 * time.Second))
	r.Use(httptransport.PrometheusMetricsMiddleware)

	lookupHandler.RegisterRoutes(r)
	adminHandler.RegisterRoutes(r)
	r.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.ServerPort), Handler: r}
	appLogger.Info(fmt.Sprintf("Caller ID lookup server listening on port %d", cfg.ServerPort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server failed to serve", "error", err)
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)
	<-quitChan
	appLogger.Info("Shutdown signal received, shutting down HTTP server...")
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		appLogger.Error("HTTP server shutdown failed", "error", err)
	} else {
		appLogger.Info("HTTP server shut down gracefully.")
	}
	appLogger.Info("Caller ID lookup service shut down.")
}
