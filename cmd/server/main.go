package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OpenNSW/landedcost/internal/auth"
	"github.com/OpenNSW/landedcost/internal/cache"
	"github.com/OpenNSW/landedcost/internal/config"
	"github.com/OpenNSW/landedcost/internal/database"
	"github.com/OpenNSW/landedcost/internal/estimator"
	"github.com/OpenNSW/landedcost/internal/events"
	"github.com/OpenNSW/landedcost/internal/lookup"
	"github.com/OpenNSW/landedcost/internal/middleware"
	"github.com/OpenNSW/landedcost/internal/rates"
	"github.com/OpenNSW/landedcost/internal/reports"
	"github.com/OpenNSW/landedcost/internal/reports/storage"
	"github.com/OpenNSW/landedcost/internal/trade"
	"github.com/OpenNSW/landedcost/internal/trade/model"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	slog.SetDefault(newLogger(cfg.Log))

	slog.Info("configuration loaded successfully",
		"db_driver", cfg.Database.Driver,
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"storage_type", cfg.Storage.Type,
		"shipping_api_configured", cfg.Lookup.ShippingAPIURL != "",
		"tariff_api_configured", cfg.Lookup.TariffAPIURL != "",
		"redis_configured", cfg.Cache.RedisURL != "",
		"kafka_brokers", cfg.Events.Brokers,
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allow_credentials", cfg.CORS.AllowCredentials,
	)

	ctx := context.Background()

	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := database.HealthCheck(ctx, db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}

	models := append([]any{&auth.User{}}, model.Models()...)
	if err := database.Migrate(ctx, db, models...); err != nil {
		log.Fatalf("%v", err)
	}

	table, err := loadRates(cfg.RatesFile)
	if err != nil {
		log.Fatalf("failed to load rate table: %v", err)
	}

	var tariffs lookup.TariffSource = lookup.NewTariffClient(cfg.Lookup.TariffAPIURL, cfg.Lookup.TariffAPIKey, cfg.Lookup.Timeout)
	if cfg.Cache.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.Cache.RedisURL)
		if err != nil {
			slog.Warn("redis unavailable, tariff cache disabled", "error", err)
		} else {
			defer func() { _ = client.Close() }()
			tariffs = lookup.NewCachedTariffSource(tariffs, cache.NewRedisCache(client, "landedcost:"), cfg.Cache.TTL)
		}
	}
	quoter := lookup.NewQuoter(
		lookup.NewShippingClient(cfg.Lookup.ShippingAPIURL, cfg.Lookup.ShippingAPIKey, cfg.Lookup.Timeout),
		tariffs,
	)

	publisher := events.New(cfg.Events.Brokers, cfg.Events.Topic)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Error("failed to close event publisher", "error", err)
		}
	}()

	tm := trade.NewManager(db, estimator.New(table), quoter, tariffs, publisher)
	if err := tm.SeedHSCodes(ctx); err != nil {
		log.Fatalf("%v", err)
	}

	store, err := storage.NewFromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize report storage: %v", err)
	}
	reportHandler := reports.NewHTTPHandler(reports.NewService(store, tm.AnalysisService()))

	authService := auth.NewAuthService(db)
	tokenExtractor := auth.NewTokenExtractor(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	protect := auth.RequireAuth(authService, tokenExtractor)

	// Set up HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", database.HealthHandler(db))
	tm.RegisterRoutes(mux, protect)
	mux.Handle("POST /api/analyses/{id}/report", protect(http.HandlerFunc(reportHandler.HandleCreateReport)))
	mux.Handle("GET /api/reports/{key}", protect(http.HandlerFunc(reportHandler.HandleGetReport)))

	handler := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging,
		middleware.Recover,
		middleware.CORS(&cfg.CORS),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func loadRates(path string) (*rates.Table, error) {
	if path == "" {
		return rates.Default()
	}
	slog.Info("loading rate table", "path", path)
	return rates.Load(path)
}
