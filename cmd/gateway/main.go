package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/af-corp/chat-gateway/internal/config"
	"github.com/af-corp/chat-gateway/internal/gateway"
	"github.com/af-corp/chat-gateway/internal/router"
	"github.com/af-corp/chat-gateway/internal/telemetry"
	"github.com/af-corp/chat-gateway/internal/types"
)

var version = "dev"

func main() {
	configDir := flag.String("config", "configs", "path to configuration directory")
	envFile := flag.String("env-file", ".env", "optional dotenv file with provider API keys")
	flag.Parse()

	logger := newLogger(os.Stdout, config.DefaultConfig().Telemetry)
	slog.SetDefault(logger)

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to load env file", "file", *envFile, "error", err)
	}

	// Load configuration
	loader := config.NewLoader(*configDir, logger)
	if err := loader.Load(); err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfg := loader.Config()
	logger = newLogger(os.Stdout, cfg.Telemetry)
	slog.SetDefault(logger)

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// Build provider registry
	registry := router.BuildFromConfig(loader.Providers(), cfg.Routing.DefaultTimeout, nil)
	logConfiguredProviders(logger, registry)

	loader.OnReload(func() {
		registry.Replace(router.BuildFromConfig(loader.Providers(), loader.Config().Routing.DefaultTimeout, nil))
		metrics.RecordReload(true)
		logger.Info("provider registry reloaded")
	})
	loader.OnReloadError(func(error) {
		metrics.RecordReload(false)
	})
	if err := loader.Watch(); err != nil {
		logger.Warn("failed to start config watcher", "error", err)
	}

	handler := gateway.NewHandler(registry, func() int64 {
		return loader.Config().Server.MaxBodyBytes
	}, metrics)

	// Router setup
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(gateway.RequestID)

	r.Get("/health", healthHandler)
	r.Handle(cfg.Telemetry.MetricsPath, promhttp.Handler())
	r.Post("/api/chat", handler.Chat)
	r.Get("/v1/models", handler.ListModels)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway starting", "addr", addr, "version", version)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("gateway stopped")
}

func newLogger(w io.Writer, tc config.TelemetryConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(tc.LogLevel)}
	if strings.EqualFold(tc.LogFormat, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func logConfiguredProviders(logger *slog.Logger, registry *router.Registry) {
	for _, id := range types.KnownModels() {
		if _, ok := registry.Get(id); !ok {
			logger.Warn("no provider configured; requests for this model are rejected", "model", id)
		}
	}
	for _, m := range registry.Models() {
		if !m.Configured {
			logger.Warn("provider credential missing; requests will fail until it is set", "model", m.ID)
		}
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"version": version,
	})
}
