package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/lending/internal/config"
	"github.com/forgo/lending/internal/handler"
	"github.com/forgo/lending/internal/messaging"
	"github.com/forgo/lending/internal/middleware"
	"github.com/forgo/lending/internal/repository"
	"github.com/forgo/lending/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize stores
	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open stores",
			slog.String("backend", cfg.Store.Backend),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	defer func() { _ = stores.Close() }()

	// Initialize event publishers
	eventHub := service.NewEventHub()
	defer eventHub.Close()

	publishers := service.Publishers{eventHub}
	rabbit, err := messaging.NewRabbitPublisher(cfg.Rabbit.URL, cfg.Rabbit.Exchange)
	if err != nil {
		slog.Error("failed to connect to rabbitmq", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if rabbit != nil {
		defer func() { _ = rabbit.Close() }()
		publishers = append(publishers, rabbit)
		slog.Info("publishing reservation events", slog.String("exchange", cfg.Rabbit.Exchange))
	}

	// Initialize services
	reservationService := service.NewReservationService(service.ReservationServiceConfig{
		Books:        stores.Books,
		Reservations: stores.Reservations,
		Publisher:    publishers,
		Logger:       logger,
	})

	// Per-client limits and replays for reserve and cancel
	clients := middleware.Clients{TrustProxy: cfg.Server.TrustProxy}
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.RequestsPerMinute,
		Window: time.Minute,
		Burst:  cfg.RateLimit.Burst,
	})
	replays := middleware.NewReplayCache(middleware.IdempotencyConfig{})

	// Create router and register routes
	mux := handler.NewRouter(handler.RouterConfig{
		Reservations: reservationService,
		Events:       eventHub,
		Logger:       logger,
	})

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.RateLimit(rateLimiter, clients),
		middleware.Idempotency(replays, clients),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("backend", cfg.Store.Backend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Close SSE streams first so Shutdown is not held open by them
	eventHub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
