package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/handler"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/handler/middleware"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/postgres"
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/redis"
	"github.com/DanielPopoola/placetopay-gateway/internal/config"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/ports"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/service"
	"github.com/DanielPopoola/placetopay-gateway/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting gateway service",
		"env", cfg.Primary.Env,
		"port", cfg.Server.Port,
		"processor", cfg.PlaceToPay.BaseURL,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db}

	var guard ports.ReferenceGuard
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, cfg.Redis, logger)
		if err != nil {
			logger.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		referenceGuard := redis.NewReferenceGuard(rdb, logger)
		guard = referenceGuard
		checks["redis"] = referenceGuard
	} else {
		logger.Warn("redis not configured, duplicate references are caught by the journal only")
	}

	repo := postgres.NewTransactionRepository(db)

	client := placetopay.NewClient(cfg.PlaceToPay, logger)
	retryClient := placetopay.NewRetryClient(client, cfg.Retry, logger)

	paymentService := service.NewPaymentService(retryClient, repo, guard, service.Options{
		DefaultCurrency: cfg.PlaceToPay.DefaultCurrency,
		ReferenceTTL:    cfg.Redis.ReferenceTTL,
	}, logger)

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	if cfg.Worker.Enabled {
		reconciler := worker.NewReconciler(repo, retryClient, cfg.Worker, logger)
		go reconciler.Start(workerCtx)
	}

	h := handler.NewPaymentHandler(paymentService, checks, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	doc, err := handler.LoadOpenAPI()
	if err != nil {
		logger.Error("failed to load openapi document", "error", err)
		os.Exit(1)
	}
	validate, err := handler.RequestValidator(doc, logger)
	if err != nil {
		logger.Error("failed to build request validator", "error", err)
		os.Exit(1)
	}

	router := validate(mux)
	router = middleware.Recovery(logger)(router)
	router = middleware.Logging(logger)(router)
	router = middleware.Timeout(cfg.Server.WriteTimeout)(router)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
