package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"easyminutes/internal/billing"
	"easyminutes/internal/config"
	"easyminutes/internal/db"
	"easyminutes/internal/logger"
	"easyminutes/internal/plan"
	"easyminutes/internal/server"
	"easyminutes/internal/subscription"
	"easyminutes/internal/summarize"
	"easyminutes/internal/usage"
)

// @title EasyMinutes API
// @version 1.0
// @description API for AI meeting minutes generation and subscriptions.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {

	logger.Init()
	logger.Info("Starting EasyMinutes application")
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Info("Connecting to database...")
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	logger.Info("Database connected")

	if err := db.RunMigrations(database, "migrations"); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}
	logger.Info("Migrations completed")

	prices, err := plan.NewPriceMap(cfg.PricePlanMap)
	if err != nil {
		logger.Fatalf("Invalid price/plan mapping: %v", err)
	}

	billing.Init(cfg.StripeSecretKey)

	counters := usage.NewRedisCounterStore(cfg.RedisAddr)
	defer counters.Close()
	logger.Info("Session counter store initialized")

	summarizer := summarize.NewHTTPClient(cfg.SummarizerURL, cfg.SummarizerAPIKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go subscription.StartMetricsCollector(ctx, subscription.NewRepository(database), time.Minute)

	srv := server.New(database, cfg, prices, counters, summarizer)

	serverErrChan := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on port %s", cfg.Port)
		if err := srv.Start(cfg.Port); err != nil && err != http.ErrServerClosed {
			serverErrChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Infof("Received signal: %v", sig)
	case err := <-serverErrChan:
		logger.Errorf("Server error: %v", err)
	}

	logger.Info("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Error during server shutdown: %v", err)
	}

	logger.Info("Server stopped")
}
