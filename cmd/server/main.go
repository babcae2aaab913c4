// Package main is the entry point for the stockdesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockdesk/internal/config"
	"stockdesk/internal/domain/auth"
	"stockdesk/internal/domain/dashboard"
	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/incoming"
	"stockdesk/internal/domain/reports"
	v1 "stockdesk/internal/infrastructure/http/v1"
	"stockdesk/internal/infrastructure/storage/postgres"
	"stockdesk/internal/infrastructure/upstream"
	"stockdesk/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting stockdesk server")

	// --- Upstream backend client ---
	client := upstream.New(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
	})

	// --- Optional audit store ---
	var pool *postgres.Pool
	var store incoming.HistoryStore
	var snapshots *postgres.HistoryRepo
	if cfg.DatabaseURL != "" {
		pool, err = postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			log.Fatalw("failed to connect to audit database", "error", err)
		}
		defer pool.Close()

		repo, err := postgres.NewHistoryRepo(postgres.NewTxManager(pool))
		if err != nil {
			log.Fatalw("failed to initialize history store", "error", err)
		}
		store = repo
		snapshots = repo
		log.Info("audit store enabled")
	} else {
		log.Warn("DATABASE_URL not set; history persistence disabled")
	}

	// --- Domain services ---
	synth := history.NewSynthesizer()
	incomingService := incoming.NewService(client, synth, store, cfg.FetchConcurrency)
	dashboardService := dashboard.NewService(incomingService)
	reportService := reports.NewService(incomingService)

	// --- Session tokens ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Logger:         log,
		TokenValidator: jwtService,
		Incoming:       incomingService,
		Dashboard:      dashboardService,
		Reports:        reportService,
		Upstream:       client,
		Pool:           pool,
	}
	if snapshots != nil {
		routerCfg.Snapshots = snapshots
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port, "upstream", cfg.UpstreamBaseURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
