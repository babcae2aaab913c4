// Package main is the entry point for the stockdesk history poller.
// It periodically re-fetches watched SKUs and feeds the observations
// into the synthesizer so the audit trail grows without a browser open.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"stockdesk/internal/config"
	"stockdesk/internal/domain/history"
	"stockdesk/internal/domain/incoming"
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

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required: the poller exists to persist history")
	}
	if len(cfg.WatchedSKUs) == 0 {
		log.Fatal("WATCHED_SKUS is required: nothing to poll")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Infow("starting stockdesk history poller",
		"schedule", cfg.PollSchedule,
		"skus", len(cfg.WatchedSKUs))

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to audit database", "error", err)
	}
	defer pool.Close()

	repo, err := postgres.NewHistoryRepo(postgres.NewTxManager(pool))
	if err != nil {
		log.Fatalw("failed to initialize history store", "error", err)
	}

	client := upstream.New(upstream.Config{
		BaseURL: cfg.UpstreamBaseURL,
		Timeout: cfg.UpstreamTimeout,
	})

	service := incoming.NewService(client, history.NewSynthesizer(), repo, cfg.FetchConcurrency)
	poller := &Poller{service: service, skus: cfg.WatchedSKUs, log: log}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PollSchedule, func() { poller.Run(ctx) }); err != nil {
		log.Fatalw("invalid poll schedule", "schedule", cfg.PollSchedule, "error", err)
	}

	// One pass immediately so a fresh deployment seeds the log.
	poller.Run(ctx)
	scheduler.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down poller...")
	cancel()
	<-scheduler.Stop().Done()
	log.Info("poller stopped")
}

// Poller walks the watched SKUs once per tick.
type Poller struct {
	service *incoming.Service
	skus    []string
	log     *logger.Logger
}

// Run polls every watched SKU. Per-SKU failures are logged and skipped;
// one broken SKU must not starve the rest.
func (p *Poller) Run(ctx context.Context) {
	for _, sku := range p.skus {
		if ctx.Err() != nil {
			return
		}
		log, err := p.service.History(ctx, sku)
		if err != nil {
			p.log.Warnw("poll failed", "sku", sku, "error", err)
			continue
		}
		p.log.Infow("poll complete", "sku", sku, "entries", len(log))
	}
}
