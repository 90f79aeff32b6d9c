// Command fetcher polls the upstream price API and publishes normalized
// price events onto the bus.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/crypto-relay/internal/bus"
	"github.com/rickgao/crypto-relay/internal/config"
	"github.com/rickgao/crypto-relay/internal/model"
	"github.com/rickgao/crypto-relay/internal/producer"
	"github.com/rickgao/crypto-relay/internal/source"
	"github.com/rickgao/crypto-relay/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/relay.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting fetcher",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateFetcher(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	coins := model.ParseTrackedCoins(cfg.Coins.Tracked)

	logger.Info("configuration loaded",
		"brokers", cfg.Bus.Brokers,
		"topic", cfg.Bus.Topic,
		"api_url", cfg.Source.BaseURL,
		"tracked_coins", model.CoinIDs(coins),
		"currency", cfg.Coins.Currency,
		"interval", cfg.Fetcher.Interval,
		"send_retries", cfg.Fetcher.SendRetries,
		"send_retry_delay", cfg.Fetcher.SendRetryDelay,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// An unreachable bus at startup is fatal; the orchestrator restarts us.
	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := bus.Ping(pingCtx, cfg.Bus); err != nil {
		pingCancel()
		logger.Error("failed to reach bus", "error", err)
		os.Exit(1)
	}
	pingCancel()
	logger.Info("bus reachable")

	client := source.NewClient(
		cfg.Source.BaseURL,
		cfg.Source.APIKey,
		source.WithLogger(logger),
		source.WithTimeout(cfg.Source.Timeout),
	)

	publisher := bus.NewPublisher(cfg.Bus, logger)
	defer publisher.Close()

	prod := producer.New(producer.Config{
		Coins:          coins,
		Currency:       cfg.Coins.Currency,
		Interval:       cfg.Fetcher.Interval,
		SendRetries:    cfg.Fetcher.SendRetries,
		SendRetryDelay: cfg.Fetcher.SendRetryDelay,
	}, client, publisher, logger)

	if err := prod.Start(ctx); err != nil {
		logger.Error("failed to start producer", "error", err)
		os.Exit(1)
	}

	logger.Info("fetcher running")

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := prod.Stop(stopCtx); err != nil {
		logger.Warn("producer stop timed out", "error", err)
	}

	logger.Info("fetcher stopped")
}
