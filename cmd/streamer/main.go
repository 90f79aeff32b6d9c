// Command streamer consumes price events from the bus, persists each to
// Postgres, and fans them out to WebSocket subscribers.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rickgao/crypto-relay/internal/broadcast"
	"github.com/rickgao/crypto-relay/internal/bus"
	"github.com/rickgao/crypto-relay/internal/config"
	"github.com/rickgao/crypto-relay/internal/consumer"
	"github.com/rickgao/crypto-relay/internal/store"
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

	logger.Info("starting streamer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateStreamer(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"brokers", cfg.Bus.Brokers,
		"topic", cfg.Bus.Topic,
		"group_id", cfg.Bus.GroupID,
		"websocket_addr", cfg.WebSocket.Addr,
		"db_host", cfg.Database.Host,
		"db_name", cfg.Database.Name,
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

	// Connect to the durable store
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	// An unreachable bus at startup is fatal; the orchestrator restarts us.
	pingCtx, pingCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := bus.Ping(pingCtx, cfg.Bus); err != nil {
		pingCancel()
		logger.Error("failed to reach bus", "error", err)
		os.Exit(1)
	}
	pingCancel()
	logger.Info("bus reachable")

	histStore := store.NewHistoryStore(pool, logger)

	hub := broadcast.NewHub(broadcast.Config{
		SendBuffer:   cfg.WebSocket.SendBuffer,
		WriteTimeout: cfg.WebSocket.WriteTimeout,
	}, logger)

	// Failing to bind the subscriber listener is fatal.
	listener, err := net.Listen("tcp", cfg.WebSocket.Addr)
	if err != nil {
		logger.Error("failed to bind websocket listener", "addr", cfg.WebSocket.Addr, "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.Handle("/ws", hub.Handler())

	wsServer := &http.Server{Handler: mux}
	go func() {
		logger.Info("websocket server listening", "addr", cfg.WebSocket.Addr)
		if err := wsServer.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("websocket server error", "error", err)
		}
	}()

	busConsumer := bus.NewConsumer(cfg.Bus, logger)

	cons := consumer.New(busConsumer, histStore, hub, logger)

	// The consumer gets its own lifetime so the shutdown sequence, not
	// the signal, decides when it stops (subscribers drain first).
	if err := cons.Start(context.Background()); err != nil {
		logger.Error("failed to start consumer", "error", err)
		os.Exit(1)
	}

	logger.Info("streamer running")

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	// Stop accepting new subscribers, then drain existing connections
	// with a bounded timeout.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	wsServer.Shutdown(shutdownCtx)

	drainCtx, drainCancel := context.WithTimeout(context.Background(), cfg.WebSocket.DrainTimeout)
	hub.Shutdown(drainCtx)
	drainCancel()

	// Then the consumer, then the store.
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if err := cons.Stop(stopCtx); err != nil {
		logger.Warn("consumer stop timed out", "error", err)
	}

	if err := busConsumer.Close(); err != nil {
		logger.Warn("bus consumer close failed", "error", err)
	}

	logger.Info("streamer stopped")
}
