// Command apiserver serves the read path: tracked coins and cached
// price history over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/crypto-relay/internal/cache"
	"github.com/rickgao/crypto-relay/internal/config"
	"github.com/rickgao/crypto-relay/internal/history"
	"github.com/rickgao/crypto-relay/internal/model"
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

	logger.Info("starting apiserver",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateAPI(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"addr", cfg.API.Addr,
		"db_host", cfg.Database.Host,
		"cache_addr", cfg.Cache.Addr,
		"cache_ttl", cfg.Cache.TTL,
		"default_limit", cfg.API.DefaultLimit,
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

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	redisCache, err := cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		logger.Error("failed to connect to cache", "error", err)
		os.Exit(1)
	}
	defer redisCache.Close()
	logger.Info("cache connected")

	coins := model.ParseTrackedCoins(cfg.Coins.Tracked)
	histStore := store.NewHistoryStore(pool, logger)
	svc := history.New(redisCache, histStore, coins, cfg.API.DefaultLimit, logger)

	server := &http.Server{
		Addr:    cfg.API.Addr,
		Handler: createHandler(svc, pool, redisCache, cfg.API.DefaultLimit, logger),
	}

	go func() {
		logger.Info("api server listening", "addr", cfg.API.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	server.Shutdown(shutdownCtx)

	logger.Info("apiserver stopped")
}

// createHandler wires the boundary HTTP routes. Thin by design: parse,
// call the service, encode.
func createHandler(svc *history.Service, pool *pgxpool.Pool, c *cache.Cache, defaultLimit int, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/coins", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"trackedCoins": svc.TrackedCoins(),
			"retrievedAt":  time.Now().UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /api/history/{coinId}", func(w http.ResponseWriter, r *http.Request) {
		coinID := r.PathValue("coinId")
		if coinID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "coin ID is required"})
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				logger.Warn("invalid limit parameter, using default", "limit", raw, "default", defaultLimit)
			} else {
				limit = parsed
			}
		}

		entries, err := svc.History(r.Context(), coinID, limit)
		if err != nil {
			logger.Error("history lookup failed", "coin", coinID, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
			return
		}

		writeJSON(w, http.StatusOK, entries)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string            `json:"status"`
			Components map[string]string `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]string),
		}

		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = "disconnected: " + err.Error()
		} else {
			health.Components["postgres"] = "connected"
		}

		if err := c.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["redis"] = "disconnected: " + err.Error()
		} else {
			health.Components["redis"] = "connected"
		}

		code := http.StatusOK
		if health.Status != "healthy" {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, health)
	})

	return mux
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
