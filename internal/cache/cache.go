// Package cache is the boundary to the Redis read-path cache.
//
// Entries are whole cached answers: a key holds the exact JSON snapshot
// of a prior store response for that (coin, limit) pair, oldest first,
// and is never partially updated. Expiry is TTL-only.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/rickgao/crypto-relay/internal/config"
	"github.com/rickgao/crypto-relay/internal/model"
)

// ErrMiss reports that the key is not present in the cache.
var ErrMiss = errors.New("cache: miss")

// Cache wraps the Redis client for history lookups.
type Cache struct {
	client *redis.Client
	cfg    config.CacheConfig
	logger *slog.Logger
}

// New connects to Redis and verifies the connection with a ping.
func New(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Cache{
		client: client,
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Key builds the cache key for a history query. Deterministic: the same
// inputs always produce the same key.
func Key(coinID string, limit int) string {
	return fmt.Sprintf("history:%s:%d", coinID, limit)
}

// GetHistory returns the cached entry for (coinID, limit), or ErrMiss.
func (c *Cache) GetHistory(ctx context.Context, coinID string, limit int) ([]model.PriceHistoryEntry, error) {
	key := Key(coinID, limit)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}

	var entries []model.PriceHistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cache decode %s: %w", key, err)
	}

	c.logger.Debug("cache hit", "key", key, "entries", len(entries))
	return entries, nil
}

// SetHistory stores a history snapshot under (coinID, limit) with the
// configured TTL.
func (c *Cache) SetHistory(ctx context.Context, coinID string, limit int, entries []model.PriceHistoryEntry) error {
	key := Key(coinID, limit)

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := c.client.Set(ctx, key, data, c.cfg.TTL).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}

	c.logger.Debug("cache populated", "key", key, "entries", len(entries), "ttl", c.cfg.TTL)
	return nil
}

// Ping verifies the connection is healthy.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.client.Close()
}
