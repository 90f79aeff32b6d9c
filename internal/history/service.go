// Package history implements the cache-aside read path: history queries
// check the cache first and fall back to the durable store on a miss,
// repopulating the cache with the store's answer.
package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rickgao/crypto-relay/internal/cache"
	"github.com/rickgao/crypto-relay/internal/model"
)

// Cache is the read-path cache boundary. A lookup on an absent key
// returns cache.ErrMiss.
type Cache interface {
	GetHistory(ctx context.Context, coinID string, limit int) ([]model.PriceHistoryEntry, error)
	SetHistory(ctx context.Context, coinID string, limit int, entries []model.PriceHistoryEntry) error
}

// Store is the durable store boundary. Recent returns rows newest first.
type Store interface {
	Recent(ctx context.Context, coinID string, limit int) ([]model.PriceHistoryEntry, error)
}

// Service serves history queries.
type Service struct {
	cache        Cache
	store        Store
	coins        []model.TrackedCoin
	defaultLimit int
	logger       *slog.Logger
}

// New creates a Service. defaultLimit applies when a caller passes a
// non-positive limit.
func New(c Cache, s Store, coins []model.TrackedCoin, defaultLimit int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cache:        c,
		store:        s,
		coins:        coins,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// TrackedCoins returns the configured coin set, in configuration order.
func (s *Service) TrackedCoins() []model.TrackedCoin {
	return s.coins
}

// History returns up to limit price points for a coin, chronologically
// ascending. A cache hit never touches the store. A miss queries the
// store, and a non-empty answer is cached before returning; an empty
// answer is returned without caching so "no data yet" never goes stale.
// Cache and store infrastructure errors propagate to the caller.
func (s *Service) History(ctx context.Context, coinID string, limit int) ([]model.PriceHistoryEntry, error) {
	if coinID == "" {
		return []model.PriceHistoryEntry{}, nil
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}

	entries, err := s.cache.GetHistory(ctx, coinID, limit)
	if err == nil {
		s.logger.Debug("history served from cache", "coin", coinID, "limit", limit)
		return entries, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		return nil, fmt.Errorf("history cache lookup: %w", err)
	}

	s.logger.Debug("cache miss, querying store", "coin", coinID, "limit", limit)

	recent, err := s.store.Recent(ctx, coinID, limit)
	if err != nil {
		return nil, fmt.Errorf("history store query: %w", err)
	}

	if len(recent) == 0 {
		return []model.PriceHistoryEntry{}, nil
	}

	// Store order is newest first; the external contract is ascending.
	ascending := make([]model.PriceHistoryEntry, len(recent))
	for i, e := range recent {
		ascending[len(recent)-1-i] = e
	}

	if err := s.cache.SetHistory(ctx, coinID, limit, ascending); err != nil {
		return nil, fmt.Errorf("history cache populate: %w", err)
	}

	return ascending, nil
}
