package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/crypto-relay/internal/model"
)

// HistoryStore reads and writes the price_history table.
type HistoryStore struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

// NewHistoryStore creates a HistoryStore on an existing pool.
func NewHistoryStore(db *pgxpool.Pool, logger *slog.Logger) *HistoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryStore{
		db:     db,
		logger: logger,
	}
}

// Insert appends one price row.
func (s *HistoryStore) Insert(ctx context.Context, obs model.PriceObservation) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO price_history (coin_id, price, currency, timestamp)
		VALUES ($1, $2, $3, $4)
	`, obs.CoinID, obs.Price, obs.Currency, obs.Timestamp)
	if err != nil {
		return fmt.Errorf("insert price row: %w", err)
	}
	return nil
}

// Recent returns up to limit rows for a coin, newest first. Equal
// timestamps are ordered by descending row identity, so reversing the
// result yields stable insertion order.
func (s *HistoryStore) Recent(ctx context.Context, coinID string, limit int) ([]model.PriceHistoryEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT price, currency, timestamp
		FROM price_history
		WHERE coin_id = $1
		ORDER BY timestamp DESC, id DESC
		LIMIT $2
	`, coinID, limit)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	var entries []model.PriceHistoryEntry
	for rows.Next() {
		var e model.PriceHistoryEntry
		if err := rows.Scan(&e.Price, &e.Currency, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan price row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read price history: %w", err)
	}

	return entries, nil
}
