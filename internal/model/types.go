package model

import (
	"strings"
	"time"
)

// PriceObservation is one price reading for one coin, as produced by the
// upstream source. Immutable once created.
type PriceObservation struct {
	CoinID    string    // Upstream coin identifier (e.g., "bitcoin")
	Price     float64   // Price in the quote currency
	Currency  string    // Quote currency (e.g., "usd")
	Timestamp time.Time // Observation time (UTC)
}

// PriceHistoryEntry is one persisted price point. Rows are append-only;
// field names match the read-path wire format.
type PriceHistoryEntry struct {
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackedCoin identifies a coin the relay follows.
type TrackedCoin struct {
	ID string `json:"id"`
}

// ParseTrackedCoins parses a comma-separated coin list into TrackedCoins.
// Entries are trimmed, blanks dropped, and duplicates removed while
// preserving first-occurrence order.
func ParseTrackedCoins(s string) []TrackedCoin {
	seen := make(map[string]struct{})
	var coins []TrackedCoin
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		coins = append(coins, TrackedCoin{ID: id})
	}
	return coins
}

// CoinIDs returns the identifiers of the given coins, in order.
func CoinIDs(coins []TrackedCoin) []string {
	ids := make([]string, len(coins))
	for i, c := range coins {
		ids[i] = c.ID
	}
	return ids
}
