// Package model defines shared data types used across the crypto relay.
//
// Conventions:
//   - Prices: float64 in the configured quote currency
//   - Timestamps: time.Time, stored and serialized in UTC (RFC 3339 on the wire)
//   - Coin IDs: upstream API identifiers (e.g., "bitcoin", "ethereum")
package model
