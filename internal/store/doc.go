// Package store is the boundary to the durable Postgres store.
//
// The price_history table is append-only: the consumer inserts one row
// per event and nothing in the relay ever updates or deletes rows.
// Reads return the most recent rows for a coin, newest first, with ties
// on timestamp broken by insertion order (the identity column).
package store
