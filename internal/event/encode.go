// Package event defines the wire vocabulary shared by the producer and
// consumer: the bus envelope for one price tick and the payload pushed
// to live subscribers.
package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rickgao/crypto-relay/internal/bus"
	"github.com/rickgao/crypto-relay/internal/model"
)

var (
	// ErrMissingKey marks an event without a routing key.
	ErrMissingKey = errors.New("event: missing routing key")

	// ErrMissingValue marks an event without a payload.
	ErrMissingValue = errors.New("event: missing payload")
)

// Payload is the JSON body of a bus message. Timestamps serialize as
// RFC 3339 UTC.
type Payload struct {
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// Push is the JSON body pushed to websocket subscribers.
type Push struct {
	CoinID    string    `json:"coinId"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// Encode converts a price observation into its bus envelope: coin ID as
// routing key, JSON payload as value.
func Encode(obs model.PriceObservation) (bus.Message, error) {
	if obs.CoinID == "" {
		return bus.Message{}, ErrMissingKey
	}

	value, err := json.Marshal(Payload{
		Price:     obs.Price,
		Currency:  obs.Currency,
		Timestamp: obs.Timestamp.UTC(),
	})
	if err != nil {
		return bus.Message{}, fmt.Errorf("event: encode payload: %w", err)
	}

	return bus.Message{
		Key:   []byte(obs.CoinID),
		Value: value,
		Time:  obs.Timestamp,
	}, nil
}

// DecodePayload parses an inbound bus message back into an observation.
// Missing key, missing value, and unparsable JSON are poison cases the
// caller skips permanently.
func DecodePayload(key, value []byte) (model.PriceObservation, error) {
	if len(key) == 0 {
		return model.PriceObservation{}, ErrMissingKey
	}
	if len(value) == 0 {
		return model.PriceObservation{}, ErrMissingValue
	}

	var p Payload
	if err := json.Unmarshal(value, &p); err != nil {
		return model.PriceObservation{}, fmt.Errorf("event: decode payload: %w", err)
	}

	return model.PriceObservation{
		CoinID:    string(key),
		Price:     p.Price,
		Currency:  p.Currency,
		Timestamp: p.Timestamp,
	}, nil
}

// EncodePush serializes the subscriber-facing payload for one update.
// Called once per event; the broadcaster fans the bytes out as-is.
func EncodePush(obs model.PriceObservation) ([]byte, error) {
	data, err := json.Marshal(Push{
		CoinID:    obs.CoinID,
		Price:     obs.Price,
		Currency:  obs.Currency,
		Timestamp: obs.Timestamp.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("event: encode push: %w", err)
	}
	return data, nil
}
