package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rickgao/crypto-relay/internal/config"
)

// Inbound is one message delivered by the bus. The raw broker message is
// kept internally so the offset can be committed after handling.
type Inbound struct {
	Key   []byte
	Value []byte
	Time  time.Time

	raw kafka.Message
}

// Consumer reads messages from the bus topic as part of a consumer group.
type Consumer struct {
	reader *kafka.Reader
	logger *slog.Logger
}

// NewConsumer creates a Consumer joining the configured group. Offsets
// are committed explicitly via Commit, not on fetch, so a message is
// only marked done once it has been handled.
func NewConsumer(cfg config.BusConfig, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		MinBytes:    1,
		MaxBytes:    10 << 20,
		StartOffset: kafka.LastOffset,
	})

	return &Consumer{
		reader: reader,
		logger: logger,
	}
}

// Fetch blocks until the next message is available or ctx is done.
func (c *Consumer) Fetch(ctx context.Context) (Inbound, error) {
	msg, err := c.reader.FetchMessage(ctx)
	if err != nil {
		return Inbound{}, err
	}

	return Inbound{
		Key:   msg.Key,
		Value: msg.Value,
		Time:  msg.Time,
		raw:   msg,
	}, nil
}

// Commit marks the message as consumed.
func (c *Consumer) Commit(ctx context.Context, in Inbound) error {
	if err := c.reader.CommitMessages(ctx, in.raw); err != nil {
		return fmt.Errorf("commit offset: %w", err)
	}
	return nil
}

// Close closes the reader and leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
