package bus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rickgao/crypto-relay/internal/config"
)

// Message is one outbound wire event: routing key plus JSON payload.
type Message struct {
	Key   []byte
	Value []byte
	Time  time.Time
}

// Publisher writes message batches to the bus topic.
type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher creates a Publisher for the configured topic. Messages are
// hash-partitioned by key and compressed with gzip on the wire.
func NewPublisher(cfg config.BusConfig, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		Compression:  kafka.Gzip,
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Publisher{
		writer: writer,
		logger: logger,
	}
}

// Publish writes the batch in one call. The batch either lands as a whole
// or the call reports an error; retry policy belongs to the caller.
func (p *Publisher) Publish(ctx context.Context, msgs []Message) error {
	if len(msgs) == 0 {
		return nil
	}

	kmsgs := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		kmsgs[i] = kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  m.Time,
		}
	}

	if err := p.writer.WriteMessages(ctx, kmsgs...); err != nil {
		return fmt.Errorf("write messages: %w", err)
	}

	return nil
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Ping dials the first broker to verify the bus is reachable. Used at
// startup, where an unreachable bus is fatal.
func Ping(ctx context.Context, cfg config.BusConfig) error {
	conn, err := kafka.DialContext(ctx, "tcp", cfg.Brokers[0])
	if err != nil {
		return fmt.Errorf("dial broker %s: %w", cfg.Brokers[0], err)
	}
	return conn.Close()
}
