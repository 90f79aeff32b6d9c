// Package consumer implements the stream side of the relay: it reads
// price events off the bus one at a time, persists each to the durable
// store, and hands successfully persisted events to the broadcaster.
//
// Processing is strictly sequential, so the per-coin order established
// by key partitioning on the bus is preserved end to end.
package consumer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/crypto-relay/internal/bus"
	"github.com/rickgao/crypto-relay/internal/event"
	"github.com/rickgao/crypto-relay/internal/model"
)

// Source delivers inbound bus messages and records their completion.
type Source interface {
	Fetch(ctx context.Context) (bus.Inbound, error)
	Commit(ctx context.Context, in bus.Inbound) error
}

// Store persists one price observation.
type Store interface {
	Insert(ctx context.Context, obs model.PriceObservation) error
}

// Broadcaster fans one serialized payload out to live subscribers.
type Broadcaster interface {
	Broadcast(payload []byte)
}

// Consumer runs the consume loop.
type Consumer struct {
	source      Source
	store       Store
	broadcaster Broadcaster
	logger      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Consumer.
func New(src Source, store Store, broadcaster Broadcaster, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		source:      src,
		store:       store,
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// Start begins consuming.
func (c *Consumer) Start(ctx context.Context) error {
	c.ctx, c.cancel = context.WithCancel(ctx)

	c.wg.Add(1)
	go c.run()

	c.logger.Info("stream consumer started")
	return nil
}

// Stop shuts down the consume loop.
func (c *Consumer) Stop(ctx context.Context) error {
	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("stream consumer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run fetches, handles, and commits messages sequentially. A message is
// committed even when handling skips it: poison messages and failed
// persists are never redelivered.
func (c *Consumer) run() {
	defer c.wg.Done()

	for {
		in, err := c.source.Fetch(c.ctx)
		if err != nil {
			if c.ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			c.logger.Error("fetch from bus failed", "error", err)

			select {
			case <-c.ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		c.handle(in)

		if err := c.source.Commit(c.ctx, in); err != nil {
			c.logger.Error("offset commit failed", "error", err)
		}
	}
}

// handle processes one inbound event: decode, persist, broadcast.
// Broadcast happens only after a successful persist; the store is the
// authoritative record and a missed push is recoverable via the read
// path.
func (c *Consumer) handle(in bus.Inbound) {
	obs, err := event.DecodePayload(in.Key, in.Value)
	if err != nil {
		c.logger.Warn("skipping malformed event",
			"key", string(in.Key),
			"error", err,
		)
		return
	}

	if err := c.store.Insert(c.ctx, obs); err != nil {
		c.logger.Error("persist failed, broadcast suppressed",
			"coin", obs.CoinID,
			"error", err,
		)
		return
	}

	payload, err := event.EncodePush(obs)
	if err != nil {
		c.logger.Error("push encode failed", "coin", obs.CoinID, "error", err)
		return
	}

	c.logger.Debug("price persisted", "coin", obs.CoinID, "price", obs.Price)
	c.broadcaster.Broadcast(payload)
}
