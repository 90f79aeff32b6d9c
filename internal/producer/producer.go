// Package producer implements the ingestion side of the relay: on a
// fixed interval it polls the upstream price API, normalizes the result
// into wire events, and publishes the batch to the bus.
package producer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/crypto-relay/internal/bus"
	"github.com/rickgao/crypto-relay/internal/event"
	"github.com/rickgao/crypto-relay/internal/model"
	"github.com/rickgao/crypto-relay/internal/retry"
	"github.com/rickgao/crypto-relay/internal/source"
)

// PriceSource fetches current prices for a set of coins.
type PriceSource interface {
	SimplePrices(ctx context.Context, ids []string, currency string) (source.Prices, error)
}

// Publisher writes one batch of wire events to the bus.
type Publisher interface {
	Publish(ctx context.Context, msgs []bus.Message) error
}

// Config holds producer configuration.
type Config struct {
	Coins          []model.TrackedCoin
	Currency       string
	Interval       time.Duration
	SendRetries    int
	SendRetryDelay time.Duration
}

// Producer runs the fetch-and-publish loop.
type Producer struct {
	cfg       Config
	source    PriceSource
	publisher Publisher
	policy    retry.Policy
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Producer. Publish retries follow a bounded fixed-delay
// policy; only errors the bus reports as transient consume the budget.
func New(cfg Config, src PriceSource, publisher Publisher, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{
		cfg:       cfg,
		source:    src,
		publisher: publisher,
		policy: retry.Policy{
			MaxAttempts: cfg.SendRetries,
			Delay:       cfg.SendRetryDelay,
			Classify:    bus.IsRetriable,
		},
		logger: logger,
	}
}

// Start begins the tick loop. The first tick fires immediately.
func (p *Producer) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("ingestion producer started",
		"coins", len(p.cfg.Coins),
		"currency", p.cfg.Currency,
		"interval", p.cfg.Interval,
	)

	return nil
}

// Stop shuts down the tick loop. An in-flight tick runs to completion
// unless the parent context is already cancelled.
func (p *Producer) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("ingestion producer stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the tick loop. The timer is re-armed only after a tick fully
// completes, so ticks never overlap; the effective period is interval
// plus processing time.
func (p *Producer) run() {
	defer p.wg.Done()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-timer.C:
			p.tick()
			timer.Reset(p.cfg.Interval)
		}
	}
}

// tick performs one fetch-encode-publish cycle. Every failure mode here
// is non-fatal: the cycle is skipped and the loop keeps its cadence.
func (p *Producer) tick() {
	start := time.Now()

	prices, err := p.source.SimplePrices(p.ctx, model.CoinIDs(p.cfg.Coins), p.cfg.Currency)
	if err != nil {
		p.logger.Error("price fetch failed, skipping cycle", "error", err)
		return
	}

	msgs := p.buildBatch(prices, time.Now().UTC())
	if len(msgs) == 0 {
		p.logger.Warn("no publishable prices this cycle")
		return
	}

	err = p.policy.Do(p.ctx, func(ctx context.Context) error {
		return p.publisher.Publish(ctx, msgs)
	})
	if err != nil {
		p.logger.Error("publish failed, dropping batch",
			"error", err,
			"events", len(msgs),
		)
		return
	}

	p.logger.Info("published price batch",
		"events", len(msgs),
		"duration", time.Since(start),
	)
}

// buildBatch turns a fetch result into wire events, in tracked-coin
// order. Coins missing the target currency are dropped with a warning
// and never fail the rest of the batch.
func (p *Producer) buildBatch(prices source.Prices, ts time.Time) []bus.Message {
	msgs := make([]bus.Message, 0, len(p.cfg.Coins))

	for _, coin := range p.cfg.Coins {
		perCurrency, ok := prices[coin.ID]
		if !ok {
			p.logger.Debug("coin absent from fetch result", "coin", coin.ID)
			continue
		}

		price, ok := perCurrency[p.cfg.Currency]
		if !ok {
			p.logger.Warn("price missing for target currency",
				"coin", coin.ID,
				"currency", p.cfg.Currency,
			)
			continue
		}

		msg, err := event.Encode(model.PriceObservation{
			CoinID:    coin.ID,
			Price:     price,
			Currency:  p.cfg.Currency,
			Timestamp: ts,
		})
		if err != nil {
			p.logger.Warn("skipping unencodable observation", "coin", coin.ID, "error", err)
			continue
		}

		msgs = append(msgs, msg)
	}

	return msgs
}
