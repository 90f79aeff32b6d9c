package producer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/rickgao/crypto-relay/internal/bus"
	"github.com/rickgao/crypto-relay/internal/model"
	"github.com/rickgao/crypto-relay/internal/source"
)

// fakeSource returns a canned result or error.
type fakeSource struct {
	prices source.Prices
	err    error
	calls  int
}

func (f *fakeSource) SimplePrices(ctx context.Context, ids []string, currency string) (source.Prices, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.prices, nil
}

// fakePublisher records batches and fails the first failN calls.
type fakePublisher struct {
	mu      sync.Mutex
	batches [][]bus.Message
	calls   int
	failN   int
	failErr error
}

func (f *fakePublisher) Publish(ctx context.Context, msgs []bus.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failN {
		return f.failErr
	}
	f.batches = append(f.batches, msgs)
	return nil
}

func testConfig() Config {
	return Config{
		Coins:          []model.TrackedCoin{{ID: "bitcoin"}, {ID: "ethereum"}},
		Currency:       "usd",
		Interval:       time.Hour, // Ticks triggered manually in tests.
		SendRetries:    3,
		SendRetryDelay: time.Millisecond,
	}
}

func TestTick_PublishesTrackedCoins(t *testing.T) {
	src := &fakeSource{prices: source.Prices{
		"bitcoin":  {"usd": 50000},
		"ethereum": {"usd": 4000},
		"cardano":  {"eur": 1.5},
	}}
	pub := &fakePublisher{}

	p := New(testConfig(), src, pub, nil)
	p.ctx = context.Background()

	p.tick()

	if len(pub.batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(pub.batches))
	}

	batch := pub.batches[0]
	if len(batch) != 2 {
		t.Fatalf("batch size = %d, want 2 (cardano has no usd price)", len(batch))
	}
	if string(batch[0].Key) != "bitcoin" {
		t.Errorf("batch[0].Key = %q, want %q", batch[0].Key, "bitcoin")
	}
	if string(batch[1].Key) != "ethereum" {
		t.Errorf("batch[1].Key = %q, want %q", batch[1].Key, "ethereum")
	}
}

func TestTick_FetchFailureSkipsCycle(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	pub := &fakePublisher{}

	p := New(testConfig(), src, pub, nil)
	p.ctx = context.Background()

	p.tick()

	if pub.calls != 0 {
		t.Errorf("publish calls = %d, want 0 after fetch failure", pub.calls)
	}
}

func TestTick_EmptyBatchSkipsPublish(t *testing.T) {
	// All coins lack the target currency.
	src := &fakeSource{prices: source.Prices{
		"bitcoin":  {"eur": 42000},
		"ethereum": {"eur": 3500},
	}}
	pub := &fakePublisher{}

	p := New(testConfig(), src, pub, nil)
	p.ctx = context.Background()

	p.tick()

	if pub.calls != 0 {
		t.Errorf("publish calls = %d, want 0 for empty batch", pub.calls)
	}
}

func TestTick_RetriesTransientPublishFailure(t *testing.T) {
	src := &fakeSource{prices: source.Prices{"bitcoin": {"usd": 50000}}}
	pub := &fakePublisher{failN: 2, failErr: kafka.LeaderNotAvailable}

	p := New(testConfig(), src, pub, nil)
	p.ctx = context.Background()

	p.tick()

	if pub.calls != 3 {
		t.Errorf("publish calls = %d, want 3 (two failures then success)", pub.calls)
	}
	if len(pub.batches) != 1 {
		t.Errorf("batches = %d, want 1", len(pub.batches))
	}
}

func TestTick_DropsBatchAfterRetryExhaustion(t *testing.T) {
	src := &fakeSource{prices: source.Prices{"bitcoin": {"usd": 50000}}}
	pub := &fakePublisher{failN: 10, failErr: kafka.LeaderNotAvailable}

	p := New(testConfig(), src, pub, nil)
	p.ctx = context.Background()

	p.tick()

	if pub.calls != 3 {
		t.Errorf("publish calls = %d, want 3 (retry budget)", pub.calls)
	}
	if len(pub.batches) != 0 {
		t.Errorf("batches = %d, want 0 after exhaustion", len(pub.batches))
	}
}

func TestTick_NonRetriableAbortsWithoutRetry(t *testing.T) {
	src := &fakeSource{prices: source.Prices{"bitcoin": {"usd": 50000}}}
	pub := &fakePublisher{failN: 10, failErr: kafka.TopicAuthorizationFailed}

	p := New(testConfig(), src, pub, nil)
	p.ctx = context.Background()

	p.tick()

	if pub.calls != 1 {
		t.Errorf("publish calls = %d, want 1 for non-retriable error", pub.calls)
	}
}

func TestProducer_StartStop(t *testing.T) {
	src := &fakeSource{prices: source.Prices{"bitcoin": {"usd": 50000}}}
	pub := &fakePublisher{}

	cfg := testConfig()
	cfg.Interval = 50 * time.Millisecond

	p := New(cfg, src, pub, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// First tick fires immediately.
	time.Sleep(20 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := p.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	if src.calls < 1 {
		t.Errorf("fetch calls = %d, want >= 1", src.calls)
	}
}
