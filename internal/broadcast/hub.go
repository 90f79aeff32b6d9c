package broadcast

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrHubClosed is returned when a connection arrives after shutdown began.
var ErrHubClosed = errors.New("broadcast: hub closed")

// Config holds hub configuration.
type Config struct {
	SendBuffer   int           // Per-subscriber outbound queue size
	WriteTimeout time.Duration // Per-message write deadline
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		SendBuffer:   256,
		WriteTimeout: 10 * time.Second,
	}
}

// Hub maintains the live subscriber set and pushes serialized payloads
// to every open connection.
type Hub struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	wg sync.WaitGroup
}

// NewHub creates a Hub.
func NewHub(cfg Config, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = DefaultConfig().SendBuffer
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultConfig().WriteTimeout
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

// Broadcast enqueues the payload for every currently open subscriber.
// With zero subscribers the call is a no-op. Never blocks on a slow
// subscriber: a full queue drops the update for that subscriber alone.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	if len(h.clients) == 0 {
		h.mu.RUnlock()
		return
	}
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.enqueue(payload) {
			h.logger.Warn("subscriber queue full, dropping update", "client", c.ID())
		}
	}
}

// Count returns the number of open subscriber connections.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown stops accepting new subscribers, asks existing ones to close,
// and waits for them to drain. Connections still open when ctx expires
// are forcibly terminated.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	h.logger.Info("closing subscriber connections", "count", len(clients))

	for _, c := range clients {
		c.requestClose()
	}

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		h.logger.Info("all subscribers drained")
		return nil
	case <-ctx.Done():
		h.logger.Warn("drain timed out, terminating remaining subscribers", "remaining", h.Count())
		for _, c := range clients {
			c.terminate()
		}
		<-done
		return nil
	}
}

// add registers a connection. Fails once shutdown has begun.
func (h *Hub) add(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}

	h.clients[c] = struct{}{}
	h.wg.Add(1)
	h.logger.Info("subscriber connected", "client", c.ID(), "total", len(h.clients))
	return nil
}

// remove deregisters a connection. Safe to call more than once.
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	total := len(h.clients)
	h.mu.Unlock()

	h.wg.Done()
	h.logger.Info("subscriber disconnected", "client", c.ID(), "total", total)
}
