package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultSourceBaseURL  = "https://api.coingecko.com/api/v3"
	DefaultSourceTimeout  = 10 * time.Second
	DefaultBusBroker      = "localhost:9092"
	DefaultBusTopic       = "crypto-updates"
	DefaultBusGroupID     = "crypto-websocket-group"
	DefaultTrackedCoins   = "bitcoin,ethereum"
	DefaultCurrency       = "usd"
	DefaultFetchInterval  = 30 * time.Second
	DefaultSendRetries    = 3
	DefaultSendRetryDelay = time.Second
	DefaultDBPort         = 5432
	DefaultDBSSLMode      = "prefer"
	DefaultMaxConns       = 10
	DefaultMinConns       = 2
	DefaultCacheAddr      = "localhost:6379"
	DefaultCacheTTL       = 60 * time.Second
	DefaultWSAddr         = ":8080"
	DefaultSendBuffer     = 256
	DefaultWriteTimeout   = 10 * time.Second
	DefaultDrainTimeout   = 5 * time.Second
	DefaultAPIAddr        = ":3000"
	DefaultHistoryLimit   = 100
)

func (c *Config) applyDefaults() {
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = DefaultSourceBaseURL
	}
	if c.Source.Timeout == 0 {
		c.Source.Timeout = DefaultSourceTimeout
	}

	if len(c.Bus.Brokers) == 0 {
		c.Bus.Brokers = []string{DefaultBusBroker}
	}
	if c.Bus.Topic == "" {
		c.Bus.Topic = DefaultBusTopic
	}
	if c.Bus.GroupID == "" {
		c.Bus.GroupID = DefaultBusGroupID
	}

	if c.Coins.Tracked == "" {
		c.Coins.Tracked = DefaultTrackedCoins
	}
	if c.Coins.Currency == "" {
		c.Coins.Currency = DefaultCurrency
	}

	if c.Fetcher.Interval == 0 {
		c.Fetcher.Interval = DefaultFetchInterval
	}
	if c.Fetcher.SendRetries == 0 {
		c.Fetcher.SendRetries = DefaultSendRetries
	}
	if c.Fetcher.SendRetryDelay == 0 {
		c.Fetcher.SendRetryDelay = DefaultSendRetryDelay
	}

	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	if c.Cache.Addr == "" {
		c.Cache.Addr = DefaultCacheAddr
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	if c.WebSocket.Addr == "" {
		c.WebSocket.Addr = DefaultWSAddr
	}
	if c.WebSocket.SendBuffer == 0 {
		c.WebSocket.SendBuffer = DefaultSendBuffer
	}
	if c.WebSocket.WriteTimeout == 0 {
		c.WebSocket.WriteTimeout = DefaultWriteTimeout
	}
	if c.WebSocket.DrainTimeout == 0 {
		c.WebSocket.DrainTimeout = DefaultDrainTimeout
	}

	if c.API.Addr == "" {
		c.API.Addr = DefaultAPIAddr
	}
	if c.API.DefaultLimit == 0 {
		c.API.DefaultLimit = DefaultHistoryLimit
	}
}
