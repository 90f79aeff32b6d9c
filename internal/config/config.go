package config

import "time"

// Config is the root configuration shared by the relay binaries.
// Each binary validates only the sections it uses.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Bus       BusConfig       `yaml:"bus"`
	Coins     CoinsConfig     `yaml:"coins"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Database  DBConfig        `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	API       APIConfig       `yaml:"api"`
}

// SourceConfig holds upstream price API settings.
type SourceConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"` // Optional (sent as x-cg-demo-api-key header)
	Timeout time.Duration `yaml:"timeout"`
}

// BusConfig holds message bus settings.
type BusConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"group_id"` // Consumer group (streamer only)
}

// CoinsConfig holds the tracked coin set and quote currency.
type CoinsConfig struct {
	Tracked  string `yaml:"tracked"` // Comma-separated coin IDs
	Currency string `yaml:"currency"`
}

// FetcherConfig holds ingestion producer settings.
type FetcherConfig struct {
	Interval       time.Duration `yaml:"interval"`
	SendRetries    int           `yaml:"send_retries"`
	SendRetryDelay time.Duration `yaml:"send_retry_delay"`
}

// DBConfig holds the Postgres connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds Redis settings for the read path.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// WebSocketConfig holds the subscriber push endpoint settings.
type WebSocketConfig struct {
	Addr         string        `yaml:"addr"`
	SendBuffer   int           `yaml:"send_buffer"`   // Per-subscriber outbound queue
	WriteTimeout time.Duration `yaml:"write_timeout"` // Per-message write deadline
	DrainTimeout time.Duration `yaml:"drain_timeout"` // Graceful close window on shutdown
}

// APIConfig holds the read-path HTTP settings.
type APIConfig struct {
	Addr         string `yaml:"addr"`
	DefaultLimit int    `yaml:"default_limit"` // History rows when no limit given
}
