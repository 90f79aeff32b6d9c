package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	yaml := `
source:
  base_url: https://api.coingecko.com/api/v3
bus:
  brokers: [kafka-1:9092, kafka-2:9092]
  topic: crypto-updates
coins:
  tracked: bitcoin,ethereum
  currency: usd
database:
  host: localhost
  port: 5432
  name: crypto
  user: relay
  password: relaypass
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Source.BaseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("Source.BaseURL = %q, want %q", cfg.Source.BaseURL, "https://api.coingecko.com/api/v3")
	}
	if len(cfg.Bus.Brokers) != 2 || cfg.Bus.Brokers[0] != "kafka-1:9092" {
		t.Errorf("Bus.Brokers = %v, want [kafka-1:9092 kafka-2:9092]", cfg.Bus.Brokers)
	}
	if cfg.Coins.Tracked != "bitcoin,ethereum" {
		t.Errorf("Coins.Tracked = %q, want %q", cfg.Coins.Tracked, "bitcoin,ethereum")
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "localhost")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")
	t.Setenv("TEST_COINS", "bitcoin,cardano")

	yaml := `
coins:
  tracked: ${TEST_COINS}
database:
  host: localhost
  name: crypto
  user: relay
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
	if cfg.Coins.Tracked != "bitcoin,cardano" {
		t.Errorf("Coins.Tracked = %q, want %q", cfg.Coins.Tracked, "bitcoin,cardano")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	yaml := `
database:
  host: localhost
  name: crypto
  user: relay
  password: relaypass
`
	path := writeTempFile(t, yaml)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Source.BaseURL != DefaultSourceBaseURL {
		t.Errorf("Source.BaseURL = %q, want default %q", cfg.Source.BaseURL, DefaultSourceBaseURL)
	}
	if len(cfg.Bus.Brokers) != 1 || cfg.Bus.Brokers[0] != DefaultBusBroker {
		t.Errorf("Bus.Brokers = %v, want [%s]", cfg.Bus.Brokers, DefaultBusBroker)
	}
	if cfg.Bus.Topic != DefaultBusTopic {
		t.Errorf("Bus.Topic = %q, want %q", cfg.Bus.Topic, DefaultBusTopic)
	}
	if cfg.Fetcher.Interval != DefaultFetchInterval {
		t.Errorf("Fetcher.Interval = %v, want %v", cfg.Fetcher.Interval, DefaultFetchInterval)
	}
	if cfg.Fetcher.SendRetries != DefaultSendRetries {
		t.Errorf("Fetcher.SendRetries = %d, want %d", cfg.Fetcher.SendRetries, DefaultSendRetries)
	}
	if cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Cache.TTL = %v, want %v", cfg.Cache.TTL, DefaultCacheTTL)
	}
	if cfg.Database.Port != DefaultDBPort {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, DefaultDBPort)
	}
	if cfg.WebSocket.DrainTimeout != DefaultDrainTimeout {
		t.Errorf("WebSocket.DrainTimeout = %v, want %v", cfg.WebSocket.DrainTimeout, DefaultDrainTimeout)
	}
	if cfg.API.DefaultLimit != DefaultHistoryLimit {
		t.Errorf("API.DefaultLimit = %d, want %d", cfg.API.DefaultLimit, DefaultHistoryLimit)
	}
}

func TestValidateFetcher(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing topic", func(c *Config) { c.Bus.Topic = "" }, true},
		{"empty broker entry", func(c *Config) { c.Bus.Brokers = []string{""} }, true},
		{"no coins", func(c *Config) { c.Coins.Tracked = "" }, true},
		{"no currency", func(c *Config) { c.Coins.Currency = "" }, true},
		{"zero interval", func(c *Config) { c.Fetcher.Interval = 0 }, true},
		{"zero retries", func(c *Config) { c.Fetcher.SendRetries = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.ValidateFetcher()
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFetcher() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateStreamer(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Database = DBConfig{
		Host: "localhost", Port: 5432, Name: "crypto",
		User: "relay", Password: "pass", MaxConns: 10, MinConns: 2,
	}

	if err := cfg.ValidateStreamer(); err != nil {
		t.Errorf("ValidateStreamer() error = %v, want nil", err)
	}

	cfg.Database.Password = ""
	if err := cfg.ValidateStreamer(); err == nil {
		t.Error("ValidateStreamer() = nil, want error for missing password")
	}
}

func TestValidateAPI(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Database = DBConfig{
		Host: "localhost", Port: 5432, Name: "crypto",
		User: "relay", Password: "pass", MaxConns: 10, MinConns: 2,
	}

	if err := cfg.ValidateAPI(); err != nil {
		t.Errorf("ValidateAPI() error = %v, want nil", err)
	}

	cfg.Database.MinConns = 20
	if err := cfg.ValidateAPI(); err == nil {
		t.Error("ValidateAPI() = nil, want error for min_conns > max_conns")
	}
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}
