package config

import (
	"errors"
	"fmt"
)

// ValidateFetcher checks the sections the fetcher binary uses.
func (c *Config) ValidateFetcher() error {
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	if err := c.Bus.validate(); err != nil {
		return err
	}
	if c.Coins.Tracked == "" {
		return errors.New("coins.tracked is required")
	}
	if c.Coins.Currency == "" {
		return errors.New("coins.currency is required")
	}
	if c.Fetcher.Interval <= 0 {
		return errors.New("fetcher.interval must be > 0")
	}
	if c.Fetcher.SendRetries < 1 {
		return errors.New("fetcher.send_retries must be >= 1")
	}
	if c.Fetcher.SendRetryDelay < 0 {
		return errors.New("fetcher.send_retry_delay must be >= 0")
	}
	return nil
}

// ValidateStreamer checks the sections the streamer binary uses.
func (c *Config) ValidateStreamer() error {
	if err := c.Bus.validate(); err != nil {
		return err
	}
	if c.Bus.GroupID == "" {
		return errors.New("bus.group_id is required")
	}
	if err := c.Database.validate("database"); err != nil {
		return err
	}
	if c.WebSocket.Addr == "" {
		return errors.New("websocket.addr is required")
	}
	if c.WebSocket.SendBuffer < 1 {
		return errors.New("websocket.send_buffer must be >= 1")
	}
	return nil
}

// ValidateAPI checks the sections the apiserver binary uses.
func (c *Config) ValidateAPI() error {
	if err := c.Database.validate("database"); err != nil {
		return err
	}
	if c.Cache.Addr == "" {
		return errors.New("cache.addr is required")
	}
	if c.Cache.TTL <= 0 {
		return errors.New("cache.ttl must be > 0")
	}
	if c.API.Addr == "" {
		return errors.New("api.addr is required")
	}
	if c.API.DefaultLimit < 1 {
		return errors.New("api.default_limit must be >= 1")
	}
	return nil
}

func (b *BusConfig) validate() error {
	if len(b.Brokers) == 0 {
		return errors.New("bus.brokers is required")
	}
	for _, broker := range b.Brokers {
		if broker == "" {
			return errors.New("bus.brokers entries must be non-empty")
		}
	}
	if b.Topic == "" {
		return errors.New("bus.topic is required")
	}
	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
