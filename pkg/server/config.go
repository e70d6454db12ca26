package server

import (
	"fmt"
	"net/http"
	"time"
)

// LiveConfig holds configuration for live navigation sessions.
type LiveConfig struct {
	// ReadTimeout is the maximum time to wait for a message or pong from
	// the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between heartbeat pings. Must be shorter
	// than ReadTimeout.
	// Default: 30 seconds.
	PingInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 4KB.
	MaxMessageSize int64

	// NavigateRate is the sustained number of navigations per second a
	// session may request.
	// Default: 10.
	NavigateRate float64

	// NavigateBurst is the number of navigations allowed in a burst.
	// Default: 20.
	NavigateBurst int

	// CheckOrigin validates the Origin header of upgrade requests. Nil
	// accepts same-origin requests only.
	CheckOrigin func(r *http.Request) bool
}

// Config holds the server configuration.
type Config struct {
	// Address is the TCP address to listen on.
	// Default: ":8080".
	Address string

	// ReadHeaderTimeout bounds reading request headers.
	// Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 15 seconds.
	ShutdownTimeout time.Duration

	// LoaderTimeout bounds every loader. Zero means no limit.
	// Default: 10 seconds.
	LoaderTimeout time.Duration

	Live LiveConfig
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:           ":8080",
		ReadHeaderTimeout: 10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		LoaderTimeout:     10 * time.Second,
		Live: LiveConfig{
			ReadTimeout:    60 * time.Second,
			WriteTimeout:   10 * time.Second,
			PingInterval:   30 * time.Second,
			MaxMessageSize: 4 * 1024,
			NavigateRate:   10,
			NavigateBurst:  20,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c Config) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("server: address is required")
	}
	if c.Live.ReadTimeout <= 0 || c.Live.WriteTimeout <= 0 {
		return fmt.Errorf("server: live timeouts must be positive")
	}
	if c.Live.PingInterval <= 0 || c.Live.PingInterval >= c.Live.ReadTimeout {
		return fmt.Errorf("server: ping interval %s must be positive and shorter than read timeout %s",
			c.Live.PingInterval, c.Live.ReadTimeout)
	}
	if c.Live.MaxMessageSize <= 0 {
		return fmt.Errorf("server: max message size must be positive")
	}
	if c.Live.NavigateRate <= 0 || c.Live.NavigateBurst <= 0 {
		return fmt.Errorf("server: navigate rate and burst must be positive")
	}
	if c.LoaderTimeout < 0 {
		return fmt.Errorf("server: loader timeout cannot be negative")
	}
	return nil
}
