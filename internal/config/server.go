package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost             = "SERVER_HOST"
	EnvServerPort             = "SERVER_PORT"
	EnvServerReadTimeout      = "SERVER_READ_TIMEOUT"
	EnvServerWriteIdleTimeout = "SERVER_WRITE_IDLE_TIMEOUT"
	EnvServerIdleTimeout      = "SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout  = "SERVER_SHUTDOWN_TIMEOUT"
	EnvServerRateLimit        = "SERVER_RATE_LIMIT"
	EnvServerRateBurst        = "SERVER_RATE_BURST"
)

// ServerConfig contains HTTP listener configuration. Timeouts govern network
// activity only; rendering time is not bounded.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// ReadTimeout bounds reading the request, headers included.
	ReadTimeout string `toml:"read_timeout"`

	// WriteIdleTimeout bounds each individual body write, so a stalled
	// client is dropped while a slow render is not.
	WriteIdleTimeout string `toml:"write_idle_timeout"`

	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`

	// RateLimit is requests per second across the process; 0 disables it.
	RateLimit float64 `toml:"rate_limit"`
	RateBurst int     `toml:"rate_burst"`
}

// Addr returns the listen address in host:port form.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

func (c *ServerConfig) WriteIdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.WriteIdleTimeout)
	return d
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Finalize applies defaults, loads environment overrides, and validates the server configuration.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.ReadTimeout != "" {
		c.ReadTimeout = overlay.ReadTimeout
	}
	if overlay.WriteIdleTimeout != "" {
		c.WriteIdleTimeout = overlay.WriteIdleTimeout
	}
	if overlay.IdleTimeout != "" {
		c.IdleTimeout = overlay.IdleTimeout
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.RateBurst != 0 {
		c.RateBurst = overlay.RateBurst
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == "" {
		c.ReadTimeout = "30s"
	}
	if c.WriteIdleTimeout == "" {
		c.WriteIdleTimeout = "30s"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "120s"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.RateBurst == 0 {
		c.RateBurst = 10
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv(EnvServerReadTimeout); v != "" {
		c.ReadTimeout = v
	}
	if v := os.Getenv(EnvServerWriteIdleTimeout); v != "" {
		c.WriteIdleTimeout = v
	}
	if v := os.Getenv(EnvServerIdleTimeout); v != "" {
		c.IdleTimeout = v
	}
	if v := os.Getenv(EnvServerShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvServerRateLimit); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			c.RateLimit = rps
		}
	}
	if v := os.Getenv(EnvServerRateBurst); v != "" {
		if burst, err := strconv.Atoi(v); err == nil {
			c.RateBurst = burst
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	durations := map[string]string{
		"read_timeout":       c.ReadTimeout,
		"write_idle_timeout": c.WriteIdleTimeout,
		"idle_timeout":       c.IdleTimeout,
		"shutdown_timeout":   c.ShutdownTimeout,
	}
	for name, v := range durations {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}
