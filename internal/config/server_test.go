package config_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/pdf-image-server/internal/config"
)

func TestServerConfigDefaults(t *testing.T) {
	var cfg config.ServerConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	tests := []struct {
		name string
		got  time.Duration
		want time.Duration
	}{
		{"read", cfg.ReadTimeoutDuration(), 30 * time.Second},
		{"write idle", cfg.WriteIdleTimeoutDuration(), 30 * time.Second},
		{"idle", cfg.IdleTimeoutDuration(), 120 * time.Second},
		{"shutdown", cfg.ShutdownTimeoutDuration(), 30 * time.Second},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s timeout = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
	if cfg.RateLimit != 0 || cfg.RateBurst != 10 {
		t.Errorf("rate = %v/%d, want 0/10", cfg.RateLimit, cfg.RateBurst)
	}
}

func TestServerConfigAddr(t *testing.T) {
	cfg := config.ServerConfig{Host: "::1", Port: 8080}
	if got := cfg.Addr(); got != "[::1]:8080" {
		t.Errorf("Addr() = %q, want [::1]:8080", got)
	}
}

func TestServerConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ServerConfig
	}{
		{"port too high", config.ServerConfig{Port: 70000}},
		{"negative port", config.ServerConfig{Port: -1}},
		{"bad duration", config.ServerConfig{ReadTimeout: "soon"}},
		{"negative rate", config.ServerConfig{RateLimit: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() = nil, want error")
			}
		})
	}
}

func TestServerConfigMerge(t *testing.T) {
	cfg := config.ServerConfig{Host: "localhost", Port: 8080, ReadTimeout: "1s"}
	cfg.Merge(&config.ServerConfig{Port: 9090, RateLimit: 5})

	if cfg.Host != "localhost" || cfg.Port != 9090 || cfg.ReadTimeout != "1s" || cfg.RateLimit != 5 {
		t.Errorf("merged = %+v", cfg)
	}
}
