package config_test

import (
	"image/png"
	"runtime"
	"testing"

	"github.com/JaimeStill/pdf-image-server/internal/config"
)

func TestPipelineConfigDefaults(t *testing.T) {
	var cfg config.PipelineConfig
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.ChunkSizeBytes() != 32000 {
		t.Errorf("ChunkSizeBytes() = %d, want 32000", cfg.ChunkSizeBytes())
	}
	if cfg.PrebufferBytes() != 8000 {
		t.Errorf("PrebufferBytes() = %d, want 8000", cfg.PrebufferBytes())
	}
	if cfg.MaxConcurrent != runtime.NumCPU() {
		t.Errorf("MaxConcurrent = %d, want %d", cfg.MaxConcurrent, runtime.NumCPU())
	}
	if cfg.Compression.Level() != png.DefaultCompression {
		t.Errorf("Compression = %q, want default", cfg.Compression)
	}
}

func TestPipelineConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.PipelineConfig
	}{
		{"unparsable chunk", config.PipelineConfig{ChunkSize: "lots"}},
		{"huge chunk", config.PipelineConfig{ChunkSize: "1GB"}},
		{"unparsable prebuffer", config.PipelineConfig{Prebuffer: "some"}},
		{"negative concurrency", config.PipelineConfig{MaxConcurrent: -1}},
		{"unknown compression", config.PipelineConfig{Compression: "ultra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(); err == nil {
				t.Error("Finalize() = nil, want error")
			}
		})
	}
}

func TestCompressionLevel(t *testing.T) {
	tests := []struct {
		c    config.Compression
		want png.CompressionLevel
	}{
		{config.CompressionDefault, png.DefaultCompression},
		{config.CompressionNone, png.NoCompression},
		{config.CompressionSpeed, png.BestSpeed},
		{config.CompressionBest, png.BestCompression},
	}

	for _, tt := range tests {
		if got := tt.c.Level(); got != tt.want {
			t.Errorf("%s.Level() = %v, want %v", tt.c, got, tt.want)
		}
	}
}
