package config

import (
	"fmt"
	"image/png"
	"os"
	"runtime"
	"strconv"

	"github.com/docker/go-units"
)

const (
	EnvPipelineChunkSize     = "PIPELINE_CHUNK_SIZE"
	EnvPipelinePrebuffer     = "PIPELINE_PREBUFFER"
	EnvPipelineMaxConcurrent = "PIPELINE_MAX_CONCURRENT"
	EnvPipelineCompression   = "PIPELINE_COMPRESSION"
)

const maxBufferSize = 64 << 20

// Compression names a PNG compression level.
type Compression string

const (
	CompressionDefault Compression = "default"
	CompressionNone    Compression = "none"
	CompressionSpeed   Compression = "speed"
	CompressionBest    Compression = "best"
)

// Level converts the name to the image/png encoder setting.
func (c Compression) Level() png.CompressionLevel {
	switch c {
	case CompressionNone:
		return png.NoCompression
	case CompressionSpeed:
		return png.BestSpeed
	case CompressionBest:
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// Validate checks if the compression name is known.
func (c Compression) Validate() error {
	switch c {
	case CompressionDefault, CompressionNone, CompressionSpeed, CompressionBest:
		return nil
	default:
		return fmt.Errorf("invalid compression: %s (must be default, none, speed, or best)", c)
	}
}

// PipelineConfig tunes the render-and-stream pipeline.
type PipelineConfig struct {
	// ChunkSize is the producer's write buffer; it bounds how far encoding can
	// run ahead of the client.
	// Default: "32KB"
	ChunkSize string `toml:"chunk_size"`

	// Prebuffer is how much encoded output must be ready (or the stream must
	// end) before the success status is committed.
	// Default: "8KB"
	Prebuffer string `toml:"prebuffer"`

	// MaxConcurrent bounds the number of documents processed at once.
	// Default: number of CPUs.
	MaxConcurrent int `toml:"max_concurrent"`

	Compression Compression `toml:"compression"`

	chunkSizeVal int64
	prebufferVal int64
}

func (c *PipelineConfig) ChunkSizeBytes() int {
	return int(c.chunkSizeVal)
}

func (c *PipelineConfig) PrebufferBytes() int {
	return int(c.prebufferVal)
}

// Finalize applies defaults, loads environment overrides, and validates the pipeline configuration.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.ChunkSize != "" {
		c.ChunkSize = overlay.ChunkSize
	}
	if overlay.Prebuffer != "" {
		c.Prebuffer = overlay.Prebuffer
	}
	if overlay.MaxConcurrent != 0 {
		c.MaxConcurrent = overlay.MaxConcurrent
	}
	if overlay.Compression != "" {
		c.Compression = overlay.Compression
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.ChunkSize == "" {
		c.ChunkSize = "32KB"
	}
	if c.Prebuffer == "" {
		c.Prebuffer = "8KB"
	}
	if c.MaxConcurrent == 0 {
		c.MaxConcurrent = runtime.NumCPU()
	}
	if c.Compression == "" {
		c.Compression = CompressionDefault
	}
}

func (c *PipelineConfig) loadEnv() {
	if v := os.Getenv(EnvPipelineChunkSize); v != "" {
		c.ChunkSize = v
	}
	if v := os.Getenv(EnvPipelinePrebuffer); v != "" {
		c.Prebuffer = v
	}
	if v := os.Getenv(EnvPipelineMaxConcurrent); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxConcurrent = n
		}
	}
	if v := os.Getenv(EnvPipelineCompression); v != "" {
		c.Compression = Compression(v)
	}
}

func (c *PipelineConfig) validate() error {
	chunk, err := units.FromHumanSize(c.ChunkSize)
	if err != nil {
		return fmt.Errorf("invalid chunk_size: %w", err)
	}
	if chunk <= 0 || chunk > maxBufferSize {
		return fmt.Errorf("chunk_size out of range: %d", chunk)
	}
	c.chunkSizeVal = chunk

	pre, err := units.FromHumanSize(c.Prebuffer)
	if err != nil {
		return fmt.Errorf("invalid prebuffer: %w", err)
	}
	if pre <= 0 || pre > maxBufferSize {
		return fmt.Errorf("prebuffer out of range: %d", pre)
	}
	c.prebufferVal = pre

	if c.MaxConcurrent < 1 {
		return fmt.Errorf("max_concurrent must be at least 1")
	}

	return c.Compression.Validate()
}
