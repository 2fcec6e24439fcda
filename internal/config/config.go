// Package config provides service configuration with support for a TOML file,
// an environment-specific overlay, and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/JaimeStill/pdf-image-server/pkg/logging"
	"github.com/JaimeStill/pdf-image-server/pkg/middleware"
	"github.com/pelletier/go-toml/v2"
)

const (
	// BaseConfigFile is the primary configuration file name.
	BaseConfigFile = "config.toml"

	// OverlayConfigPattern is the file name pattern for environment-specific overlays.
	OverlayConfigPattern = "config.%s.toml"

	// EnvServiceEnv specifies the environment name for configuration overlays.
	EnvServiceEnv = "SERVICE_ENV"
)

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
	Source: "LOGGING_SOURCE",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CORS_ENABLED",
	Origins:          "CORS_ORIGINS",
	AllowedMethods:   "CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CORS_ALLOWED_HEADERS",
	AllowCredentials: "CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CORS_MAX_AGE",
}

// Config represents the root service configuration.
type Config struct {
	Server    ServerConfig          `toml:"server"`
	Logging   logging.Config        `toml:"logging"`
	Documents DocumentsConfig       `toml:"documents"`
	Pipeline  PipelineConfig        `toml:"pipeline"`
	CORS      middleware.CORSConfig `toml:"cors"`
}

// Load reads the configuration file at path and applies any overlay selected by
// SERVICE_ENV. An empty path means BaseConfigFile, which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = BaseConfigFile
	}

	cfg, err := load(path)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &Config{}
	}

	if overlay := overlayPath(); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	return cfg, nil
}

// Finalize applies defaults, loads environment overrides, and validates the configuration.
// It fails with ErrRootUnresolvable when the document root cannot be resolved.
func (c *Config) Finalize() error {
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(loggingEnv); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Documents.Finalize(); err != nil {
		return fmt.Errorf("documents: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *Config) Merge(overlay *Config) {
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Documents.Merge(&overlay.Documents)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.CORS.Merge(&overlay.CORS)
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvServiceEnv); env != "" {
		p := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
