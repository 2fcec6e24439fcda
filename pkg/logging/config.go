package logging

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Env names the environment variables read by Config.Finalize. Empty names
// are skipped.
type Env struct {
	Level  string
	Format string
	Source string
}

// Config selects the level, output format and source annotation of the
// service logger. Level and Format are matched case-insensitively when read
// from the environment.
type Config struct {
	Level  Level  `toml:"level"`
	Format Format `toml:"format"`

	// Source adds the emitting file and line to every record. Useful when
	// tracing page diagnostics at debug level.
	Source bool `toml:"source"`
}

// Finalize fills unset fields (info, text), applies env and validates.
func (c *Config) Finalize(env *Env) error {
	if c.Level == "" {
		c.Level = LevelInfo
	}
	if c.Format == "" {
		c.Format = FormatText
	}
	if err := c.loadEnv(env); err != nil {
		return err
	}
	if err := c.Level.Validate(); err != nil {
		return err
	}
	return c.Format.Validate()
}

// Merge copies the fields an overlay file sets. Source can only be switched
// on by an overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
	c.Source = c.Source || overlay.Source
}

func (c *Config) loadEnv(env *Env) error {
	if env == nil {
		return nil
	}
	if v := lookup(env.Level); v != "" {
		c.Level = Level(strings.ToLower(v))
	}
	if v := lookup(env.Format); v != "" {
		c.Format = Format(strings.ToLower(v))
	}
	if v := lookup(env.Source); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", env.Source, v)
		}
		c.Source = on
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(name))
}
