package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/docker/go-units"
)

const (
	// EnvDocumentsRoot overrides the directory documents are served from.
	EnvDocumentsRoot    = "DOCUMENTS_ROOT"
	EnvDocumentsMaxSize = "DOCUMENTS_MAX_SIZE"
)

// ErrRootUnresolvable is returned when the document root cannot be resolved to
// an existing directory. The service must not start in that state.
var ErrRootUnresolvable = errors.New("document root unresolvable")

// DocumentsConfig describes where documents are served from.
type DocumentsConfig struct {
	// Root is the directory request paths resolve against.
	// Default: the process working directory.
	Root string `toml:"root"`

	// MaxSize caps the size of a document the service will open.
	// Default: "512MB"
	MaxSize string `toml:"max_size"`

	maxSizeVal   int64
	resolvedRoot string
}

// MaxSizeBytes returns the parsed MaxSize.
func (c *DocumentsConfig) MaxSizeBytes() int64 {
	return c.maxSizeVal
}

// ResolvedRoot returns the canonical absolute root computed by Finalize.
func (c *DocumentsConfig) ResolvedRoot() string {
	return c.resolvedRoot
}

// Finalize applies defaults, loads environment overrides, resolves the root and
// validates sizes.
func (c *DocumentsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *DocumentsConfig) Merge(overlay *DocumentsConfig) {
	if overlay.Root != "" {
		c.Root = overlay.Root
	}
	if overlay.MaxSize != "" {
		c.MaxSize = overlay.MaxSize
	}
}

func (c *DocumentsConfig) loadDefaults() {
	if c.Root == "" {
		c.Root = "."
	}
	if c.MaxSize == "" {
		c.MaxSize = "512MB"
	}
}

func (c *DocumentsConfig) loadEnv() {
	if v := os.Getenv(EnvDocumentsRoot); v != "" {
		c.Root = v
	}
	if v := os.Getenv(EnvDocumentsMaxSize); v != "" {
		c.MaxSize = v
	}
}

func (c *DocumentsConfig) validate() error {
	root, err := ResolveRoot(c.Root)
	if err != nil {
		return err
	}
	c.resolvedRoot = root

	size, err := units.FromHumanSize(c.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid max_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_size must be positive")
	}
	c.maxSizeVal = size

	return nil
}

// ResolveRoot returns the absolute, symlink-free form of dir and verifies it is
// a directory.
func ResolveRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnresolvable, dir, err)
	}

	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnresolvable, dir, err)
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrRootUnresolvable, dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrRootUnresolvable, real)
	}

	return real, nil
}
