// Package paths turns request paths into verified document paths confined to a
// root directory, and request page numbers into zero-based page indexes.
package paths

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrTraversal indicates the path resolves outside the root.
	ErrTraversal = errors.New("path escapes document root")

	// ErrNotFound indicates the path does not name a readable regular file.
	ErrNotFound = errors.New("document not found")

	// ErrTooLarge indicates the document exceeds the configured size limit.
	ErrTooLarge = errors.New("document too large")
)

// Resolver resolves request paths against a canonical root directory.
type Resolver struct {
	root    string
	maxSize int64
}

// NewResolver creates a resolver for root, which must already be absolute and
// free of symlinks (see config.ResolveRoot). A maxSize of zero disables the
// size check.
func NewResolver(root string, maxSize int64) *Resolver {
	return &Resolver{
		root:    filepath.Clean(root),
		maxSize: maxSize,
	}
}

// Root returns the canonical root directory.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a request path to the canonical path of a readable regular file
// under the root. A single leading separator is stripped so "/a/b.pdf" and
// "a/b.pdf" are equivalent.
func (r *Resolver) Resolve(raw string) (string, error) {
	rel := strings.TrimPrefix(filepath.FromSlash(raw), string(filepath.Separator))

	joined := filepath.Join(r.root, rel)
	if !r.contains(joined) {
		return "", fmt.Errorf("%w: %q", ErrTraversal, raw)
	}

	real, err := filepath.EvalSymlinks(joined)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrNotFound, raw, err)
	}
	if !r.contains(real) {
		return "", fmt.Errorf("%w: %q resolves to %s", ErrTraversal, raw, real)
	}

	info, err := os.Stat(real)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrNotFound, raw, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrNotFound, real)
	}
	if r.maxSize > 0 && info.Size() > r.maxSize {
		return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrTooLarge, real, info.Size(), r.maxSize)
	}

	if err := checkReadable(real); err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, real, err)
	}

	return real, nil
}

// contains reports whether path is the root or lies beneath it.
func (r *Resolver) contains(path string) bool {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return fs.ErrPermission
		}
		return err
	}
	return f.Close()
}

// DefaultPage is the one-based page served when the page parameter is absent
// or not a number.
const DefaultPage = 1

// PageIndex converts a one-based page number from a request into a zero-based
// index. Empty or unparsable input falls back to DefaultPage rather than
// failing; ok reports whether the input was used as given. Zero and negative
// numbers are passed through and rejected later as out of range.
func PageIndex(raw string) (index int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultPage - 1, false
	}

	n, err := strconv.Atoi(raw)
	if err != nil {
		return DefaultPage - 1, false
	}

	return n - 1, true
}
