package paths_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/pdf-image-server/internal/config"
	"github.com/JaimeStill/pdf-image-server/internal/paths"
)

func write(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setup(t *testing.T) (root, outside string) {
	t.Helper()

	base, err := config.ResolveRoot(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	root = filepath.Join(base, "root")
	outside = filepath.Join(base, "outside.pdf")

	write(t, filepath.Join(root, "a.pdf"), 10)
	write(t, filepath.Join(root, "sub", "b.pdf"), 10)
	write(t, filepath.Join(root, "big.pdf"), 200)
	write(t, outside, 10)

	return root, outside
}

func TestResolve(t *testing.T) {
	root, _ := setup(t)
	r := paths.NewResolver(root, 100)

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"leading slash", "/a.pdf", "a.pdf"},
		{"relative", "a.pdf", "a.pdf"},
		{"nested", "/sub/b.pdf", "sub/b.pdf"},
		{"inner dot-dot", "/sub/../a.pdf", "a.pdf"},
		{"double slash", "//sub//b.pdf", "sub/b.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.raw)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.raw, err)
			}
			if want := filepath.Join(root, filepath.FromSlash(tt.want)); got != want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.raw, got, want)
			}
		})
	}
}

func TestResolveErrors(t *testing.T) {
	root, outside := setup(t)

	if err := os.Symlink(outside, filepath.Join(root, "link.pdf")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Dir(outside), filepath.Join(root, "up")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if err := os.Symlink(filepath.Join(root, "a.pdf"), filepath.Join(root, "alias.pdf")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	r := paths.NewResolver(root, 100)

	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"dot-dot escape", "/../outside.pdf", paths.ErrTraversal},
		{"deep dot-dot escape", "sub/../../outside.pdf", paths.ErrTraversal},
		{"symlinked file", "/link.pdf", paths.ErrTraversal},
		{"symlinked directory", "/up/outside.pdf", paths.ErrTraversal},
		{"missing", "/nope.pdf", paths.ErrNotFound},
		{"directory", "/sub", paths.ErrNotFound},
		{"root itself", "/", paths.ErrNotFound},
		{"too large", "/big.pdf", paths.ErrTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.raw)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Resolve(%q) = %q, %v; want error %v", tt.raw, got, err, tt.wantErr)
			}
		})
	}

	got, err := r.Resolve("/alias.pdf")
	if err != nil {
		t.Fatalf("Resolve(alias) error = %v", err)
	}
	if want := filepath.Join(root, "a.pdf"); got != want {
		t.Errorf("Resolve(alias) = %q, want canonical %q", got, want)
	}
}

func TestResolveNoSizeLimit(t *testing.T) {
	root, _ := setup(t)

	if _, err := paths.NewResolver(root, 0).Resolve("/big.pdf"); err != nil {
		t.Errorf("Resolve() error = %v, want nil with limit disabled", err)
	}
}

func TestPageIndex(t *testing.T) {
	tests := []struct {
		raw    string
		want   int
		wantOK bool
	}{
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{"1", 0, true},
		{"3", 2, true},
		{" 7 ", 6, true},
		{"0", -1, true},
		{"-2", -3, true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := paths.PageIndex(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("PageIndex(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
