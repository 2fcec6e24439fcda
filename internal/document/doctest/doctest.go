// Package doctest provides in-memory documents for tests of code built on
// package document.
package doctest

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/JaimeStill/pdf-image-server/internal/document"
)

// Resource is an in-memory XObject. A nil Image marks a non-image XObject.
type Resource struct {
	ID    string
	Image image.Image
	Err   error
}

func (r *Resource) Name() string  { return r.ID }
func (r *Resource) IsImage() bool { return r.Image != nil || r.Err != nil }

func (r *Resource) Pixels() (image.Image, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	if r.Image == nil {
		return nil, fmt.Errorf("%w: %s is not an image", document.ErrUnsupportedImage, r.ID)
	}
	return r.Image, nil
}

// Page is an in-memory page.
type Page struct {
	Rotate   int
	Media    string
	Crop     string
	Items    []*Resource
	ItemsErr error
}

func (p *Page) Rotation() int    { return p.Rotate }
func (p *Page) MediaBox() string { return p.Media }
func (p *Page) CropBox() string  { return p.Crop }

func (p *Page) Resources() ([]document.Resource, error) {
	if p.ItemsErr != nil {
		return nil, p.ItemsErr
	}
	out := make([]document.Resource, len(p.Items))
	for i, r := range p.Items {
		out[i] = r
	}
	return out, nil
}

// Document is an in-memory document that records page access and closing.
type Document struct {
	Pages []*Page

	mu       sync.Mutex
	accessed []int
	closed   atomic.Bool
}

func (d *Document) PageCount() int { return len(d.Pages) }

func (d *Document) Page(index int) (document.Page, error) {
	d.mu.Lock()
	d.accessed = append(d.accessed, index)
	d.mu.Unlock()

	if index < 0 || index >= len(d.Pages) {
		return nil, fmt.Errorf("%w: page index %d dereferenced out of range", document.ErrParse, index)
	}
	return d.Pages[index], nil
}

// Accessed returns the page indexes passed to Page so far.
func (d *Document) Accessed() []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.accessed...)
}

func (d *Document) Close() error {
	d.closed.Store(true)
	return nil
}

// Closed reports whether Close was called.
func (d *Document) Closed() bool {
	return d.closed.Load()
}

// Opener serves documents from a map keyed by path.
type Opener struct {
	mu    sync.Mutex
	docs  map[string]*Document
	opens atomic.Int64

	// Gate, when set, blocks Open until it is closed or ctx ends.
	Gate chan struct{}
}

// NewOpener creates an Opener serving docs.
func NewOpener(docs map[string]*Document) *Opener {
	return &Opener{docs: docs}
}

func (o *Opener) Open(ctx context.Context, path string) (document.Document, error) {
	o.opens.Add(1)

	if o.Gate != nil {
		select {
		case <-o.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	doc, ok := o.docs[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", document.ErrParse, path)
	}
	return doc, nil
}

// Opens returns how many times Open was called.
func (o *Opener) Opens() int {
	return int(o.opens.Load())
}

// ErrDecode is a stand-in decode failure for Resource.Err.
var ErrDecode = errors.New("doctest: decode failed")
