// Package document defines the read-only PDF object model the service needs:
// a page count, per-page display rotation and boxes, and the page's XObject
// resources. PDFOpener implements it on top of pdfcpu.
package document

import (
	"context"
	"image"
	"io"
)

// Opener opens documents by resolved file path.
type Opener interface {
	Open(ctx context.Context, path string) (Document, error)
}

// Document is an open PDF. It is owned by a single goroutine and must be
// closed by it.
type Document interface {
	io.Closer
	PageCount() int
	// Page returns the zero-based page index. Callers check the range first.
	Page(index int) (Page, error)
}

// Page exposes the attributes of one page, with inherited values from the
// page tree already applied.
type Page interface {
	// Rotation is the raw /Rotate value.
	Rotation() int
	MediaBox() string
	CropBox() string
	// Resources lists the page's XObjects in a stable order.
	Resources() ([]Resource, error)
}

// Resource is a named XObject of a page.
type Resource interface {
	Name() string
	IsImage() bool
	// Pixels decodes an image XObject.
	Pixels() (image.Image, error)
}
