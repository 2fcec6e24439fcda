// Package locator finds the raster image to serve for a page.
//
// The selection policy is FirstImage: the first image XObject in the order
// the document model lists a page's resources wins. Pages carrying several
// images are served only their first one. For PDF files that order is
// ascending resource name (/Im0 before /Im1), since the parsed resource
// dictionary does not keep file order.
package locator

import (
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"

	"github.com/JaimeStill/pdf-image-server/internal/document"
	"github.com/JaimeStill/pdf-image-server/internal/orientation"
)

// Located is the outcome of a successful lookup.
type Located struct {
	Image     *image.NRGBA
	Rotation  orientation.Angle
	Resource  string
	PageCount int
}

// Locator selects and decodes page images.
type Locator struct {
	logger *slog.Logger
}

// New creates a Locator.
func New(logger *slog.Logger) *Locator {
	return &Locator{logger: logger.With("system", "locator")}
}

// Locate returns the first embedded image of the zero-based page index along
// with the page's normalized display rotation.
func (l *Locator) Locate(doc document.Document, index int) (*Located, error) {
	count := doc.PageCount()
	if index < 0 || index >= count {
		return nil, fmt.Errorf("%w: index %d, %d pages", ErrPageOutOfRange, index, count)
	}

	page, err := doc.Page(index)
	if err != nil {
		return nil, err
	}

	resources, err := page.Resources()
	if err != nil {
		return nil, err
	}

	for _, r := range resources {
		if !r.IsImage() {
			continue
		}

		pixels, err := r.Pixels()
		if err != nil {
			return nil, err
		}

		located := &Located{
			Image:     toNRGBA(pixels),
			Rotation:  orientation.Normalize(page.Rotation()),
			Resource:  r.Name(),
			PageCount: count,
		}

		b := located.Image.Bounds()
		l.logger.Debug("image located",
			"page_index", index,
			"page_count", count,
			"media_box", page.MediaBox(),
			"crop_box", page.CropBox(),
			"rotation", page.Rotation(),
			"resource", r.Name(),
			"width", b.Dx(),
			"height", b.Dy(),
		)

		return located, nil
	}

	return nil, fmt.Errorf("%w: index %d", ErrNoImage, index)
}

// toNRGBA returns img unchanged when it already is NRGBA and otherwise
// converts it once into a zero-origin buffer.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}

	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}
