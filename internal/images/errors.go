// Package images serves the embedded raster image of a PDF page as PNG.
package images

import (
	"context"
	"errors"
	"net/http"

	"github.com/JaimeStill/pdf-image-server/internal/document"
	"github.com/JaimeStill/pdf-image-server/internal/locator"
	"github.com/JaimeStill/pdf-image-server/internal/paths"
	"github.com/JaimeStill/pdf-image-server/internal/pipeline"
)

// Error classes reported in logs.
const (
	ClassSecurity = "security"
	ClassNotFound = "not_found"
	ClassRange    = "range"
	ClassParse    = "parse"
	ClassEncode   = "encode"
	ClassCanceled = "canceled"
	ClassInternal = "internal"
)

// Classify names the class of a request failure.
func Classify(err error) string {
	switch {
	case errors.Is(err, paths.ErrTraversal):
		return ClassSecurity
	case errors.Is(err, paths.ErrNotFound),
		errors.Is(err, paths.ErrTooLarge),
		errors.Is(err, locator.ErrNoImage):
		return ClassNotFound
	case errors.Is(err, locator.ErrPageOutOfRange):
		return ClassRange
	case errors.Is(err, document.ErrParse),
		errors.Is(err, document.ErrUnsupportedImage):
		return ClassParse
	case errors.Is(err, pipeline.ErrEncode):
		return ClassEncode
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, pipeline.ErrStreamClosed):
		return ClassCanceled
	default:
		return ClassInternal
	}
}

// MapHTTPStatus maps request failures to a status code. Every failure maps to
// 415 so clients cannot probe the document tree by status.
func MapHTTPStatus(err error) int {
	return http.StatusUnsupportedMediaType
}
