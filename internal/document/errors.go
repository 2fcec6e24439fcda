package document

import "errors"

// Domain errors for document access.
var (
	ErrParse            = errors.New("document could not be parsed")
	ErrUnsupportedImage = errors.New("image encoding is not supported")
)
