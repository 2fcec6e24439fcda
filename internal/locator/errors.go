package locator

import "errors"

// Domain errors for page location.
var (
	ErrPageOutOfRange = errors.New("page index out of range")
	ErrNoImage        = errors.New("page has no embedded image")
)
