package pipeline

import "errors"

// Domain errors for streaming.
var (
	ErrEncode       = errors.New("png encoding failed")
	ErrStreamClosed = errors.New("stream closed by consumer")
)
