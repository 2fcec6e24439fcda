package pipeline

import (
	"bufio"
	"context"
	"errors"
	"io"
)

// Stream is the consumer side of a running production.
type Stream struct {
	pr     *io.PipeReader
	pw     *io.PipeWriter
	br     *bufio.Reader
	peek   int
	cancel context.CancelFunc
	stop   func() bool
	done   chan struct{}
}

func newStream(ctx context.Context, cancel context.CancelFunc, prebuffer int) *Stream {
	pr, pw := io.Pipe()
	s := &Stream{
		pr:     pr,
		pw:     pw,
		br:     bufio.NewReaderSize(pr, prebuffer),
		peek:   prebuffer,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	// Ending the request closes the write side: a producer blocked on a
	// write is released and the consumer reads the context error. A
	// production that already finished keeps its result.
	s.stop = context.AfterFunc(ctx, func() {
		pw.CloseWithError(ctx.Err())
	})

	return s
}

// Ready blocks until the prebuffer is filled or production ended. A nil
// result means the stream will deliver at least a complete prefix of a valid
// image, so the caller may commit a success status. Any other result is the
// production error and no bytes have been handed out.
func (s *Stream) Ready() error {
	_, err := s.br.Peek(s.peek)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Read reads encoded PNG bytes. After Ready succeeded, a non-EOF error means
// the output is truncated.
func (s *Stream) Read(p []byte) (int, error) {
	return s.br.Read(p)
}

// Close abandons the stream and waits for the producer to exit, which
// includes closing its document. It is safe to call more than once.
func (s *Stream) Close() error {
	s.pr.CloseWithError(ErrStreamClosed)
	s.cancel()
	s.stop()
	<-s.done
	return nil
}
