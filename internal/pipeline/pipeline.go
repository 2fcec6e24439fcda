// Package pipeline turns a document page into a streamed PNG.
//
// Each Stream runs one producer goroutine that opens the document, locates
// the page image, corrects its orientation and encodes it into the write end
// of an io.Pipe. The consumer reads the other end. A bufio.Writer of
// ChunkSize bytes sits in front of the pipe, so encoding runs at most one
// chunk ahead of the consumer.
package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/JaimeStill/pdf-image-server/internal/config"
	"github.com/JaimeStill/pdf-image-server/internal/document"
	"github.com/JaimeStill/pdf-image-server/internal/locator"
	"github.com/JaimeStill/pdf-image-server/internal/orientation"
	"github.com/JaimeStill/pdf-image-server/pkg/middleware"
)

// Request identifies one page of a resolved document.
type Request struct {
	Path  string
	Index int
}

// Pipeline holds the immutable settings shared by all streams.
type Pipeline struct {
	opener    document.Opener
	locator   *locator.Locator
	sem       *semaphore.Weighted
	chunk     int
	prebuffer int
	encoder   *png.Encoder
	logger    *slog.Logger
}

// New creates a Pipeline from finalized configuration.
func New(opener document.Opener, loc *locator.Locator, cfg *config.PipelineConfig, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		opener:    opener,
		locator:   loc,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		chunk:     cfg.ChunkSizeBytes(),
		prebuffer: cfg.PrebufferBytes(),
		encoder: &png.Encoder{
			CompressionLevel: cfg.Compression.Level(),
			BufferPool:       &bufferPool{},
		},
		logger: logger.With("system", "pipeline"),
	}
}

// Stream starts producing req and returns the consumer side. The caller must
// Close the stream. Cancelling ctx aborts production.
func (p *Pipeline) Stream(ctx context.Context, req Request) *Stream {
	ctx, cancel := context.WithCancel(ctx)
	s := newStream(ctx, cancel, p.prebuffer)

	logger := p.logger.With("path", req.Path, "page_index", req.Index)
	if id := middleware.RequestIDFrom(ctx); id != "" {
		logger = logger.With("request_id", id)
	}

	go func() {
		defer close(s.done)
		err := p.produce(ctx, req, s, logger)
		s.pw.CloseWithError(err)
	}()

	return s
}

func (p *Pipeline) produce(ctx context.Context, req Request, s *Stream, logger *slog.Logger) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	doc, err := p.opener.Open(ctx, req.Path)
	if err != nil {
		logger.Warn("open failed", "error", err)
		return err
	}
	defer func() {
		if err := doc.Close(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}()

	logger = logger.With("page_count", doc.PageCount())

	loc, err := p.locator.Locate(doc, req.Index)
	if err != nil {
		logger.Warn("locate failed", "error", err)
		return err
	}

	img := orientation.Correct(loc.Image, loc.Rotation)
	b := img.Bounds()
	logger = logger.With(
		"resource", loc.Resource,
		"rotation", int(loc.Rotation),
		"width", b.Dx(),
		"height", b.Dy(),
	)

	bw := bufio.NewWriterSize(s.pw, p.chunk)
	if err := p.encoder.Encode(bw, img); err != nil {
		return p.encodeFailure(ctx, logger, err)
	}
	if err := bw.Flush(); err != nil {
		return p.encodeFailure(ctx, logger, err)
	}

	logger.Debug("stream produced")
	return nil
}

func (p *Pipeline) encodeFailure(ctx context.Context, logger *slog.Logger, err error) error {
	if ctx.Err() != nil || errors.Is(err, ErrStreamClosed) {
		logger.Debug("stream abandoned", "error", err)
	} else {
		logger.Error("encode failed", "error", err)
	}
	return fmt.Errorf("%w: %w", ErrEncode, err)
}

// bufferPool reuses the encoder's scratch buffers across streams.
type bufferPool struct {
	pool sync.Pool
}

func (b *bufferPool) Get() *png.EncoderBuffer {
	buf, _ := b.pool.Get().(*png.EncoderBuffer)
	return buf
}

func (b *bufferPool) Put(buf *png.EncoderBuffer) {
	b.pool.Put(buf)
}
