package images

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/pdf-image-server/internal/paths"
	"github.com/JaimeStill/pdf-image-server/internal/pipeline"
	"github.com/JaimeStill/pdf-image-server/pkg/handlers"
	"github.com/JaimeStill/pdf-image-server/pkg/middleware"
	"github.com/JaimeStill/pdf-image-server/pkg/routes"
)

// PolicyDefaultPage names the behavior applied when the page parameter is
// missing or not a number: the first page is served.
const PolicyDefaultPage = "DefaultPageOnParseFailure"

// Handler serves GET /{path...}?page=N.
type Handler struct {
	resolver  *paths.Resolver
	pipeline  *pipeline.Pipeline
	logger    *slog.Logger
	writeIdle time.Duration
}

// NewHandler creates an image handler. writeIdle bounds how long a single
// write to the client may stall; zero disables the deadline.
func NewHandler(resolver *paths.Resolver, p *pipeline.Pipeline, logger *slog.Logger, writeIdle time.Duration) *Handler {
	return &Handler{
		resolver:  resolver,
		pipeline:  p,
		logger:    logger.With("handler", "images"),
		writeIdle: writeIdle,
	}
}

// Routes returns the catch-all image route.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Description: "Embedded page image extraction",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/", Handler: h.Serve},
		},
	}
}

// Serve handles GET /{path...} - streams the page image as PNG.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With("path", r.URL.Path)
	if id := middleware.RequestIDFrom(r.Context()); id != "" {
		logger = logger.With("request_id", id)
	}

	resolved, err := h.resolver.Resolve(r.URL.Path)
	if err != nil {
		h.fail(w, logger, err)
		return
	}

	raw := r.URL.Query().Get("page")
	index, ok := paths.PageIndex(raw)
	if !ok {
		level := slog.LevelDebug
		if raw != "" {
			level = slog.LevelWarn
		}
		logger.Log(r.Context(), level, "page defaulted", "page", raw, "policy", PolicyDefaultPage)
	}
	logger = logger.With("page_index", index)

	stream := h.pipeline.Stream(r.Context(), pipeline.Request{Path: resolved, Index: index})
	defer stream.Close()

	if err := stream.Ready(); err != nil {
		h.fail(w, logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)

	dw := &deadlineWriter{w: w, rc: http.NewResponseController(w), idle: h.writeIdle}
	n, err := io.Copy(dw, stream)
	if err != nil {
		logger.Warn("response truncated", "error", err, "class", Classify(err), "bytes", n)
		return
	}

	logger.Debug("image served", "bytes", n)
}

func (h *Handler) fail(w http.ResponseWriter, logger *slog.Logger, err error) {
	handlers.RespondError(w, logger, MapHTTPStatus(err), err, "class", Classify(err))
}

// deadlineWriter pushes each chunk to the client under a fresh write
// deadline, so a stalled client fails the write instead of pinning the
// producer.
type deadlineWriter struct {
	w    http.ResponseWriter
	rc   *http.ResponseController
	idle time.Duration
}

func (d *deadlineWriter) Write(p []byte) (int, error) {
	if d.idle > 0 {
		err := d.rc.SetWriteDeadline(time.Now().Add(d.idle))
		if err != nil && !errors.Is(err, http.ErrNotSupported) {
			return 0, err
		}
	}

	n, err := d.w.Write(p)
	if err != nil {
		return n, err
	}

	if err := d.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	return n, nil
}
