// Package handlers provides HTTP response utilities shared by handlers.
// These stateless functions standardize response formatting.
package handlers

import (
	"log/slog"
	"net/http"
)

// RespondText writes a plain text response with the given status code.
func RespondText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

// RespondStatus writes status with an empty body.
func RespondStatus(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Length", "0")
	w.WriteHeader(status)
}

// RespondError logs err with attrs and writes status with an empty body.
// Error details never reach the client.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "status", status)
	logger.Warn("handler error", attrs...)
	RespondStatus(w, status)
}
