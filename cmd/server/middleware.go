package main

import (
	"github.com/JaimeStill/pdf-image-server/internal/config"
	"github.com/JaimeStill/pdf-image-server/pkg/middleware"
)

// buildMiddleware creates the middleware stack: request ids, request logging,
// CORS and rate limiting, outermost first.
func buildMiddleware(runtime *Runtime, cfg *config.Config) middleware.System {
	sys := middleware.New()
	sys.Use(middleware.RequestID())
	sys.Use(middleware.Logger(runtime.Logger))
	sys.Use(middleware.CORS(&cfg.CORS))
	sys.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))
	return sys
}
