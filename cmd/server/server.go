package main

import (
	"net/http"
	"time"

	"github.com/JaimeStill/pdf-image-server/internal/config"
	"github.com/JaimeStill/pdf-image-server/internal/server"
	"github.com/JaimeStill/pdf-image-server/pkg/routes"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	runtime *Runtime
	domain  *Domain
	handler http.Handler
	http    server.System
}

// NewServer creates and initializes the service with all subsystems.
func NewServer(cfg *config.Config) (*Server, error) {
	runtime := NewRuntime(cfg)
	domain := NewDomain(runtime, cfg)

	r := routes.New(runtime.Logger)
	registerRoutes(r, runtime, domain)

	handler := buildMiddleware(runtime, cfg).Apply(r.Build())

	runtime.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"root", cfg.Documents.ResolvedRoot(),
		"max_concurrent", cfg.Pipeline.MaxConcurrent,
	)

	return &Server{
		runtime: runtime,
		domain:  domain,
		handler: handler,
		http:    server.New(&cfg.Server, handler, runtime.Logger),
	}, nil
}

// Start begins all subsystems and returns once the listener is bound.
func (s *Server) Start() error {
	s.runtime.Logger.Info("starting service")

	s.domain.Start(s.runtime)

	if err := s.http.Start(s.runtime.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.runtime.Lifecycle.WaitForStartup()
		s.runtime.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.runtime.Logger.Info("initiating shutdown")
	return s.runtime.Lifecycle.Shutdown(timeout)
}
