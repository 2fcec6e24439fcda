package main

import (
	"net/http"

	"github.com/JaimeStill/pdf-image-server/pkg/handlers"
	"github.com/JaimeStill/pdf-image-server/pkg/lifecycle"
	"github.com/JaimeStill/pdf-image-server/pkg/routes"
)

// registerRoutes configures all HTTP routes for the service. The image route
// is a catch-all, so the probes are registered as exact paths.
func registerRoutes(r routes.System, runtime *Runtime, domain *Domain) {
	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/healthz",
		Handler: handleHealthCheck,
	})

	r.RegisterRoute(routes.Route{
		Method:  "GET",
		Pattern: "/readyz",
		Handler: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, readiness{runtime.Lifecycle, domain})
		},
	})

	r.RegisterGroup(domain.Images.Routes())
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	handlers.RespondText(w, http.StatusOK, "OK")
}

// readiness is ready only when every checker is.
type readiness []lifecycle.ReadinessChecker

func (r readiness) Ready() bool {
	for _, c := range r {
		if !c.Ready() {
			return false
		}
	}
	return true
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		handlers.RespondText(w, http.StatusServiceUnavailable, "NOT READY")
		return
	}
	handlers.RespondText(w, http.StatusOK, "READY")
}
