// Package routes declares route groups and the system that mounts them on a
// ServeMux using Go 1.22 method patterns.
package routes

import (
	"log/slog"
	"net/http"
	"path"
)

// System defines the interface for route registration and HTTP handler building.
type System interface {
	RegisterGroup(group Group)
	RegisterRoute(route Route)
	Build() http.Handler
	Groups() []Group
	Routes() []Route
}

type system struct {
	routes   []Route
	groups   []Group
	catchAll *Route
	logger   *slog.Logger
}

// New creates a route system with the specified logger.
func New(logger *slog.Logger) System {
	return &system{
		logger: logger.With("system", "routes"),
		groups: []Group{},
		routes: []Route{},
	}
}

func (s *system) Groups() []Group {
	return s.groups
}

func (s *system) Routes() []Route {
	return s.routes
}

// RegisterRoute adds a route to the route system.
func (s *system) RegisterRoute(route Route) {
	s.routes = append(s.routes, route)
}

// RegisterGroup adds a route group to the route system.
func (s *system) RegisterGroup(group Group) {
	s.groups = append(s.groups, group)
}

// Build constructs an http.Handler from all registered routes and groups.
//
// When a catch-all route ("/") is registered, requests whose path is not in
// canonical form (dot segments, repeated slashes) go to it directly instead
// of receiving the ServeMux redirect to the cleaned path. The catch-all then
// sees the path exactly as the client sent it.
func (s *system) Build() http.Handler {
	mux := http.NewServeMux()
	s.catchAll = nil

	for _, route := range s.routes {
		s.handle(mux, route.Method, route.Pattern, route.Handler)
	}

	for _, group := range s.groups {
		s.registerGroup(mux, "", group)
	}

	if s.catchAll == nil {
		return mux
	}

	catchAll := *s.catchAll
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if canonical(r.URL.Path) {
			mux.ServeHTTP(w, r)
			return
		}
		if !allows(catchAll.Method, r.Method) {
			w.Header().Set("Allow", allowHeader(catchAll.Method))
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		catchAll.Handler(w, r)
	})
}

func (s *system) registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		s.handle(mux, route.Method, fullPrefix+route.Pattern, route.Handler)
	}
	for _, child := range group.Children {
		s.registerGroup(mux, fullPrefix, child)
	}
}

func (s *system) handle(mux *http.ServeMux, method, pattern string, h http.HandlerFunc) {
	if pattern == "" {
		pattern = "/"
	}
	if pattern == "/" {
		s.catchAll = &Route{Method: method, Pattern: pattern, Handler: h}
	}
	s.logger.Debug("route registered", "method", method, "pattern", pattern)
	mux.HandleFunc(method+" "+pattern, h)
}

// canonical reports whether ServeMux would route p without redirecting.
func canonical(p string) bool {
	if p == "" || p[0] != '/' {
		return false
	}
	np := path.Clean(p)
	if p[len(p)-1] == '/' && np != "/" {
		np += "/"
	}
	return np == p
}

// allows mirrors ServeMux method matching, where GET also accepts HEAD.
func allows(routeMethod, method string) bool {
	switch routeMethod {
	case "", method:
		return true
	case http.MethodGet:
		return method == http.MethodHead
	}
	return false
}

func allowHeader(routeMethod string) string {
	if routeMethod == http.MethodGet {
		return "GET, HEAD"
	}
	return routeMethod
}
