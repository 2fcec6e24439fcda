package routes

import "net/http"

// Route binds a method and a ServeMux pattern to a handler. A Pattern of "/"
// matches every path not claimed by a more specific route.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
