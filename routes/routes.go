package routes

import (
	"net/http"

	"clementus360/focusflow/handlers"
)

// Protect wraps a handler with authentication.
type Protect func(http.Handler) http.Handler

// RegisterAllRoutes registers all application routes. Everything except the
// health check goes through protect.
func RegisterAllRoutes(mux *http.ServeMux, api *handlers.API, protect Protect) {
	mux.HandleFunc("GET /healthz", api.HealthHandler)

	RegisterChatRoutes(mux, api, protect)
	RegisterTaskRoutes(mux, api, protect)
	RegisterSessionRoutes(mux, api, protect)
	RegisterAnalyticsRoutes(mux, api, protect)
}

func handle(mux *http.ServeMux, pattern string, protect Protect, h http.HandlerFunc) {
	mux.Handle(pattern, protect(h))
}
