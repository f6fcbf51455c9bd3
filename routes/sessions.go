package routes

import (
	"net/http"

	"clementus360/focusflow/handlers"
)

// RegisterSessionRoutes registers focus session routes
func RegisterSessionRoutes(mux *http.ServeMux, api *handlers.API, protect Protect) {
	handle(mux, "GET /api/sessions", protect, api.GetSessionsHandler)
	handle(mux, "POST /api/sessions", protect, api.StartSessionHandler)
	handle(mux, "POST /api/sessions/{id}/complete", protect, api.CompleteSessionHandler)
	handle(mux, "POST /api/sessions/{id}/cancel", protect, api.CancelSessionHandler)
}
