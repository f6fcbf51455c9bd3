package routes

import (
	"net/http"

	"clementus360/focusflow/handlers"
)

// RegisterChatRoutes registers the assistant and its event stream
func RegisterChatRoutes(mux *http.ServeMux, api *handlers.API, protect Protect) {
	handle(mux, "POST /api/chat", protect, api.ChatHandler)
	handle(mux, "GET /api/events", protect, api.EventsHandler)
}
