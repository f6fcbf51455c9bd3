package routes

import (
	"net/http"

	"clementus360/focusflow/handlers"
)

func RegisterAnalyticsRoutes(mux *http.ServeMux, api *handlers.API, protect Protect) {
	handle(mux, "GET /api/analytics", protect, api.AnalyticsHandler)
	handle(mux, "GET /api/ai/insights", protect, api.InsightsHandler)
}
