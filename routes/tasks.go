package routes

import (
	"net/http"

	"clementus360/focusflow/handlers"
)

// RegisterTaskRoutes registers all task-related routes
func RegisterTaskRoutes(mux *http.ServeMux, api *handlers.API, protect Protect) {
	handle(mux, "GET /api/tasks", protect, api.GetTasksHandler)
	handle(mux, "POST /api/tasks", protect, api.CreateTaskHandler)
	handle(mux, "GET /api/tasks/{id}", protect, api.GetTaskHandler)
	handle(mux, "PATCH /api/tasks/{id}", protect, api.UpdateTaskHandler)
	handle(mux, "DELETE /api/tasks/{id}", protect, api.DeleteTaskHandler)
}
