package handlers

import (
	"net/http"
	"strconv"

	"clementus360/focusflow/auth"
	"clementus360/focusflow/config"
	"clementus360/focusflow/store"
	"clementus360/focusflow/types"

	"github.com/google/uuid"
)

func (a *API) GetTasksHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := store.TaskFilter{
		Status:    query.Get("status"),
		Priority:  query.Get("priority"),
		Search:    query.Get("search"),
		SortBy:    query.Get("sort_by"),
		SortOrder: query.Get("sort_order"),
	}
	if !oneOf(filter.Status, types.TaskStatuses) {
		writeError(w, "Invalid status filter", http.StatusBadRequest)
		return
	}
	if !oneOf(filter.Priority, types.TaskPriorities) {
		writeError(w, "Invalid priority filter", http.StatusBadRequest)
		return
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			filter.Limit = parsedLimit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if parsedOffset, err := strconv.Atoi(offsetStr); err == nil && parsedOffset >= 0 {
			filter.Offset = parsedOffset
		}
	}

	tasks, total, err := a.Tasks.ListTasks(r.Context(), auth.UserFromContext(r.Context()), filter)
	if err != nil {
		config.Logger.WithError(err).Warn("Returning empty task list")
		tasks, total = []types.Task{}, 0
	}

	writeJSON(w, http.StatusOK, types.GetTasksResponse{
		Success: true,
		Tasks:   tasks,
		Total:   total,
		Limit:   filter.Limit,
		Offset:  filter.Offset,
	})
}

func (a *API) CreateTaskHandler(w http.ResponseWriter, r *http.Request) {
	var input types.TaskInput
	if err := decodeBody(r, &input, false); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	res := a.Tasks.CreateTask(r.Context(), auth.UserFromContext(r.Context()), input)
	writeTaskResult(w, res, http.StatusCreated)
}

func (a *API) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}
	writeTaskResult(w, a.Tasks.GetTask(r.Context(), auth.UserFromContext(r.Context()), taskID), http.StatusOK)
}

func (a *API) UpdateTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}

	var patch types.TaskPatch
	if err := decodeBody(r, &patch, false); err != nil {
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	res := a.Tasks.UpdateTask(r.Context(), auth.UserFromContext(r.Context()), taskID, patch)
	writeTaskResult(w, res, http.StatusOK)
}

func (a *API) DeleteTaskHandler(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r)
	if !ok {
		return
	}
	writeTaskResult(w, a.Tasks.DeleteTask(r.Context(), auth.UserFromContext(r.Context()), taskID), http.StatusOK)
}

// pathID reads the {id} path value. Ids that are not UUIDs cannot exist, so
// they are reported as not found.
func pathID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, "Not found", http.StatusNotFound)
		return "", false
	}
	return id, true
}

func oneOf(value string, allowed []string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
