package assistant

import (
	"context"
	"encoding/json"
	"strings"

	"clementus360/focusflow/llm"
	"clementus360/focusflow/types"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// TaskOps is the subset of the task service the assistant may call.
type TaskOps interface {
	CreateTask(ctx context.Context, userID string, input types.TaskInput) types.TaskResult
	UpdateTask(ctx context.Context, userID, taskID string, patch types.TaskPatch) types.TaskResult
	DeleteTask(ctx context.Context, userID, taskID string) types.TaskResult
	GetTasks(ctx context.Context, userID string) []types.Task
}

var taskFunctions = []llm.FunctionDef{
	{
		Name:        "createTask",
		Description: "Create a new task for the user",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"title":       map[string]any{"type": "string", "description": "Short task title"},
				"description": map[string]any{"type": "string", "description": "Optional details"},
				"priority":    map[string]any{"type": "string", "enum": types.TaskPriorities},
				"dueDate":     map[string]any{"type": "string", "description": "Due date as YYYY-MM-DD"},
			},
			"required": []string{"title"},
		},
	},
	{
		Name:        "updateTask",
		Description: "Update an existing task. Use the full task id from the task list.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":          map[string]any{"type": "string", "description": "Full task id"},
				"title":       map[string]any{"type": "string"},
				"description": map[string]any{"type": "string"},
				"status":      map[string]any{"type": "string", "enum": types.TaskStatuses},
				"priority":    map[string]any{"type": "string", "enum": types.TaskPriorities},
				"dueDate":     map[string]any{"type": "string", "description": "Due date as YYYY-MM-DD, empty to clear"},
			},
			"required": []string{"id"},
		},
	},
	{
		Name:        "deleteTask",
		Description: "Delete a task. Use the full task id from the task list.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id": map[string]any{"type": "string", "description": "Full task id"},
			},
			"required": []string{"id"},
		},
	},
	{
		Name:        "listTasks",
		Description: "List all of the user's tasks",
		Parameters:  map[string]any{"type": "object", "properties": map[string]any{}},
	},
}

// taskCall is one decoded function-call intent with validated arguments.
type taskCall interface {
	execute(ctx context.Context, ops TaskOps, userID string) callOutcome
}

type callOutcome struct {
	payload string // JSON sent back to the model as the function result
	event   string // bus event on success, empty for reads
	task    *types.Task
}

type createTaskCall struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
}

type updateTaskCall struct {
	ID          string  `json:"id"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

type deleteTaskCall struct {
	ID string `json:"id"`
}

type listTasksCall struct{}

var callDecoders = map[string]func(args []byte) (taskCall, error){
	"createTask": decodeCall[createTaskCall],
	"updateTask": decodeCall[updateTaskCall],
	"deleteTask": decodeCall[deleteTaskCall],
	"listTasks":  decodeCall[listTasksCall],
}

func decodeCall[T taskCall](args []byte) (taskCall, error) {
	var call T
	if err := json.Unmarshal(args, &call); err != nil {
		return nil, err
	}
	return call, nil
}

// parseArguments accepts only a JSON object; an empty string counts as {}.
func parseArguments(raw string) ([]byte, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []byte("{}"), true
	}
	if !gjson.Valid(raw) || !gjson.Parse(raw).IsObject() {
		return nil, false
	}
	return []byte(raw), true
}

func (c createTaskCall) execute(ctx context.Context, ops TaskOps, userID string) callOutcome {
	res := ops.CreateTask(ctx, userID, types.TaskInput{
		Title:       c.Title,
		Description: c.Description,
		Priority:    c.Priority,
		DueDate:     c.DueDate,
	})
	return taskOutcome(res, types.EventTaskCreated)
}

func (c updateTaskCall) execute(ctx context.Context, ops TaskOps, userID string) callOutcome {
	if out, ok := checkTaskID(c.ID); !ok {
		return out
	}
	res := ops.UpdateTask(ctx, userID, c.ID, types.TaskPatch{
		Title:       c.Title,
		Description: c.Description,
		Status:      c.Status,
		Priority:    c.Priority,
		DueDate:     c.DueDate,
	})
	return taskOutcome(res, types.EventTaskUpdated)
}

func (c deleteTaskCall) execute(ctx context.Context, ops TaskOps, userID string) callOutcome {
	if out, ok := checkTaskID(c.ID); !ok {
		return out
	}
	return taskOutcome(ops.DeleteTask(ctx, userID, c.ID), types.EventTaskDeleted)
}

func (listTasksCall) execute(ctx context.Context, ops TaskOps, userID string) callOutcome {
	tasks := ops.GetTasks(ctx, userID)
	payload := `{}`
	payload, _ = sjson.Set(payload, "success", true)
	payload, _ = sjson.Set(payload, "count", len(tasks))
	payload, _ = sjson.Set(payload, "tasks", tasks)
	return callOutcome{payload: payload}
}

// checkTaskID rejects ids that are not full task ids, such as list positions.
func checkTaskID(id string) (callOutcome, bool) {
	if id == "" {
		return failureOutcome("Task id is required", nil), false
	}
	if _, err := uuid.Parse(id); err != nil {
		return failureOutcome("Invalid task id; use the full id from the task list", nil), false
	}
	return callOutcome{}, true
}

func taskOutcome(res types.TaskResult, event string) callOutcome {
	if !res.Success {
		return failureOutcome(res.Error, res.Details)
	}
	payload := `{}`
	payload, _ = sjson.Set(payload, "success", true)
	payload, _ = sjson.Set(payload, "task", res.Task)
	return callOutcome{payload: payload, event: event, task: res.Task}
}

func failureOutcome(message string, details map[string]string) callOutcome {
	payload := `{}`
	payload, _ = sjson.Set(payload, "success", false)
	payload, _ = sjson.Set(payload, "error", message)
	if len(details) > 0 {
		payload, _ = sjson.Set(payload, "details", details)
	}
	return callOutcome{payload: payload}
}
