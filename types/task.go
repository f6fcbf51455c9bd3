package types

import "time"

const (
	TaskStatusTodo       = "todo"
	TaskStatusInProgress = "in-progress"
	TaskStatusCompleted  = "completed"

	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
)

var (
	TaskStatuses   = []string{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted}
	TaskPriorities = []string{TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh}
)

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TaskInput is the payload accepted by createTask.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	Priority    string `json:"priority,omitempty"`
	DueDate     string `json:"dueDate,omitempty"`
}

// TaskPatch carries the fields of an update; nil means unchanged.
// An empty DueDate clears the due date.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil && p.Priority == nil && p.DueDate == nil
}

// TaskResult is the value returned by every task operation.
type TaskResult struct {
	Success bool              `json:"success,omitempty"`
	Task    *Task             `json:"task,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`

	Err *AppError `json:"-"`
}

type DeleteTaskResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type GetTasksResponse struct {
	Success bool   `json:"success"`
	Tasks   []Task `json:"tasks"`
	Total   int    `json:"total"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}
