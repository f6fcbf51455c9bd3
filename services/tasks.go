package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"clementus360/focusflow/config"
	"clementus360/focusflow/store"
	"clementus360/focusflow/types"

	"github.com/sirupsen/logrus"
)

// TaskService implements the task operations. Every operation returns a
// TaskResult; failures never escape as errors.
type TaskService struct {
	store store.TaskStore
	now   func() time.Time
}

func NewTaskService(s store.TaskStore) *TaskService {
	return &TaskService{store: s, now: time.Now}
}

var errTaskNotFound = types.NewError(types.KindNotFound, "Task not found", nil)

func (s *TaskService) CreateTask(ctx context.Context, userID string, input types.TaskInput) types.TaskResult {
	if userID == "" {
		return types.TaskFailure(types.NewError(types.KindUnauthorized, "Unauthorized", nil))
	}

	errs := fieldErrors{}
	task := types.Task{
		UserID:      userID,
		Title:       validateTitle(errs, input.Title),
		Description: validateDescription(errs, input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		CreatedAt:   s.now().UTC(),
	}
	if task.Status == "" {
		task.Status = types.TaskStatusTodo
	}
	if task.Priority == "" {
		task.Priority = types.TaskPriorityMedium
	}
	validateEnum(errs, "status", task.Status, types.TaskStatuses)
	validateEnum(errs, "priority", task.Priority, types.TaskPriorities)
	task.DueDate = validateDueDate(errs, input.DueDate)
	if err := errs.err(); err != nil {
		return types.TaskFailure(err)
	}

	saved, err := s.store.InsertTask(ctx, task)
	if err != nil {
		config.Logger.WithError(err).WithField("user_id", userID).Error("Failed to create task")
		return types.TaskFailure(types.NewError(types.KindUpstream, "Failed to create task", err))
	}
	return types.TaskResult{Success: true, Task: &saved}
}

// GetTask returns the task only if it belongs to userID.
func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) types.TaskResult {
	task, appErr := s.owned(ctx, userID, taskID)
	if appErr != nil {
		return types.TaskFailure(appErr)
	}
	return types.TaskResult{Success: true, Task: &task}
}

func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, patch types.TaskPatch) types.TaskResult {
	if patch.Empty() {
		return types.TaskFailure(types.ValidationError(map[string]string{"body": "No fields to update"}))
	}

	errs := fieldErrors{}
	if patch.Title != nil {
		validateTitle(errs, *patch.Title)
	}
	if patch.Description != nil {
		validateDescription(errs, *patch.Description)
	}
	if patch.Status != nil {
		validateEnum(errs, "status", *patch.Status, types.TaskStatuses)
	}
	if patch.Priority != nil {
		validateEnum(errs, "priority", *patch.Priority, types.TaskPriorities)
	}
	var due *time.Time
	if patch.DueDate != nil {
		due = validateDueDate(errs, *patch.DueDate)
	}
	if err := errs.err(); err != nil {
		return types.TaskFailure(err)
	}

	task, appErr := s.owned(ctx, userID, taskID)
	if appErr != nil {
		return types.TaskFailure(appErr)
	}

	if patch.Title != nil {
		task.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		task.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		task.DueDate = due
	}

	saved, err := s.store.SaveTask(ctx, task)
	if errors.Is(err, store.ErrNotFound) {
		return types.TaskFailure(errTaskNotFound)
	}
	if err != nil {
		config.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "task_id": taskID}).Error("Failed to update task")
		return types.TaskFailure(types.NewError(types.KindUpstream, "Failed to update task", err))
	}
	return types.TaskResult{Success: true, Task: &saved}
}

// DeleteTask removes the task and returns the record as it was before deletion.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) types.TaskResult {
	task, appErr := s.owned(ctx, userID, taskID)
	if appErr != nil {
		return types.TaskFailure(appErr)
	}

	err := s.store.DeleteTask(ctx, task.ID)
	if errors.Is(err, store.ErrNotFound) {
		return types.TaskFailure(errTaskNotFound)
	}
	if err != nil {
		config.Logger.WithError(err).WithFields(logrus.Fields{"user_id": userID, "task_id": taskID}).Error("Failed to delete task")
		return types.TaskFailure(types.NewError(types.KindUpstream, "Failed to delete task", err))
	}
	return types.TaskResult{Success: true, Task: &task}
}

// GetTasks returns every task of the user, newest first, or an empty slice
// on any failure.
func (s *TaskService) GetTasks(ctx context.Context, userID string) []types.Task {
	tasks, _, err := s.ListTasks(ctx, userID, store.TaskFilter{})
	if err != nil {
		return []types.Task{}
	}
	return tasks
}

// ListTasks is the paged variant of GetTasks used by the HTTP layer.
func (s *TaskService) ListTasks(ctx context.Context, userID string, filter store.TaskFilter) ([]types.Task, int, error) {
	if userID == "" {
		return nil, 0, types.NewError(types.KindUnauthorized, "Unauthorized", nil)
	}
	tasks, total, err := s.store.ListTasks(ctx, userID, filter)
	if err != nil {
		config.Logger.WithError(err).WithField("user_id", userID).Error("Failed to fetch tasks")
		return nil, 0, types.NewError(types.KindUpstream, "Failed to fetch tasks", err)
	}
	return tasks, total, nil
}

func (s *TaskService) owned(ctx context.Context, userID, taskID string) (types.Task, *types.AppError) {
	if userID == "" {
		return types.Task{}, types.NewError(types.KindUnauthorized, "Unauthorized", nil)
	}
	if taskID == "" {
		return types.Task{}, types.ValidationError(map[string]string{"id": "Task id is required"})
	}

	task, err := s.store.GetTask(ctx, taskID)
	if errors.Is(err, store.ErrNotFound) {
		return types.Task{}, errTaskNotFound
	}
	if err != nil {
		config.Logger.WithError(err).WithField("task_id", taskID).Error("Failed to fetch task")
		return types.Task{}, types.NewError(types.KindUpstream, "Failed to fetch task", err)
	}
	if task.UserID != userID {
		return types.Task{}, errTaskNotFound
	}
	return task, nil
}
