package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"clementus360/focusflow/store"
	"clementus360/focusflow/types"

	"github.com/supabase-community/postgrest-go"
)

type taskRow struct {
	ID          string     `json:"id,omitempty"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toTaskRow(t types.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
	}
}

func (r taskRow) task() types.Task {
	return types.Task{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Store) InsertTask(ctx context.Context, task types.Task) (types.Task, error) {
	resp, _, err := s.client.From(tasksTable).
		Insert(toTaskRow(task), false, "", "representation", "").
		Execute()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	row, err := decodeOne[taskRow](resp)
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to read inserted task: %w", err)
	}
	return row.task(), nil
}

func (s *Store) GetTask(ctx context.Context, id string) (types.Task, error) {
	resp, _, err := s.client.From(tasksTable).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to fetch task: %w", err)
	}
	row, err := decodeOne[taskRow](resp)
	if err != nil {
		return types.Task{}, err
	}
	return row.task(), nil
}

func (s *Store) ListTasks(ctx context.Context, userID string, filter store.TaskFilter) ([]types.Task, int, error) {
	query := s.client.From(tasksTable).
		Select("*", "exact", false).
		Eq("user_id", userID)

	if filter.Status != "" {
		query = query.Eq("status", filter.Status)
	}
	if filter.Priority != "" {
		query = query.Eq("priority", filter.Priority)
	}
	if filter.Search != "" {
		pattern := ilikePattern(filter.Search)
		query = query.Or(fmt.Sprintf("title.ilike.%s,description.ilike.%s", pattern, pattern), "")
	}

	query = query.Order(orderColumn(filter.SortBy), &postgrest.OrderOpts{Ascending: store.Ascending(filter.SortOrder)})
	switch {
	case filter.Limit > 0:
		query = query.Range(filter.Offset, filter.Offset+filter.Limit-1, "")
	case filter.Offset > 0:
		query = query.Range(filter.Offset, math.MaxInt32-1, "")
	}

	resp, count, err := query.Execute()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	var rows []taskRow
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, 0, fmt.Errorf("failed to decode task data: %w", err)
	}

	tasks := make([]types.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, int(count), nil
}

// orderColumn maps a sort key to a column. Ranked keys sort on the generated
// *_rank columns from schema.sql.
func orderColumn(key string) string {
	col := store.SortColumn(key)
	if _, ok := store.SortRanks(col); ok {
		return col + "_rank"
	}
	return col
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ilikePattern builds a quoted PostgREST ilike value matching term anywhere.
// PostgREST turns every * into %, so a literal * in term matches any single
// character instead.
func ilikePattern(term string) string {
	escaped := strings.ReplaceAll(store.EscapeLike(term), "*", "_")
	return `"` + quoteEscaper.Replace("*"+escaped+"*") + `"`
}

func (s *Store) SaveTask(ctx context.Context, task types.Task) (types.Task, error) {
	payload := map[string]interface{}{
		"title":       task.Title,
		"description": task.Description,
		"status":      task.Status,
		"priority":    task.Priority,
		"due_date":    task.DueDate,
	}

	resp, _, err := s.client.From(tasksTable).
		Update(payload, "representation", "").
		Eq("id", task.ID).
		Execute()
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	row, err := decodeOne[taskRow](resp)
	if err != nil {
		return types.Task{}, err
	}
	return row.task(), nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	resp, _, err := s.client.From(tasksTable).
		Delete("representation", "").
		Eq("id", id).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	_, err = decodeOne[taskRow](resp)
	return err
}
