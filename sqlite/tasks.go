package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"clementus360/focusflow/store"
	"clementus360/focusflow/types"

	"github.com/google/uuid"
)

var _ store.Store = (*Store)(nil)

const taskColumns = `id, user_id, title, description, status, priority, due_date, created_at`

func (s *Store) InsertTask(ctx context.Context, task types.Task) (types.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID, task.UserID, task.Title, task.Description, task.Status, task.Priority,
		formatTimePtr(task.DueDate), formatTime(task.CreatedAt))
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return s.GetTask(ctx, task.ID)
}

func (s *Store) GetTask(ctx context.Context, id string) (types.Task, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Task{}, store.ErrNotFound
	}
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to fetch task: %w", err)
	}
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, userID string, filter store.TaskFilter) ([]types.Task, int, error) {
	where := []string{"user_id = ?"}
	args := []any{userID}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.Search != "" {
		where = append(where, `(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`)
		pattern := "%" + store.EscapeLike(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}
	clause := strings.Join(where, " AND ")

	var total int
	if err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count tasks: %w", err)
	}

	order := "DESC"
	if store.Ascending(filter.SortOrder) {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM tasks WHERE %s ORDER BY %s %s, id`, taskColumns, clause, orderExpr(filter.SortBy), order)
	switch {
	case filter.Limit > 0:
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	case filter.Offset > 0:
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []types.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// orderExpr returns the ORDER BY expression for a sort key. Ranked columns
// become a CASE over their fixed values.
func orderExpr(key string) string {
	col := store.SortColumn(key)
	ranks, ok := store.SortRanks(col)
	if !ok {
		return col
	}
	var b strings.Builder
	b.WriteString("CASE " + col)
	for i, v := range ranks {
		fmt.Fprintf(&b, " WHEN '%s' THEN %d", v, i)
	}
	fmt.Fprintf(&b, " ELSE %d END", len(ranks))
	return b.String()
}

func (s *Store) SaveTask(ctx context.Context, task types.Task) (types.Task, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ? WHERE id = ?`,
		task.Title, task.Description, task.Status, task.Priority, formatTimePtr(task.DueDate), task.ID)
	if err != nil {
		return types.Task{}, fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.Task{}, store.ErrNotFound
	}
	return s.GetTask(ctx, task.ID)
}

func (s *Store) DeleteTask(ctx context.Context, id string) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (types.Task, error) {
	var (
		task      types.Task
		dueDate   sql.NullString
		createdAt string
	)
	if err := row.Scan(&task.ID, &task.UserID, &task.Title, &task.Description, &task.Status, &task.Priority, &dueDate, &createdAt); err != nil {
		return types.Task{}, err
	}
	var err error
	if task.DueDate, err = parseTimePtr(dueDate); err != nil {
		return types.Task{}, err
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return types.Task{}, err
	}
	return task, nil
}
