// Package store defines the persistence contracts for tasks and focus
// sessions. Implementations live in the sqlite and supabase packages.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"clementus360/focusflow/types"
)

var ErrNotFound = errors.New("record not found")

// TaskFilter narrows ListTasks. A zero Limit means no limit; Offset applies
// either way.
type TaskFilter struct {
	Status    string
	Priority  string
	Search    string
	SortBy    string // created_at, title, status, priority, due_date
	SortOrder string // asc or desc
	Limit     int
	Offset    int
}

type TaskStore interface {
	InsertTask(ctx context.Context, task types.Task) (types.Task, error)
	GetTask(ctx context.Context, id string) (types.Task, error)
	// ListTasks returns one page of the user's tasks and the total match count.
	ListTasks(ctx context.Context, userID string, filter TaskFilter) ([]types.Task, int, error)
	SaveTask(ctx context.Context, task types.Task) (types.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type SessionStore interface {
	InsertSession(ctx context.Context, session types.FocusSession) (types.FocusSession, error)
	GetSession(ctx context.Context, id string) (types.FocusSession, error)
	SaveSession(ctx context.Context, session types.FocusSession) (types.FocusSession, error)
	// ListSessions returns sessions started at or after since, newest first.
	ListSessions(ctx context.Context, userID string, since time.Time) ([]types.FocusSession, error)
}

type Store interface {
	TaskStore
	SessionStore
	Close() error
}

var sortColumns = map[string]string{
	"created_at": "created_at",
	"title":      "title",
	"status":     "status",
	"priority":   "priority",
	"due_date":   "due_date",
}

// SortColumn maps a requested sort key to a column, defaulting to created_at.
func SortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return "created_at"
}

// sortRanks orders enum columns by workflow rather than alphabetically:
// todo < in-progress < completed and low < medium < high.
var sortRanks = map[string][]string{
	"status":   types.TaskStatuses,
	"priority": types.TaskPriorities,
}

// SortRanks returns the values of key in ascending rank order when key sorts
// by rank instead of by value.
func SortRanks(key string) ([]string, bool) {
	ranks, ok := sortRanks[key]
	return ranks, ok
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes the LIKE wildcards in s with backslashes so it matches
// literally.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Ascending reports whether order asks for ascending sort. Default is descending.
func Ascending(order string) bool {
	return order == "asc"
}
