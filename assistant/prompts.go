package assistant

import (
	"fmt"
	"strings"
	"time"

	"clementus360/focusflow/types"
)

const systemPrompt = `You are FocusFlow's task assistant. You help the user manage their to-do list and stay focused.

You can:
- create tasks (title, optional description, priority low/medium/high, optional due date)
- update tasks (title, description, status todo/in-progress/completed, priority, due date)
- delete tasks
- list tasks

RULES:
- Always refer to a task by the full id shown in the task list, never by its position.
- If the user's request is ambiguous (for example two tasks match), ask which one they mean instead of guessing.
- Only call a function when the user asks for a change or a listing; otherwise just answer.
- Keep replies short and friendly. Use the task title, not the id, when talking to the user.`

// buildTaskContext renders the user's tasks for the model, capped at limit
// entries with a note about the rest.
func buildTaskContext(tasks []types.Task, limit int, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Today is %s.\n", now.Format("Monday, 2006-01-02"))

	if len(tasks) == 0 {
		b.WriteString("The user has no tasks yet.")
		return b.String()
	}

	shown := tasks
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Fprintf(&b, "The user's current tasks (%d of %d):\n", len(shown), len(tasks))
	for _, t := range shown {
		fmt.Fprintf(&b, "- id: %s | title: %q | status: %s | priority: %s", t.ID, t.Title, t.Status, t.Priority)
		if t.DueDate != nil {
			fmt.Fprintf(&b, " | due: %s", t.DueDate.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}
	if rest := len(tasks) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "...and %d more tasks not shown. Call listTasks to see all of them.\n", rest)
	}
	return strings.TrimRight(b.String(), "\n")
}
