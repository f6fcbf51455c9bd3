package types

import "time"

const (
	SessionTypePomodoro   = "pomodoro"
	SessionTypeShortBreak = "short-break"
	SessionTypeLongBreak  = "long-break"

	SessionStatusRunning   = "running"
	SessionStatusCompleted = "completed"
	SessionStatusCancelled = "cancelled"
)

// FocusSession is one timed interval of work or break.
// Type is one of the SessionType constants or a custom label.
type FocusSession struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	TaskID    *string    `json:"taskId"`
	Type      string     `json:"type"`
	Duration  int        `json:"duration"` // seconds
	Status    string     `json:"status"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty"`
}

func (s FocusSession) Terminal() bool {
	return s.Status == SessionStatusCompleted || s.Status == SessionStatusCancelled
}

type SessionResult struct {
	Success bool              `json:"success,omitempty"`
	Session *FocusSession     `json:"session,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`

	Err *AppError `json:"-"`
}

type StartSessionRequest struct {
	TaskID   *string `json:"taskId"`
	Type     string  `json:"type"`
	Duration int     `json:"duration"`
}

type CompleteSessionRequest struct {
	EndTime *time.Time `json:"endTime,omitempty"`
}

type GetSessionsResponse struct {
	Success  bool           `json:"success"`
	Sessions []FocusSession `json:"sessions"`
}
