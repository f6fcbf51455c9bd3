package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"clementus360/focusflow/types"

	"github.com/supabase-community/postgrest-go"
)

type sessionRow struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user_id"`
	TaskID    *string    `json:"task_id"`
	Type      string     `json:"type"`
	Duration  int        `json:"duration"`
	Status    string     `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

func toSessionRow(s types.FocusSession) sessionRow {
	return sessionRow{
		ID:        s.ID,
		UserID:    s.UserID,
		TaskID:    s.TaskID,
		Type:      s.Type,
		Duration:  s.Duration,
		Status:    s.Status,
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

func (r sessionRow) session() types.FocusSession {
	return types.FocusSession{
		ID:        r.ID,
		UserID:    r.UserID,
		TaskID:    r.TaskID,
		Type:      r.Type,
		Duration:  r.Duration,
		Status:    r.Status,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
	}
}

func (s *Store) InsertSession(ctx context.Context, session types.FocusSession) (types.FocusSession, error) {
	resp, _, err := s.client.From(sessionsTable).
		Insert(toSessionRow(session), false, "", "representation", "").
		Execute()
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to insert session: %w", err)
	}
	row, err := decodeOne[sessionRow](resp)
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to read inserted session: %w", err)
	}
	return row.session(), nil
}

func (s *Store) GetSession(ctx context.Context, id string) (types.FocusSession, error) {
	resp, _, err := s.client.From(sessionsTable).
		Select("*", "", false).
		Eq("id", id).
		Limit(1, "").
		Execute()
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to fetch session: %w", err)
	}
	row, err := decodeOne[sessionRow](resp)
	if err != nil {
		return types.FocusSession{}, err
	}
	return row.session(), nil
}

func (s *Store) SaveSession(ctx context.Context, session types.FocusSession) (types.FocusSession, error) {
	resp, _, err := s.client.From(sessionsTable).
		Update(map[string]interface{}{
			"status":   session.Status,
			"end_time": session.EndTime,
		}, "representation", "").
		Eq("id", session.ID).
		Execute()
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to update session: %w", err)
	}
	row, err := decodeOne[sessionRow](resp)
	if err != nil {
		return types.FocusSession{}, err
	}
	return row.session(), nil
}

func (s *Store) ListSessions(ctx context.Context, userID string, since time.Time) ([]types.FocusSession, error) {
	resp, _, err := s.client.From(sessionsTable).
		Select("*", "", false).
		Eq("user_id", userID).
		Gte("start_time", since.UTC().Format(time.RFC3339)).
		Order("start_time", &postgrest.OrderOpts{Ascending: false}).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var rows []sessionRow
	if err := json.Unmarshal(resp, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode session data: %w", err)
	}

	sessions := make([]types.FocusSession, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.session())
	}
	return sessions, nil
}
