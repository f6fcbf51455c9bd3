package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clementus360/focusflow/store"
	"clementus360/focusflow/types"

	"github.com/google/uuid"
)

const sessionColumns = `id, user_id, task_id, type, duration, status, start_time, end_time`

func (s *Store) InsertSession(ctx context.Context, session types.FocusSession) (types.FocusSession, error) {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO focus_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, nullString(session.TaskID), session.Type, session.Duration,
		session.Status, formatTime(session.StartTime), formatTimePtr(session.EndTime))
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return s.GetSession(ctx, session.ID)
}

func (s *Store) GetSession(ctx context.Context, id string) (types.FocusSession, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM focus_sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return types.FocusSession{}, store.ErrNotFound
	}
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to fetch session: %w", err)
	}
	return session, nil
}

func (s *Store) SaveSession(ctx context.Context, session types.FocusSession) (types.FocusSession, error) {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE focus_sessions SET status = ?, end_time = ? WHERE id = ?`,
		session.Status, formatTimePtr(session.EndTime), session.ID)
	if err != nil {
		return types.FocusSession{}, fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.FocusSession{}, store.ErrNotFound
	}
	return s.GetSession(ctx, session.ID)
}

func (s *Store) ListSessions(ctx context.Context, userID string, since time.Time) ([]types.FocusSession, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM focus_sessions WHERE user_id = ? AND start_time >= ? ORDER BY start_time DESC, id`,
		userID, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []types.FocusSession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to decode session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func scanSession(row scanner) (types.FocusSession, error) {
	var (
		session   types.FocusSession
		taskID    sql.NullString
		startTime string
		endTime   sql.NullString
	)
	if err := row.Scan(&session.ID, &session.UserID, &taskID, &session.Type, &session.Duration, &session.Status, &startTime, &endTime); err != nil {
		return types.FocusSession{}, err
	}
	if taskID.Valid {
		id := taskID.String
		session.TaskID = &id
	}
	var err error
	if session.StartTime, err = parseTime(startTime); err != nil {
		return types.FocusSession{}, err
	}
	if session.EndTime, err = parseTimePtr(endTime); err != nil {
		return types.FocusSession{}, err
	}
	return session, nil
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
