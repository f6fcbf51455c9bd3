package services

import (
	"context"
	"errors"
	"time"

	"clementus360/focusflow/config"
	"clementus360/focusflow/store"
	"clementus360/focusflow/types"

	"github.com/sirupsen/logrus"
)

// SessionService implements the focus session lifecycle for one store.
type SessionService struct {
	sessions store.SessionStore
	tasks    store.TaskStore
	now      func() time.Time
}

func NewSessionService(sessions store.SessionStore, tasks store.TaskStore) *SessionService {
	return &SessionService{sessions: sessions, tasks: tasks, now: time.Now}
}

var errSessionNotFound = types.NewError(types.KindNotFound, "Session not found", nil)

// StartSession records a running session beginning now.
func (s *SessionService) StartSession(ctx context.Context, userID string, taskID *string, sessionType string, durationSeconds int) types.SessionResult {
	if userID == "" {
		return types.SessionFailure(types.NewError(types.KindUnauthorized, "Unauthorized", nil))
	}

	errs := fieldErrors{}
	sessionType = validateSessionType(errs, sessionType)
	validateDuration(errs, durationSeconds)
	if err := errs.err(); err != nil {
		return types.SessionFailure(err)
	}

	if taskID != nil && *taskID == "" {
		taskID = nil
	}
	if taskID != nil && s.tasks != nil {
		task, err := s.tasks.GetTask(ctx, *taskID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && task.UserID != userID) {
			return types.SessionFailure(errTaskNotFound)
		}
		if err != nil {
			config.Logger.WithError(err).WithField("task_id", *taskID).Error("Failed to fetch task for session")
			return types.SessionFailure(types.NewError(types.KindUpstream, "Failed to start session", err))
		}
	}

	session, err := s.sessions.InsertSession(ctx, types.FocusSession{
		UserID:    userID,
		TaskID:    taskID,
		Type:      sessionType,
		Duration:  durationSeconds,
		Status:    types.SessionStatusRunning,
		StartTime: s.now().UTC(),
	})
	if err != nil {
		config.Logger.WithError(err).WithField("user_id", userID).Error("Failed to start session")
		return types.SessionFailure(types.NewError(types.KindUpstream, "Failed to start session", err))
	}
	return types.SessionResult{Success: true, Session: &session}
}

// CompleteSession marks a running session completed at endTime. Completing an
// already completed session returns the stored record unchanged.
func (s *SessionService) CompleteSession(ctx context.Context, userID, sessionID string, endTime time.Time) types.SessionResult {
	return s.finish(ctx, userID, sessionID, types.SessionStatusCompleted, endTime)
}

// CancelSession marks a running session cancelled now. Cancelling an already
// cancelled session returns the stored record unchanged.
func (s *SessionService) CancelSession(ctx context.Context, userID, sessionID string) types.SessionResult {
	return s.finish(ctx, userID, sessionID, types.SessionStatusCancelled, s.now())
}

func (s *SessionService) finish(ctx context.Context, userID, sessionID, status string, endTime time.Time) types.SessionResult {
	fields := logrus.Fields{"user_id": userID, "session_id": sessionID, "status": status}

	if userID == "" {
		return types.SessionFailure(types.NewError(types.KindUnauthorized, "Unauthorized", nil))
	}
	if sessionID == "" {
		return types.SessionFailure(types.ValidationError(map[string]string{"id": "Session id is required"}))
	}

	session, err := s.sessions.GetSession(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return types.SessionFailure(errSessionNotFound)
	}
	if err != nil {
		config.Logger.WithError(err).WithFields(fields).Error("Failed to fetch session")
		return types.SessionFailure(types.NewError(types.KindUpstream, "Failed to update session", err))
	}
	if session.UserID != userID {
		return types.SessionFailure(errSessionNotFound)
	}

	if session.Status == status {
		config.Logger.WithFields(fields).Debug("Session already in requested state")
		return types.SessionResult{Success: true, Session: &session}
	}
	if session.Terminal() {
		return types.SessionFailure(types.ValidationError(map[string]string{
			"status": "Session is already " + session.Status,
		}))
	}

	end := endTime.UTC()
	if end.Before(session.StartTime) {
		return types.SessionFailure(types.ValidationError(map[string]string{
			"endTime": "End time must not be before the session start",
		}))
	}
	session.Status = status
	session.EndTime = &end

	saved, err := s.sessions.SaveSession(ctx, session)
	if errors.Is(err, store.ErrNotFound) {
		return types.SessionFailure(errSessionNotFound)
	}
	if err != nil {
		config.Logger.WithError(err).WithFields(fields).Error("Failed to update session")
		return types.SessionFailure(types.NewError(types.KindUpstream, "Failed to update session", err))
	}
	return types.SessionResult{Success: true, Session: &saved}
}

// GetUserSessions returns the user's sessions started within the last days
// days, newest first. It returns an empty slice on any failure.
func (s *SessionService) GetUserSessions(ctx context.Context, userID string, days int) []types.FocusSession {
	if userID == "" {
		return []types.FocusSession{}
	}
	if days <= 0 {
		days = config.DefaultAnalyticsDays
	}

	since := s.now().AddDate(0, 0, -days)
	sessions, err := s.sessions.ListSessions(ctx, userID, since)
	if err != nil {
		config.Logger.WithError(err).WithField("user_id", userID).Warn("Failed to fetch sessions")
		return []types.FocusSession{}
	}
	return sessions
}
