package timer

import (
	"context"
	"time"

	"clementus360/focusflow/services"
	"clementus360/focusflow/types"
)

// UserSessions adapts the session service to SessionActions for one user.
type UserSessions struct {
	Sessions *services.SessionService
	UserID   string
}

func (u UserSessions) StartSession(ctx context.Context, taskID *string, sessionType string, duration int) (string, error) {
	res := u.Sessions.StartSession(ctx, u.UserID, taskID, sessionType, duration)
	if !res.Success {
		return "", resultError(res)
	}
	return res.Session.ID, nil
}

func (u UserSessions) CompleteSession(ctx context.Context, sessionID string, endTime time.Time) error {
	if res := u.Sessions.CompleteSession(ctx, u.UserID, sessionID, endTime); !res.Success {
		return resultError(res)
	}
	return nil
}

func (u UserSessions) CancelSession(ctx context.Context, sessionID string) error {
	if res := u.Sessions.CancelSession(ctx, u.UserID, sessionID); !res.Success {
		return resultError(res)
	}
	return nil
}

func resultError(res types.SessionResult) error {
	if res.Err != nil {
		return res.Err
	}
	return types.NewError(types.KindInternal, res.Error, nil)
}
