package timer

import (
	"context"
	"path/filepath"
	"testing"

	"clementus360/focusflow/services"
	"clementus360/focusflow/sqlite"
	"clementus360/focusflow/types"
)

func TestDriverPersistsThroughSessionService(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "focusflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	svc := services.NewSessionService(db, db)
	ticker := &manualTicker{}
	m, _ := New(types.SessionTypeShortBreak, 0)
	d := NewDriver(m, DriverConfig{
		Actions: UserSessions{Sessions: svc, UserID: "u1"},
		Ticker:  ticker.start,
	})
	ctx := context.Background()

	if err := d.Start(ctx, nil, "", 0); err != nil {
		t.Fatalf("Start: %v", err)
	}
	first := d.Snapshot().SessionID
	if err := d.Reset(ctx); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if err := d.Start(ctx, nil, "", 2); err != nil {
		t.Fatalf("Start: %v", err)
	}
	second := d.Snapshot().SessionID
	ticker.fire(ticker.last(), 2)

	got := map[string]string{}
	for _, s := range svc.GetUserSessions(ctx, "u1", 1) {
		got[s.ID] = s.Status
		if s.EndTime == nil {
			t.Errorf("session %s has no end time", s.ID)
		}
	}
	if got[first] != types.SessionStatusCancelled || got[second] != types.SessionStatusCompleted {
		t.Fatalf("statuses = %v", got)
	}
}

func TestUserSessionsReportsFailures(t *testing.T) {
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "focusflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	actions := UserSessions{Sessions: services.NewSessionService(db, db), UserID: "u1"}
	if _, err := actions.StartSession(context.Background(), nil, types.SessionTypePomodoro, 0); types.KindOf(err) != types.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if err := actions.CancelSession(context.Background(), "missing"); types.KindOf(err) != types.KindNotFound {
		t.Fatalf("err = %v, want not found", err)
	}
}
