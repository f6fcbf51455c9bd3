package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"clementus360/focusflow/analytics"
	"clementus360/focusflow/assistant"
	"clementus360/focusflow/auth"
	"clementus360/focusflow/events"
	"clementus360/focusflow/handlers"
	"clementus360/focusflow/middleware"
	"clementus360/focusflow/services"
	"clementus360/focusflow/sqlite"
	"clementus360/focusflow/types"
)

const secret = "test-secret"

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "focusflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tasks := services.NewTaskService(db)
	sessions := services.NewSessionService(db, db)
	bus := events.NewBus()
	api := handlers.NewAPI(tasks, sessions, assistant.NewDispatcher(nil, tasks, bus), analytics.NewInsightGenerator(nil), bus, time.UTC)

	mux := http.NewServeMux()
	RegisterAllRoutes(mux, api, middleware.AuthMiddleware(auth.NewVerifier(secret)))
	return mux
}

func do(t *testing.T, mux *http.ServeMux, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		token, err := auth.GenerateToken(secret, user, time.Hour)
		if err != nil {
			t.Fatalf("token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body, err)
	}
	return v
}

func TestHealthNeedsNoAuth(t *testing.T) {
	mux := newTestMux(t)
	if rec := do(t, mux, http.MethodGet, "/healthz", "", nil); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, path := range []string{"/api/tasks", "/api/sessions", "/api/analytics", "/api/ai/insights"} {
		if rec := do(t, mux, http.MethodGet, path, "", nil); rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s status = %d, want 401", path, rec.Code)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/tasks", "u1", map[string]string{"title": "Write report", "priority": "high"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body)
	}
	created := decode[types.TaskResult](t, rec)
	id := created.Task.ID
	if created.Task.Status != types.TaskStatusTodo || created.Task.UserID != "u1" {
		t.Fatalf("created = %+v", created.Task)
	}

	if rec := do(t, mux, http.MethodGet, "/api/tasks/"+id, "u2", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPatch, "/api/tasks/"+id, "u2", map[string]string{"title": "Hijacked"}); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign patch status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodDelete, "/api/tasks/"+id, "u2", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete status = %d", rec.Code)
	}

	rec = do(t, mux, http.MethodPatch, "/api/tasks/"+id, "u1", map[string]string{"status": "completed"})
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := decode[types.TaskResult](t, rec).Task; got.Status != types.TaskStatusCompleted || got.Title != "Write report" {
		t.Fatalf("patched = %+v", got)
	}

	list := decode[types.GetTasksResponse](t, do(t, mux, http.MethodGet, "/api/tasks?status=completed", "u1", nil))
	if list.Total != 1 || len(list.Tasks) != 1 {
		t.Fatalf("list = %+v", list)
	}
	if other := decode[types.GetTasksResponse](t, do(t, mux, http.MethodGet, "/api/tasks", "u2", nil)); other.Total != 0 {
		t.Fatalf("u2 sees %d tasks", other.Total)
	}

	if rec := do(t, mux, http.MethodDelete, "/api/tasks/"+id, "u1", nil); rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodGet, "/api/tasks/"+id, "u1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestTaskValidationErrors(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/tasks", "u1", map[string]string{"title": "", "priority": "urgent"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	res := decode[types.TaskResult](t, rec)
	if res.Details["title"] == "" || res.Details["priority"] == "" {
		t.Fatalf("details = %v", res.Details)
	}

	if rec := do(t, mux, http.MethodGet, "/api/tasks?status=someday", "u1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad filter status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodGet, "/api/tasks/3", "u1", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("positional id status = %d", rec.Code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/sessions", "u1", map[string]any{"taskId": nil, "type": "pomodoro", "duration": 1500})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body = %s", rec.Code, rec.Body)
	}
	session := decode[types.SessionResult](t, rec).Session
	if session.Status != types.SessionStatusRunning || session.TaskID != nil || session.UserID != "u1" || session.Duration != 1500 {
		t.Fatalf("session = %+v", session)
	}
	path := "/api/sessions/" + session.ID

	if rec := do(t, mux, http.MethodPost, path+"/complete", "u2", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("foreign complete status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, path+"/complete", "u1", nil); rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body = %s", rec.Code, rec.Body)
	}
	if rec := do(t, mux, http.MethodPost, path+"/complete", "u1", nil); rec.Code != http.StatusOK {
		t.Fatalf("repeat complete status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, path+"/cancel", "u1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("cancel after complete status = %d", rec.Code)
	}

	list := decode[types.GetSessionsResponse](t, do(t, mux, http.MethodGet, "/api/sessions?days=7", "u1", nil))
	if len(list.Sessions) != 1 || list.Sessions[0].Status != types.SessionStatusCompleted {
		t.Fatalf("sessions = %+v", list.Sessions)
	}
}

func TestChatWithoutModel(t *testing.T) {
	mux := newTestMux(t)

	rec := do(t, mux, http.MethodPost, "/api/chat", "u1", map[string]string{"message": "add a task"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := decode[types.ErrorResponse](t, rec); body.Error != "AI service not configured" || body.Message == "" {
		t.Fatalf("body = %+v", body)
	}

	if rec := do(t, mux, http.MethodPost, "/api/chat", "u1", map[string]any{"message": 7}); rec.Code != http.StatusBadRequest {
		t.Fatalf("non-string message status = %d", rec.Code)
	}
	if rec := do(t, mux, http.MethodPost, "/api/chat", "", map[string]string{"message": "hi"}); rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}
}

func TestAnalyticsAndInsights(t *testing.T) {
	mux := newTestMux(t)
	do(t, mux, http.MethodPost, "/api/tasks", "u1", map[string]string{"title": "Plan week"})

	rec := do(t, mux, http.MethodGet, "/api/analytics?days=abc", "u1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rec.Code)
	}
	report := decode[types.AnalyticsResponse](t, rec)
	if len(report.DailyData) != 30 || report.TaskStats.Total != 1 {
		t.Fatalf("report = %+v", report)
	}

	insights := decode[types.InsightsResponse](t, do(t, mux, http.MethodGet, "/api/ai/insights", "u1", nil))
	if len(insights.Insights) == 0 || insights.Error != "" {
		t.Fatalf("insights = %+v", insights)
	}
}
