package handlers

import (
	"net/http"
	"strconv"

	"clementus360/focusflow/analytics"
	"clementus360/focusflow/auth"
	"clementus360/focusflow/config"
)

// parseDays reads ?days=N, defaulting to 30 for missing or unusable values.
func parseDays(r *http.Request) int {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		return config.DefaultAnalyticsDays
	}
	if days > config.MaxAnalyticsDays {
		return config.MaxAnalyticsDays
	}
	return days
}

func (a *API) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserFromContext(ctx)
	days := parseDays(r)

	sessions := a.Sessions.GetUserSessions(ctx, userID, days)
	tasks := a.Tasks.GetTasks(ctx, userID)

	writeJSON(w, http.StatusOK, analytics.Aggregate(sessions, tasks, days, a.now(), a.Location))
}

func (a *API) InsightsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserFromContext(ctx)

	sessions := a.Sessions.GetUserSessions(ctx, userID, config.InsightsWindowDays)
	tasks := a.Tasks.GetTasks(ctx, userID)

	writeJSON(w, http.StatusOK, a.Insights.Generate(ctx, analytics.Summarize(sessions, tasks, a.now())))
}
