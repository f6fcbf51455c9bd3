// Package analytics summarises focus sessions and tasks for the dashboard.
package analytics

import (
	"math"
	"sort"
	"time"

	"clementus360/focusflow/types"
)

const (
	dayLayout     = "2006-01-02"
	peakHourLimit = 5
)

// SessionMinutes is the whole minutes between start and end. Sessions
// without an end time count as zero.
func SessionMinutes(s types.FocusSession) int {
	if s.EndTime == nil || !s.EndTime.After(s.StartTime) {
		return 0
	}
	return int(s.EndTime.Sub(s.StartTime) / time.Minute)
}

// Aggregate builds the dashboard figures. Sessions are expected to be
// windowed by the caller; tasks are counted in full. Daily buckets are UTC
// days, peak hours use loc.
func Aggregate(sessions []types.FocusSession, tasks []types.Task, days int, now time.Time, loc *time.Location) types.AnalyticsResponse {
	if loc == nil {
		loc = time.UTC
	}
	return types.AnalyticsResponse{
		DailyData:    dailyFocus(sessions, days, now),
		TaskStats:    taskStats(tasks),
		SessionStats: sessionStats(sessions),
		PeakHours:    peakHours(sessions, loc),
	}
}

func dailyFocus(sessions []types.FocusSession, days int, now time.Time) []types.DailyFocus {
	if days < 1 {
		days = 1
	}
	today := now.UTC().Truncate(24 * time.Hour)

	index := make(map[string]int, days)
	out := make([]types.DailyFocus, 0, days)
	for i := days - 1; i >= 0; i-- {
		date := today.AddDate(0, 0, -i).Format(dayLayout)
		index[date] = len(out)
		out = append(out, types.DailyFocus{Date: date})
	}

	extra := false
	for _, s := range sessions {
		date := s.StartTime.UTC().Format(dayLayout)
		i, ok := index[date]
		if !ok {
			i = len(out)
			index[date] = i
			out = append(out, types.DailyFocus{Date: date})
			extra = true
		}
		out[i].Minutes += SessionMinutes(s)
		out[i].Sessions++
	}
	if extra {
		sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	}
	return out
}

func taskStats(tasks []types.Task) types.TaskStats {
	stats := types.TaskStats{
		Total:      len(tasks),
		ByStatus:   make(map[string]int, len(types.TaskStatuses)),
		ByPriority: make(map[string]int, len(types.TaskPriorities)),
	}
	for _, s := range types.TaskStatuses {
		stats.ByStatus[s] = 0
	}
	for _, p := range types.TaskPriorities {
		stats.ByPriority[p] = 0
	}
	for _, t := range tasks {
		stats.ByStatus[t.Status]++
		stats.ByPriority[t.Priority]++
	}
	return stats
}

func sessionStats(sessions []types.FocusSession) types.SessionStats {
	var stats types.SessionStats
	ended := 0
	for _, s := range sessions {
		stats.Total++
		switch s.Status {
		case types.SessionStatusCompleted:
			stats.Completed++
		case types.SessionStatusCancelled:
			stats.Cancelled++
		case types.SessionStatusRunning:
			stats.Running++
		}
		if s.EndTime != nil {
			ended++
		}
		stats.TotalMinutes += SessionMinutes(s)
	}
	if ended > 0 {
		stats.AverageMinutes = round(float64(stats.TotalMinutes)/float64(ended), 1)
	}
	if stats.Total > 0 {
		stats.CompletionRate = round(float64(stats.Completed)/float64(stats.Total), 2)
	}
	return stats
}

// peakHours ranks the local start hours of completed sessions. Ties keep the
// order in which the hours first appear.
func peakHours(sessions []types.FocusSession, loc *time.Location) []types.PeakHour {
	counts := map[int]int{}
	var order []int
	for _, s := range sessions {
		if s.Status != types.SessionStatusCompleted {
			continue
		}
		hour := s.StartTime.In(loc).Hour()
		if _, seen := counts[hour]; !seen {
			order = append(order, hour)
		}
		counts[hour]++
	}

	out := make([]types.PeakHour, 0, len(order))
	for _, hour := range order {
		out = append(out, types.PeakHour{Hour: hour, Count: counts[hour]})
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Count > out[b].Count })
	if len(out) > peakHourLimit {
		out = out[:peakHourLimit]
	}
	return out
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
