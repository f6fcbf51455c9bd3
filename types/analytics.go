package types

type DailyFocus struct {
	Date     string `json:"date"` // YYYY-MM-DD, UTC
	Minutes  int    `json:"minutes"`
	Sessions int    `json:"sessions"`
}

type TaskStats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"byStatus"`
	ByPriority map[string]int `json:"byPriority"`
}

type SessionStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Cancelled      int     `json:"cancelled"`
	Running        int     `json:"running"`
	TotalMinutes   int     `json:"totalMinutes"`
	AverageMinutes float64 `json:"averageMinutes"`
	CompletionRate float64 `json:"completionRate"`
}

type PeakHour struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type AnalyticsResponse struct {
	DailyData    []DailyFocus `json:"dailyData"`
	TaskStats    TaskStats    `json:"taskStats"`
	SessionStats SessionStats `json:"sessionStats"`
	PeakHours    []PeakHour   `json:"peakHours"`
}

type InsightsResponse struct {
	Insights []string `json:"insights"`
	Error    string   `json:"error,omitempty"`
}
