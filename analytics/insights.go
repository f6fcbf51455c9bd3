package analytics

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"clementus360/focusflow/config"
	"clementus360/focusflow/llm"
	"clementus360/focusflow/types"
)

const (
	maxInsights         = 5
	insightsUnavailable = "AI insights unavailable, showing general recommendations"
)

const insightsPrompt = `You are a productivity coach. Based on the user's focus statistics below, give up to 5 short, specific recommendations.
Reply with a markdown list, one recommendation per line, each under 25 words. No introduction or closing text.`

// Summary is the input to insight generation.
type Summary struct {
	TotalSessions     int
	CompletedSessions int
	CompletionRate    float64
	TotalMinutes      int
	TasksByStatus     map[string]int
	PendingTasks      int
	PendingHigh       int
	OverdueTasks      int
}

func Summarize(sessions []types.FocusSession, tasks []types.Task, now time.Time) Summary {
	stats := sessionStats(sessions)
	sum := Summary{
		TotalSessions:     stats.Total,
		CompletedSessions: stats.Completed,
		CompletionRate:    stats.CompletionRate,
		TotalMinutes:      stats.TotalMinutes,
		TasksByStatus:     taskStats(tasks).ByStatus,
	}
	today := now.UTC().Truncate(24 * time.Hour)
	for _, t := range tasks {
		if t.Status == types.TaskStatusCompleted {
			continue
		}
		sum.PendingTasks++
		if t.Priority == types.TaskPriorityHigh {
			sum.PendingHigh++
		}
		if t.DueDate != nil && t.DueDate.Before(today) {
			sum.OverdueTasks++
		}
	}
	return sum
}

func (s Summary) prompt(days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Statistics for the last %d days:\n", days)
	fmt.Fprintf(&b, "- Focus sessions: %d started, %d completed (%.0f%% completion)\n", s.TotalSessions, s.CompletedSessions, s.CompletionRate*100)
	fmt.Fprintf(&b, "- Total focus time: %d minutes\n", s.TotalMinutes)
	fmt.Fprintf(&b, "- Tasks: %d todo, %d in progress, %d completed\n",
		s.TasksByStatus[types.TaskStatusTodo], s.TasksByStatus[types.TaskStatusInProgress], s.TasksByStatus[types.TaskStatusCompleted])
	fmt.Fprintf(&b, "- Pending high-priority tasks: %d\n", s.PendingHigh)
	fmt.Fprintf(&b, "- Overdue tasks: %d", s.OverdueTasks)
	return b.String()
}

// InsightGenerator produces short recommendations, from the model when one is
// configured and from fixed rules otherwise.
type InsightGenerator struct {
	client llm.Client
	days   int
}

// NewInsightGenerator accepts a nil client.
func NewInsightGenerator(client llm.Client) *InsightGenerator {
	return &InsightGenerator{client: client, days: config.InsightsWindowDays}
}

// Generate never fails: a model error is reported in the Error field next to
// the rule-based insights.
func (g *InsightGenerator) Generate(ctx context.Context, sum Summary) types.InsightsResponse {
	if g.client == nil {
		return types.InsightsResponse{Insights: RuleInsights(sum)}
	}

	reply, err := g.client.Complete(ctx, llm.Request{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: insightsPrompt},
			{Role: llm.RoleUser, Content: sum.prompt(g.days)},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		config.Logger.WithError(err).Warn("Insight generation failed, using rule-based insights")
		return types.InsightsResponse{Insights: RuleInsights(sum), Error: insightsUnavailable}
	}

	insights := ParseInsights(reply.Content)
	if len(insights) == 0 {
		config.Logger.Debug("Model reply had no list items, using rule-based insights")
		return types.InsightsResponse{Insights: RuleInsights(sum)}
	}
	return types.InsightsResponse{Insights: insights}
}

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s+`)

// ParseInsights extracts list items from markdown text, at most five.
func ParseInsights(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		loc := listMarker.FindStringIndex(line)
		if loc == nil {
			continue
		}
		item := strings.TrimSpace(strings.ReplaceAll(line[loc[1]:], "**", ""))
		if item == "" {
			continue
		}
		out = append(out, item)
		if len(out) == maxInsights {
			break
		}
	}
	return out
}

// RuleInsights is the fallback used when no model is available.
func RuleInsights(s Summary) []string {
	var out []string
	if s.PendingTasks > 10 {
		out = append(out, fmt.Sprintf("You have %d open tasks. Break large ones into smaller steps you can finish in a single session.", s.PendingTasks))
	}
	if s.PendingHigh > 3 {
		out = append(out, fmt.Sprintf("%d high-priority tasks are waiting. Pick the one with the nearest deadline and focus on it first.", s.PendingHigh))
	}
	if s.CompletedSessions == 0 {
		out = append(out, "Start with a short 15 minute focus session to build momentum.")
	}
	if s.TotalSessions >= 4 && s.CompletionRate < 0.5 {
		out = append(out, "Many sessions end early. Try shorter sessions and remove distractions before you start.")
	}
	if s.TotalMinutes >= 120 {
		out = append(out, fmt.Sprintf("Great work: %d minutes of focused time. Keep taking regular breaks to stay fresh.", s.TotalMinutes))
	}
	if s.OverdueTasks > 0 {
		out = append(out, fmt.Sprintf("%d tasks are past their due date. Reschedule them or mark them done.", s.OverdueTasks))
	}
	if len(out) == 0 {
		out = append(out, "Plan tomorrow's top three tasks at the end of each day.")
	}
	if len(out) > maxInsights {
		out = out[:maxInsights]
	}
	return out
}
