package config

// AssistantConfig bounds how much context the task assistant sends to the model.
type AssistantConfig struct {
	MaxContextTasks   int
	MaxHistoryEntries int
	Temperature       float64
	MaxTokens         int
}

var ContextConfig = AssistantConfig{
	MaxContextTasks:   10,
	MaxHistoryEntries: 20,
	Temperature:       0.3,
	MaxTokens:         1000,
}

// Analytics windows
const (
	DefaultAnalyticsDays = 30
	MaxAnalyticsDays     = 365
	InsightsWindowDays   = 30
)
