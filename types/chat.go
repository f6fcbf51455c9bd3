package types

import (
	"encoding/json"
	"time"
)

type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Message json.RawMessage `json:"message"`
	History []HistoryEntry  `json:"history,omitempty"`
}

// FunctionCallRecord describes the task operation the assistant ran.
type FunctionCallRecord struct {
	Name   string          `json:"name"`
	Args   json.RawMessage `json:"args"`
	Result json.RawMessage `json:"result"`
}

type ChatResponse struct {
	Message      string              `json:"message"`
	FunctionCall *FunctionCallRecord `json:"functionCall,omitempty"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

const (
	EventTaskCreated = "task-created"
	EventTaskUpdated = "task-updated"
	EventTaskDeleted = "task-deleted"
)

// ChatEventData notifies listeners that the assistant changed a task.
type ChatEventData struct {
	Type      string    `json:"type"`
	Task      *Task     `json:"task,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
