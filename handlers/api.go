// Package handlers exposes the FocusFlow operations over JSON HTTP.
package handlers

import (
	"time"

	"clementus360/focusflow/analytics"
	"clementus360/focusflow/assistant"
	"clementus360/focusflow/events"
	"clementus360/focusflow/services"
)

// API holds the dependencies shared by all handlers.
type API struct {
	Tasks     *services.TaskService
	Sessions  *services.SessionService
	Assistant *assistant.Dispatcher
	Insights  *analytics.InsightGenerator
	Events    *events.Bus
	Location  *time.Location

	now       func() time.Time
	heartbeat time.Duration
}

func NewAPI(tasks *services.TaskService, sessions *services.SessionService, dispatcher *assistant.Dispatcher,
	insights *analytics.InsightGenerator, bus *events.Bus, loc *time.Location) *API {
	if loc == nil {
		loc = time.UTC
	}
	return &API{
		Tasks:     tasks,
		Sessions:  sessions,
		Assistant: dispatcher,
		Insights:  insights,
		Events:    bus,
		Location:  loc,
		now:       time.Now,
		heartbeat: 25 * time.Second,
	}
}
