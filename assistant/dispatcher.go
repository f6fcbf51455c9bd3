// Package assistant turns natural-language chat messages into task
// operations via LLM function calling.
package assistant

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"clementus360/focusflow/config"
	"clementus360/focusflow/llm"
	"clementus360/focusflow/types"

	"github.com/sirupsen/logrus"
)

const (
	notConfiguredMessage = "I'm sorry, the AI assistant isn't available right now. Please try again later."
	internalErrorMessage = "Sorry, I encountered an error processing your request. Please try again."
	clarifyMessage       = "I couldn't quite understand the details of that request. Could you rephrase it, including which task you mean?"
	unknownCallMessage   = "I'm not sure how to do that. I can create, update, delete, or list your tasks."
)

// Publisher receives task change notifications.
type Publisher interface {
	Publish(userID, eventType string, task *types.Task) int
}

type Dispatcher struct {
	client llm.Client
	tasks  TaskOps
	events Publisher
	cfg    config.AssistantConfig
	now    func() time.Time
}

// NewDispatcher builds a dispatcher. client may be nil when no model
// credential is configured; events may be nil.
func NewDispatcher(client llm.Client, tasks TaskOps, events Publisher) *Dispatcher {
	return &Dispatcher{
		client: client,
		tasks:  tasks,
		events: events,
		cfg:    config.ContextConfig,
		now:    time.Now,
	}
}

// Chat answers one user message. The returned error, when non-nil, carries a
// kind and a message that is safe to show to the user.
func (d *Dispatcher) Chat(ctx context.Context, userID string, req types.ChatRequest) (types.ChatResponse, *types.AppError) {
	if userID == "" {
		return types.ChatResponse{}, types.NewError(types.KindUnauthorized, "Unauthorized", nil)
	}

	var message string
	if len(req.Message) == 0 || json.Unmarshal(req.Message, &message) != nil || message == "" {
		return types.ChatResponse{}, types.NewError(types.KindBadRequest, "Message is required", nil)
	}

	if d.client == nil {
		return types.ChatResponse{}, types.NewError(types.KindServiceUnavailable, notConfiguredMessage, llm.ErrNotConfigured)
	}

	log := config.Logger.WithField("user_id", userID)

	tasks := d.tasks.GetTasks(ctx, userID)
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleSystem, Content: buildTaskContext(tasks, d.cfg.MaxContextTasks, d.now())},
	}
	messages = append(messages, d.history(req.History)...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	reply, err := d.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Functions:   taskFunctions,
		Temperature: d.cfg.Temperature,
		MaxTokens:   d.cfg.MaxTokens,
	})
	if err != nil {
		log.WithError(err).Error("Failed to get AI response")
		return types.ChatResponse{}, types.NewError(types.KindInternal, internalErrorMessage, err)
	}

	if reply.FunctionCall == nil {
		return types.ChatResponse{Message: reply.Content}, nil
	}

	name := reply.FunctionCall.Name
	log = log.WithField("function", name)

	decode, ok := callDecoders[name]
	if !ok {
		log.Warn("Model requested an unknown function")
		return types.ChatResponse{Message: unknownCallMessage}, nil
	}

	args, ok := parseArguments(reply.FunctionCall.Arguments)
	if !ok {
		log.WithField("arguments", reply.FunctionCall.Arguments).Warn("Unparsable function arguments")
		return types.ChatResponse{Message: clarifyMessage}, nil
	}
	call, err := decode(args)
	if err != nil {
		log.WithError(err).Warn("Function arguments do not match schema")
		return types.ChatResponse{Message: clarifyMessage}, nil
	}

	outcome := call.execute(ctx, d.tasks, userID)
	if outcome.event != "" && d.events != nil {
		delivered := d.events.Publish(userID, outcome.event, outcome.task)
		log.WithFields(logrus.Fields{"event": outcome.event, "listeners": delivered}).Debug("Published task event")
	}

	messages = append(messages,
		llm.Message{Role: llm.RoleAssistant, Content: reply.Content, FunctionCall: &llm.FunctionCall{Name: name, Arguments: string(args)}},
		llm.Message{Role: llm.RoleFunction, Name: name, Content: outcome.payload},
	)

	summary, err := d.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: d.cfg.Temperature,
		MaxTokens:   d.cfg.MaxTokens,
	})
	if err != nil {
		log.WithError(err).Error("Failed to get AI confirmation")
		return types.ChatResponse{}, types.NewError(types.KindInternal, internalErrorMessage, err)
	}

	return types.ChatResponse{
		Message: summary.Content,
		FunctionCall: &types.FunctionCallRecord{
			Name:   name,
			Args:   json.RawMessage(args),
			Result: json.RawMessage(outcome.payload),
		},
	}, nil
}

// history keeps the most recent user/assistant turns.
func (d *Dispatcher) history(entries []types.HistoryEntry) []llm.Message {
	var out []llm.Message
	for _, e := range entries {
		if strings.TrimSpace(e.Content) == "" {
			continue
		}
		switch e.Role {
		case string(llm.RoleUser):
			out = append(out, llm.Message{Role: llm.RoleUser, Content: e.Content})
		case string(llm.RoleAssistant):
			out = append(out, llm.Message{Role: llm.RoleAssistant, Content: e.Content})
		}
	}
	if limit := d.cfg.MaxHistoryEntries; limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
