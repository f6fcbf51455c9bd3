// Package llm talks to chat-completion providers. Both providers support
// function calling; callers see a single Client interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleFunction  Role = "function"
)

// FunctionCall is a model's request to run a named function. Arguments is
// the raw JSON text produced by the model and may be malformed.
type FunctionCall struct {
	Name      string
	Arguments string
}

type Message struct {
	Role         Role
	Content      string
	Name         string // function name for RoleFunction messages
	FunctionCall *FunctionCall
}

// FunctionDef declares a callable function; Parameters is a JSON schema object.
type FunctionDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

type Request struct {
	Messages    []Message
	Functions   []FunctionDef
	Temperature float64
	MaxTokens   int
}

type Client interface {
	Complete(ctx context.Context, req Request) (Message, error)
}

// ErrNotConfigured is returned when the provider credential is missing.
var ErrNotConfigured = errors.New("AI service not configured")

const requestTimeout = 30 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

// readResponse returns the body of a 200 response, or an error carrying the
// provider's error message.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msg := gjson.GetBytes(body, "error.message"); msg.Exists() {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, msg.String())
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("failed to decode response: invalid JSON")
	}
	return body, nil
}
