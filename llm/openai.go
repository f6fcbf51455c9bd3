package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tidwall/gjson"
)

const openaiURL = "https://api.openai.com/v1"

type OpenAIClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    openaiURL,
		HTTPClient: newHTTPClient(),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (Message, error) {
	if c.APIKey == "" {
		return Message{}, ErrNotConfigured
	}

	messages := make([]map[string]interface{}, 0, len(req.Messages))
	for _, m := range req.Messages {
		msg := map[string]interface{}{
			"role":    string(m.Role),
			"content": m.Content,
		}
		if m.Name != "" {
			msg["name"] = m.Name
		}
		if m.FunctionCall != nil {
			msg["function_call"] = map[string]string{
				"name":      m.FunctionCall.Name,
				"arguments": m.FunctionCall.Arguments,
			}
		}
		messages = append(messages, msg)
	}

	body := map[string]interface{}{
		"model":       c.Model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if len(req.Functions) > 0 {
		functions := make([]map[string]interface{}, 0, len(req.Functions))
		for _, f := range req.Functions {
			functions = append(functions, map[string]interface{}{
				"name":        f.Name,
				"description": f.Description,
				"parameters":  f.Parameters,
			})
		}
		body["functions"] = functions
		body["function_call"] = "auto"
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return Message{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return Message{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readResponse(resp)
	if err != nil {
		return Message{}, err
	}
	return parseOpenAIMessage(raw)
}

func parseOpenAIMessage(raw []byte) (Message, error) {
	message := gjson.GetBytes(raw, "choices.0.message")
	if !message.Exists() {
		return Message{}, fmt.Errorf("no choices returned from OpenAI")
	}

	out := Message{
		Role:    RoleAssistant,
		Content: message.Get("content").String(),
	}
	if call := message.Get("function_call"); call.Exists() && call.Get("name").String() != "" {
		out.FunctionCall = &FunctionCall{
			Name:      call.Get("name").String(),
			Arguments: call.Get("arguments").String(),
		}
	} else if tool := message.Get("tool_calls.0.function"); tool.Exists() {
		out.FunctionCall = &FunctionCall{
			Name:      tool.Get("name").String(),
			Arguments: tool.Get("arguments").String(),
		}
	}
	return out, nil
}
