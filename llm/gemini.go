package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

const geminiURL = "https://generativelanguage.googleapis.com/v1beta"

type GeminiClient struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    geminiURL,
		HTTPClient: newHTTPClient(),
	}
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (Message, error) {
	if c.APIKey == "" {
		return Message{}, ErrNotConfigured
	}

	var system []string
	contents := make([]map[string]interface{}, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleUser:
			contents = append(contents, geminiContent("user", map[string]interface{}{"text": m.Content}))
		case RoleAssistant:
			if m.FunctionCall != nil {
				contents = append(contents, geminiContent("model", map[string]interface{}{
					"functionCall": map[string]interface{}{
						"name": m.FunctionCall.Name,
						"args": jsonObject(m.FunctionCall.Arguments, "arguments"),
					},
				}))
			} else {
				contents = append(contents, geminiContent("model", map[string]interface{}{"text": m.Content}))
			}
		case RoleFunction:
			contents = append(contents, geminiContent("function", map[string]interface{}{
				"functionResponse": map[string]interface{}{
					"name":     m.Name,
					"response": jsonObject(m.Content, "content"),
				},
			}))
		}
	}

	body := map[string]interface{}{
		"contents": contents,
		"generationConfig": map[string]interface{}{
			"temperature":     req.Temperature,
			"maxOutputTokens": req.MaxTokens,
		},
	}
	if len(system) > 0 {
		body["systemInstruction"] = map[string]interface{}{
			"parts": []map[string]string{{"text": strings.Join(system, "\n\n")}},
		}
	}
	if len(req.Functions) > 0 {
		declarations := make([]map[string]interface{}, 0, len(req.Functions))
		for _, f := range req.Functions {
			decl := map[string]interface{}{
				"name":        f.Name,
				"description": f.Description,
			}
			// Gemini rejects object schemas with no properties.
			if props, ok := f.Parameters["properties"].(map[string]any); ok && len(props) > 0 {
				decl["parameters"] = f.Parameters
			}
			declarations = append(declarations, decl)
		}
		body["tools"] = []map[string]interface{}{{"functionDeclarations": declarations}}
	}

	jsonData, err := json.Marshal(body)
	if err != nil {
		return Message{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return Message{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return Message{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := readResponse(resp)
	if err != nil {
		return Message{}, err
	}
	return parseGeminiMessage(raw)
}

func parseGeminiMessage(raw []byte) (Message, error) {
	parts := gjson.GetBytes(raw, "candidates.0.content.parts")
	if !parts.Exists() || len(parts.Array()) == 0 {
		return Message{}, fmt.Errorf("no candidates returned from Gemini")
	}

	out := Message{Role: RoleAssistant}
	var text strings.Builder
	for _, part := range parts.Array() {
		if call := part.Get("functionCall"); call.Exists() && out.FunctionCall == nil {
			args := call.Get("args").Raw
			if args == "" {
				args = "{}"
			}
			out.FunctionCall = &FunctionCall{Name: call.Get("name").String(), Arguments: args}
			continue
		}
		text.WriteString(part.Get("text").String())
	}
	out.Content = text.String()
	return out, nil
}

func geminiContent(role string, part map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"role":  role,
		"parts": []map[string]interface{}{part},
	}
}

// jsonObject passes a JSON object through unchanged and wraps anything else
// under key, since Gemini requires object-valued args and responses.
func jsonObject(text, key string) json.RawMessage {
	if gjson.Valid(text) && gjson.Parse(text).IsObject() {
		return json.RawMessage(text)
	}
	wrapped, _ := json.Marshal(map[string]string{key: text})
	return wrapped
}
