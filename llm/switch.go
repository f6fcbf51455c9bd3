package llm

import (
	"fmt"

	"clementus360/focusflow/config"
)

type Model string

const (
	OpenAI Model = "openai"
	Gemini Model = "gemini"
)

// New returns the client for the configured provider, or ErrNotConfigured
// when its API key is absent.
func New(settings *config.Settings) (Client, error) {
	switch Model(settings.AIProvider) {
	case OpenAI:
		if settings.OpenAIAPIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewOpenAIClient(settings.OpenAIAPIKey, settings.OpenAIModel), nil
	case Gemini:
		if settings.GeminiAPIKey == "" {
			return nil, ErrNotConfigured
		}
		return NewGeminiClient(settings.GeminiAPIKey, settings.GeminiModel), nil
	default:
		return nil, fmt.Errorf("unsupported model: %s (supported: %s, %s)", settings.AIProvider, OpenAI, Gemini)
	}
}
