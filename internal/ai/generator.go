package ai

import "context"

const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// TextGenerator sends a prompt to a language model and returns its text answer.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}
