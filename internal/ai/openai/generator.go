package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const defaultModel = "gpt-4o-mini"

// Generator answers prompts through the chat completions API of OpenAI or a
// compatible server.
type Generator struct {
	client openai.Client
	model  string
}

func NewGenerator(apiKey, baseURL, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{client: openai.NewClient(opts...), model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}

	output := strings.TrimSpace(resp.Choices[0].Message.Content)
	if output == "" {
		return "", errors.New("openai returned empty response")
	}
	return output, nil
}

func (g *Generator) Model() string { return g.model }
