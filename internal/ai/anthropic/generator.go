package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultModel     = "claude-sonnet-4-20250514"
	defaultMaxTokens = 2048
)

// Generator answers prompts through the Anthropic messages API.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewGenerator(apiKey, baseURL, model string, maxTokens int) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("anthropic api key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &Generator{
		client:    anthropic.NewClient(opts...),
		model:     model,
		maxTokens: int64(maxTokens),
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: g.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var builder strings.Builder
	for _, block := range resp.Content {
		if block.Type != "text" {
			continue
		}
		builder.WriteString(block.Text)
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("anthropic returned empty response")
	}
	return output, nil
}

func (g *Generator) Model() string { return g.model }
