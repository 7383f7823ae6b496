package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultGeminiModel     = "text-embedding-004"
	defaultGeminiDimension = 768
	// The Gemini API accepts at most this many contents per embed request.
	maxGeminiBatch = 100
)

type embedModels interface {
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

// GeminiProvider embeds text with the Gemini embeddings API.
type GeminiProvider struct {
	models embedModels
	model  string
	dim    int
}

// NewGemini creates a provider for the Gemini API backend. Zero values for
// model and dim select text-embedding-004 at 768 dimensions.
func NewGemini(ctx context.Context, apiKey, model string, dim int) (*GeminiProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGeminiProvider(client.Models, model, dim), nil
}

func newGeminiProvider(models embedModels, model string, dim int) *GeminiProvider {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultGeminiModel
	}
	if dim <= 0 {
		dim = defaultGeminiDimension
	}
	return &GeminiProvider{models: models, model: model, dim: dim}
}

func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (p *GeminiProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += maxGeminiBatch {
		end := min(start+maxGeminiBatch, len(texts))
		vectors, err := p.embed(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

func (p *GeminiProvider) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: text}},
		}
	}

	dim := int32(p.dim)
	resp, err := p.models.EmbedContent(ctx, p.model, contents, &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: &dim,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini embed content: %w", err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", got, len(texts))
	}

	out := make([][]float32, len(texts))
	for i, embedding := range resp.Embeddings {
		if embedding == nil {
			return nil, fmt.Errorf("gemini returned an empty embedding at position %d", i)
		}
		out[i] = embedding.Values
	}

	if err := checkDimensions(out, p.dim); err != nil {
		return nil, fmt.Errorf("gemini embeddings: %w", err)
	}
	return out, nil
}

func (p *GeminiProvider) Dimension() int { return p.dim }

func (p *GeminiProvider) Model() string { return p.model }
