package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenAIModel     = "text-embedding-3-small"
	defaultOpenAIDimension = 1536
)

// OpenAIProvider embeds text through the OpenAI embeddings endpoint or any
// server that speaks the same protocol.
type OpenAIProvider struct {
	client openai.Client
	model  string
	dim    int
	// sendDim is set when the dimension was configured explicitly and must be
	// requested from the API.
	sendDim bool
}

// NewOpenAI creates an embeddings client. The SDK's own retries are disabled;
// embedding failures surface to the caller directly.
func NewOpenAI(apiKey, baseURL, model string, dim int) (*OpenAIProvider, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultOpenAIModel
	}

	p := &OpenAIProvider{
		client:  openai.NewClient(opts...),
		model:   model,
		dim:     dim,
		sendDim: dim > 0,
	}
	if !p.sendDim {
		p.dim = defaultOpenAIDimension
	}
	return p, nil
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          openai.EmbeddingModel(p.model),
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if p.sendDim {
		params.Dimensions = openai.Int(int64(p.dim))
	}

	resp, err := p.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}

	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		i := int(item.Index)
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("openai embeddings: index %d out of range for %d texts", i, len(texts))
		}
		vector := make([]float32, len(item.Embedding))
		for j, v := range item.Embedding {
			vector[j] = float32(v)
		}
		out[i] = vector
	}

	for i, v := range out {
		if v == nil {
			return nil, fmt.Errorf("openai embeddings: missing embedding for text %d", i)
		}
	}
	if err := checkDimensions(out, p.dim); err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	return out, nil
}

func (p *OpenAIProvider) Dimension() int { return p.dim }

func (p *OpenAIProvider) Model() string { return p.model }
