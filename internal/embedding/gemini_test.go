package embedding

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/genai"
)

type fakeEmbedModels struct {
	calls  [][]*genai.Content
	config *genai.EmbedContentConfig
	dim    int
	err    error
	drop   bool
}

func (f *fakeEmbedModels) EmbedContent(_ context.Context, _ string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.calls = append(f.calls, contents)
	f.config = config
	if f.err != nil {
		return nil, f.err
	}

	resp := &genai.EmbedContentResponse{}
	for _, content := range contents {
		v := make([]float32, f.dim)
		v[0] = float32(len(content.Parts[0].Text))
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: v})
	}
	if f.drop {
		resp.Embeddings = resp.Embeddings[1:]
	}
	return resp, nil
}

func TestGeminiSplitsLargeBatches(t *testing.T) {
	models := &fakeEmbedModels{dim: 8}
	p := newGeminiProvider(models, "", 8)

	texts := make([]string, 128)
	for i := range texts {
		texts[i] = string(make([]byte, i))
	}

	vectors, err := p.EmbedBatch(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(models.calls) != 2 || len(models.calls[0]) != maxGeminiBatch || len(models.calls[1]) != 28 {
		t.Fatalf("unexpected request split: %d calls", len(models.calls))
	}
	if len(vectors) != 128 || vectors[127][0] != 127 {
		t.Fatalf("unexpected vectors: %d", len(vectors))
	}
	if p.Model() != defaultGeminiModel {
		t.Fatalf("expected default model, got %s", p.Model())
	}
	if models.config.OutputDimensionality == nil || *models.config.OutputDimensionality != 8 {
		t.Fatalf("expected output dimensionality to be requested")
	}
}

func TestGeminiRejectsShortResponses(t *testing.T) {
	p := newGeminiProvider(&fakeEmbedModels{dim: 4, drop: true}, "text-embedding-004", 4)

	if _, err := p.EmbedBatch(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error when embeddings are missing")
	}
}

func TestGeminiRejectsWrongDimension(t *testing.T) {
	p := newGeminiProvider(&fakeEmbedModels{dim: 3}, "text-embedding-004", 4)

	if _, err := p.Embed(context.Background(), "a"); err == nil {
		t.Fatal("expected dimension mismatch error")
	}
}

func TestGeminiWrapsAPIErrors(t *testing.T) {
	apiErr := genai.APIError{Code: 403, Status: "PERMISSION_DENIED", Message: "api key invalid"}
	p := newGeminiProvider(&fakeEmbedModels{err: apiErr}, "", 4)

	_, err := p.Embed(context.Background(), "a")
	var got genai.APIError
	if !errors.As(err, &got) || got.Code != 403 {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}

func TestNewGeminiRequiresKey(t *testing.T) {
	if _, err := NewGemini(context.Background(), " ", "", 0); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
