package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingProvider struct {
	batches [][]string
	dim     int
	err     error
}

func (p *recordingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (p *recordingProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	p.batches = append(p.batches, append([]string(nil), texts...))
	if p.err != nil {
		return nil, p.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, p.dim)
		v[0] = float32(len(text))
		out[i] = v
	}
	return out, nil
}

func (p *recordingProvider) Dimension() int { return p.dim }

func (p *recordingProvider) Model() string { return "recording" }

func TestEmbedInBatchesChunksAndKeepsOrder(t *testing.T) {
	texts := make([]string, 300)
	for i := range texts {
		texts[i] = strings.Repeat("x", i)
	}
	p := &recordingProvider{dim: 2}

	vectors, err := EmbedInBatches(context.Background(), p, texts, 0, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(p.batches))
	}
	if len(p.batches[0]) != DefaultBatchSize || len(p.batches[2]) != 300-2*DefaultBatchSize {
		t.Fatalf("unexpected batch sizes: %d, %d", len(p.batches[0]), len(p.batches[2]))
	}
	for i, v := range vectors {
		if int(v[0]) != i {
			t.Fatalf("vector %d out of order: %v", i, v)
		}
	}
}

func TestEmbedInBatchesEmptyInput(t *testing.T) {
	p := &recordingProvider{dim: 2}

	vectors, err := EmbedInBatches(context.Background(), p, nil, 4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vectors) != 0 || len(p.batches) != 0 {
		t.Fatalf("expected no work, got %d vectors and %d batches", len(vectors), len(p.batches))
	}
}

func TestEmbedInBatchesPropagatesErrors(t *testing.T) {
	boom := errors.New("model unavailable")
	p := &recordingProvider{dim: 2, err: boom}

	_, err := EmbedInBatches(context.Background(), p, []string{"a"}, 4, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if !strings.Contains(err.Error(), "embed batch 1/1") {
		t.Fatalf("expected batch position in error, got %v", err)
	}
}
