// Package embedding turns text into dense vectors.
package embedding

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultBatchSize bounds how many texts are sent to a provider at once while
// encoding the corpus.
const DefaultBatchSize = 128

// Provider embeds text into vectors of a fixed dimension. Equal input with the
// same model must produce numerically stable output.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Model() string
}

// EmbedInBatches encodes texts sequentially in chunks of batchSize and
// returns one vector per text in input order.
func EmbedInBatches(ctx context.Context, p Provider, texts []string, batchSize int, logger *zap.Logger) ([][]float32, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	batches := (len(texts) + batchSize - 1) / batchSize
	vectors := make([][]float32, 0, len(texts))

	for start, batch := 0, 1; start < len(texts); start, batch = start+batchSize, batch+1 {
		end := min(start+batchSize, len(texts))

		out, err := p.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed batch %d/%d: %w", batch, batches, err)
		}
		if len(out) != end-start {
			return nil, fmt.Errorf("embed batch %d/%d: expected %d vectors, got %d", batch, batches, end-start, len(out))
		}
		vectors = append(vectors, out...)

		logger.Debug("encoded batch",
			zap.Int("batch", batch),
			zap.Int("batches", batches),
			zap.Int("rows", len(vectors)),
		)
	}

	return vectors, nil
}

func checkDimensions(vectors [][]float32, dim int) error {
	for i, v := range vectors {
		if len(v) != dim {
			return fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
	}
	return nil
}
