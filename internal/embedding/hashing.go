package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

const (
	// HashingModel is the model name reported by the local embedder.
	HashingModel = "hashing-v1"
	// DefaultHashingDimension matches the width of small sentence encoders.
	DefaultHashingDimension = 384

	biasFeature  = "\x00bias"
	bigramWeight = 0.5
)

// HashingProvider is an offline embedder based on signed feature hashing of
// lower-cased word unigrams and bigrams. A constant bias feature keeps the
// vector of empty text non-zero.
type HashingProvider struct {
	dim int
}

func NewHashing(dim int) *HashingProvider {
	if dim <= 0 {
		dim = DefaultHashingDimension
	}
	return &HashingProvider{dim: dim}
}

func (p *HashingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	return p.vector(text), nil
}

func (p *HashingProvider) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = p.vector(text)
	}
	return out, nil
}

func (p *HashingProvider) Dimension() int { return p.dim }

func (p *HashingProvider) Model() string { return HashingModel }

func (p *HashingProvider) vector(text string) []float32 {
	acc := make([]float64, p.dim)
	p.add(acc, biasFeature, 1)

	tokens := Tokenize(text)
	for i, token := range tokens {
		p.add(acc, token, 1)
		if i > 0 {
			p.add(acc, tokens[i-1]+" "+token, bigramWeight)
		}
	}

	var norm float64
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)

	out := make([]float32, p.dim)
	for i, v := range acc {
		out[i] = float32(v / norm)
	}
	return out
}

func (p *HashingProvider) add(acc []float64, feature string, weight float64) {
	h := fnv.New64a()
	h.Write([]byte(feature))
	sum := h.Sum64()

	bucket := int(sum % uint64(p.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	acc[bucket] += weight
}

// Tokenize lower-cases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
