package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

const cacheKeyPrefix = "resume-assistant:embedding:"

// Cache stores vectors by key. A miss is reported with ok == false, not an error.
type Cache interface {
	Get(ctx context.Context, key string) (vector []float32, ok bool, err error)
	Set(ctx context.Context, key string, vector []float32) error
}

// CacheKey derives the cache key of text embedded by model.
func CacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}

// CachedProvider serves repeated texts from a Cache and delegates misses to
// the wrapped provider. Cache failures are logged and never change results.
type CachedProvider struct {
	next   Provider
	cache  Cache
	logger *zap.Logger
}

func NewCached(next Provider, cache Cache, logger *zap.Logger) *CachedProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProvider{next: next, cache: cache, logger: logger}
}

func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	out, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (p *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	keys := make([]string, len(texts))

	var (
		missing   []string
		positions []int
	)
	for i, text := range texts {
		keys[i] = CacheKey(p.next.Model(), text)

		vector, ok, err := p.cache.Get(ctx, keys[i])
		if err != nil {
			p.logger.Warn("embedding cache read failed", zap.Error(err))
		}
		if ok && len(vector) == p.next.Dimension() {
			out[i] = vector
			continue
		}
		missing = append(missing, text)
		positions = append(positions, i)
	}

	if len(missing) == 0 {
		return out, nil
	}

	vectors, err := p.next.EmbedBatch(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(missing) {
		return nil, fmt.Errorf("expected %d vectors, got %d", len(missing), len(vectors))
	}

	for j, vector := range vectors {
		i := positions[j]
		out[i] = vector
		if err := p.cache.Set(ctx, keys[i], vector); err != nil {
			p.logger.Warn("embedding cache write failed", zap.Error(err))
		}
	}

	p.logger.Debug("embedding cache lookup",
		zap.Int("hits", len(texts)-len(missing)),
		zap.Int("misses", len(missing)),
	)

	return out, nil
}

func (p *CachedProvider) Dimension() int { return p.next.Dimension() }

func (p *CachedProvider) Model() string { return p.next.Model() }

// MemoryCache keeps vectors for the lifetime of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{vectors: make(map[string][]float32)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vectors[key]
	return v, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vectors[key] = append([]float32(nil), vector...)
	return nil
}

var errCorruptVector = errors.New("cached vector has invalid length")

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, x := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(x))
	}
	return buf
}

func decodeVector(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, errCorruptVector
	}
	v := make([]float32, len(buf)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return v, nil
}
