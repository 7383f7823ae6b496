// Package index is an exact inner-product vector index over L2-normalized
// embeddings, persisted as a single artifact.
package index

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"
)

// Meta describes what an index was built from. An artifact is reused only
// when model, dimension and corpus fingerprint all match.
type Meta struct {
	Model      string    `json:"model"`
	Dimension  int       `json:"dimension"`
	CorpusHash string    `json:"corpus_hash"`
	BuildID    string    `json:"build_id,omitempty"`
	BuiltAt    time.Time `json:"built_at"`
}

// Compatible reports whether an index described by m can serve queries
// expecting want. Build identity and time are ignored.
func (m Meta) Compatible(want Meta) bool {
	return m.Model == want.Model && m.Dimension == want.Dimension && m.CorpusHash == want.CorpusHash
}

// Hit is one search result: the inner product with the query and the row it
// came from.
type Hit struct {
	Score float64
	Row   int
}

// Index holds one unit vector per row, stored contiguously.
type Index struct {
	meta Meta
	dim  int
	data []float32
}

// Build normalizes copies of vectors and indexes them in order. All vectors
// must share one dimension. An empty input yields an empty index with the
// dimension taken from meta.
func Build(vectors [][]float32, meta Meta) (*Index, error) {
	dim := meta.Dimension
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	if dim <= 0 && len(vectors) > 0 {
		return nil, fmt.Errorf("vectors must not be empty")
	}
	if meta.Dimension != 0 && meta.Dimension != dim {
		return nil, fmt.Errorf("vectors have dimension %d, expected %d", dim, meta.Dimension)
	}

	data := make([]float32, 0, len(vectors)*dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, expected %d", i, len(v), dim)
		}
		data = append(data, Normalize(v)...)
	}

	meta.Dimension = dim
	return &Index{meta: meta, dim: dim, data: data}, nil
}

func (ix *Index) Len() int {
	if ix == nil || ix.dim == 0 {
		return 0
	}
	return len(ix.data) / ix.dim
}

func (ix *Index) Dimension() int { return ix.dim }

func (ix *Index) Meta() Meta { return ix.meta }

// vector returns a copy of the stored vector at row.
func (ix *Index) vector(row int) []float32 {
	if row < 0 || row >= ix.Len() {
		return nil
	}
	return slices.Clone(ix.data[row*ix.dim : (row+1)*ix.dim])
}

// Search returns at most k hits ordered by descending score, ties broken by
// ascending row. k larger than the index returns every row.
func (ix *Index) Search(query []float32, k int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("query has dimension %d, index has %d", len(query), ix.dim)
	}

	n := ix.Len()
	if k <= 0 || n == 0 {
		return []Hit{}, nil
	}

	q := Normalize(query)
	hits := make([]Hit, n)
	for row := 0; row < n; row++ {
		hits[row] = Hit{Score: dot(q, ix.data[row*ix.dim:(row+1)*ix.dim]), Row: row}
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if a.Score != b.Score {
			return cmp.Compare(b.Score, a.Score)
		}
		return cmp.Compare(a.Row, b.Row)
	})

	return hits[:min(k, n)], nil
}

// Normalize returns a unit-length copy of v. A zero vector stays zero.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	norm := math.Sqrt(dot(v, v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Cosine is the cosine similarity of a and b, or 0 when either is a zero vector.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors have dimensions %d and %d", len(a), len(b))
	}
	na, nb := math.Sqrt(dot(a, a)), math.Sqrt(dot(b, b))
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot(a, b) / (na * nb), nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
