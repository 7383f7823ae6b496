package matching

import (
	"math"
	"strconv"
)

const (
	// CorpusScoreOffset is added to the percentage similarity of corpus matches.
	CorpusScoreOffset = 10
	// CustomScoreOffset is added to the percentage similarity against a free-text job description.
	CustomScoreOffset = 30
)

// CorpusScore converts a raw inner product of unit vectors into a corpus match score.
func CorpusScore(similarity float64) float64 {
	return Round2(similarity*100 + CorpusScoreOffset)
}

// CustomScore converts a cosine similarity into a job description match score.
func CustomScore(similarity float64) float64 {
	return Round2(similarity*100 + CustomScoreOffset)
}

// Round2 rounds x to two decimals, resolving exact binary halves to even.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return rounded
}
