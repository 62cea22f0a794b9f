// Package semantic scores how similar two normalized documents are as whole texts,
// independent of exact skill-vocabulary overlap.
package semantic

import (
	"context"
	"fmt"
	"math"
)

// Method names reported alongside scores.
const (
	MethodTFIDF     = "tfidf"
	MethodEmbedding = "embedding"
)

// MaxScore is returned for identical non-empty texts.
const MaxScore = 100.0

// Scorer computes a 0-100 similarity between a normalized résumé and a normalized job description.
//
// Implementations return 0 without error when either text is empty, and a *ComputationError when
// the underlying technique fails. The two arguments are kept apart only for presentation; the
// scorers in this package are symmetric.
type Scorer interface {
	Score(ctx context.Context, resume, jobDescription string) (float64, error)
	Method() string
}

// New returns the scorer for method. Embedding scoring needs an embedder (see NewEmbeddingScorer),
// so only the lexical method can be built here.
func New(method string) (Scorer, error) {
	switch method {
	case "", MethodTFIDF:
		return NewLexicalScorer(), nil
	default:
		return nil, fmt.Errorf("semantic method %q requires explicit construction", method)
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampScore(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > MaxScore:
		return MaxScore
	default:
		return v
	}
}
