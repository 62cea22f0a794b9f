package semantic

import (
	"context"
	"fmt"
	"math"

	"github.com/jonathan/resume-matcher/internal/llm"
	"golang.org/x/sync/errgroup"
)

// DefaultEmbeddingFloor is the cosine treated as "unrelated". Sentence embeddings rarely go
// below it even for texts that share nothing.
const DefaultEmbeddingFloor = 0.4

// EmbeddingScorer compares documents by the cosine of their embeddings, rescaled so the floor
// maps to 0 and identical direction maps to 100:
//
//	score = max(0, (cos - floor) / (1 - floor)) * 100
type EmbeddingScorer struct {
	embedder llm.Embedder
	floor    float64
}

// NewEmbeddingScorer returns a scorer using embedder. A floor outside [0, 1) falls back to
// DefaultEmbeddingFloor.
func NewEmbeddingScorer(embedder llm.Embedder, floor float64) *EmbeddingScorer {
	if floor < 0 || floor >= 1 {
		floor = DefaultEmbeddingFloor
	}
	return &EmbeddingScorer{embedder: embedder, floor: floor}
}

// Method implements Scorer.
func (s *EmbeddingScorer) Method() string {
	return MethodEmbedding
}

// Score implements Scorer. Both texts are embedded concurrently.
func (s *EmbeddingScorer) Score(ctx context.Context, resume, jobDescription string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if resume == "" || jobDescription == "" {
		return 0, nil
	}
	if resume == jobDescription {
		return MaxScore, nil
	}
	if s.embedder == nil {
		return 0, &ComputationError{Method: MethodEmbedding, Message: "no embedder configured"}
	}

	var va, vb []float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := s.embedder.Embed(gctx, resume)
		va = v
		return err
	})
	g.Go(func() error {
		v, err := s.embedder.Embed(gctx, jobDescription)
		vb = v
		return err
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, &ComputationError{Method: MethodEmbedding, Message: "embedding request failed", Cause: err}
	}

	cos, err := cosine(va, vb)
	if err != nil {
		return 0, &ComputationError{Method: MethodEmbedding, Message: "invalid embeddings", Cause: err}
	}

	scaled := (cos - s.floor) / (1 - s.floor) * 100
	return round2(clampScore(scaled)), nil
}

func cosine(a, b []float32) (float64, error) {
	if len(a) == 0 || len(a) != len(b) {
		return 0, fmt.Errorf("dimension mismatch: %d vs %d", len(a), len(b))
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, fmt.Errorf("zero-length vector")
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
