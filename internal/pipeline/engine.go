// Package pipeline orchestrates one evaluation: normalize both texts, extract and match skills,
// and score semantic similarity in parallel.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/logging"
	"github.com/jonathan/resume-matcher/internal/semantic"
	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/textnorm"
	"github.com/jonathan/resume-matcher/internal/types"
	"github.com/jonathan/resume-matcher/internal/vocabulary"
)

// DefaultMaxInputBytes bounds each input text.
const DefaultMaxInputBytes = 1 << 20

// Step names reported in progress events.
const (
	StepSkills   = "skills"
	StepSemantic = "semantic"
	StepDone     = "done"
)

// ProgressEvent represents a progress update during an evaluation
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when evaluation progress occurs. Calls are serialized.
type ProgressCallback func(event ProgressEvent)

// Option configures an Engine.
type Option func(*Engine)

// WithMaxInputBytes caps the size of each input text. n <= 0 disables the cap.
func WithMaxInputBytes(n int) Option {
	return func(e *Engine) { e.maxInputBytes = n }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// Engine evaluates résumés against job descriptions. It holds no per-request state and is safe
// for concurrent use.
type Engine struct {
	vocab         *vocabulary.Vocabulary
	scorer        semantic.Scorer
	maxInputBytes int
	now           func() time.Time
}

// New builds an engine. A nil or empty vocabulary is a configuration error; a nil scorer
// defaults to the TF-IDF scorer.
func New(vocab *vocabulary.Vocabulary, scorer semantic.Scorer, opts ...Option) (*Engine, error) {
	if vocab.Len() == 0 {
		return nil, &vocabulary.ConfigurationError{Message: "skill vocabulary is missing or empty"}
	}
	if scorer == nil {
		scorer = semantic.NewLexicalScorer()
	}

	e := &Engine{
		vocab:         vocab,
		scorer:        scorer,
		maxInputBytes: DefaultMaxInputBytes,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Vocabulary returns the vocabulary the engine matches against.
func (e *Engine) Vocabulary() *vocabulary.Vocabulary {
	return e.vocab
}

// ScorerMethod returns the semantic method name.
func (e *Engine) ScorerMethod() string {
	return e.scorer.Method()
}

// ExtractSkills returns the sorted canonical skills found in raw text.
func (e *Engine) ExtractSkills(raw string) ([]string, error) {
	if err := e.checkSize("text", raw); err != nil {
		return nil, err
	}
	return skills.ExtractText(raw, e.vocab).Slice(), nil
}

// Evaluate matches a résumé against a job description.
func (e *Engine) Evaluate(ctx context.Context, resumeText, jobDescription string) (*types.Evaluation, error) {
	return e.EvaluateWithProgress(ctx, resumeText, jobDescription, nil)
}

// EvaluateWithProgress is Evaluate with progress reporting.
//
// Skill extraction and semantic scoring run concurrently. A failing semantic scorer does not
// fail the evaluation: the score becomes 0 and is marked degraded with a warning.
func (e *Engine) EvaluateWithProgress(ctx context.Context, resumeText, jobDescription string, onProgress ProgressCallback) (*types.Evaluation, error) {
	if err := e.checkSize("resume_text", resumeText); err != nil {
		return nil, err
	}
	if err := e.checkSize("job_description", jobDescription); err != nil {
		return nil, err
	}

	emit := serialize(onProgress)

	resumeNorm := textnorm.Normalize(resumeText)
	jdNorm := textnorm.Normalize(jobDescription)

	var (
		resumeSkills skills.SkillSet
		jobSkills    skills.SkillSet
		match        types.MatchResult
		score        types.SemanticScore
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(recovered("skills", func() error {
		resumeSkills = skills.Extract(resumeNorm, e.vocab)
		jobSkills = skills.Extract(jdNorm, e.vocab)
		match = skills.Match(resumeSkills, jobSkills)
		emit(ProgressEvent{
			Step:    StepSkills,
			Message: fmt.Sprintf("Matched %d of %d job skills", len(match.MatchedSkills), jobSkills.Len()),
			Content: match,
		})
		return nil
	}))

	g.Go(recovered("semantic", func() error {
		s, err := e.score(gctx, resumeNorm, jdNorm)
		if err != nil {
			return err
		}
		score = s
		emit(ProgressEvent{
			Step:    StepSemantic,
			Message: fmt.Sprintf("Semantic similarity %.2f (%s)", s.Score, s.Method),
			Content: s,
		})
		return nil
	}))

	if err := g.Wait(); err != nil {
		return nil, err
	}

	eval := &types.Evaluation{
		ID:                uuid.New(),
		Match:             match,
		Semantic:          score,
		ResumeSkills:      resumeSkills.Slice(),
		JobSkills:         jobSkills.Slice(),
		VocabularyVersion: e.vocab.Version(),
		CreatedAt:         e.now().UTC(),
	}

	logging.Ctx(ctx).Debug().
		Str("evaluation_id", eval.ID.String()).
		Float64("match_percentage", eval.Match.MatchPercentage).
		Float64("semantic_score", eval.Semantic.Score).
		Bool("semantic_degraded", eval.Semantic.Degraded).
		Msg("evaluation complete")

	emit(ProgressEvent{Step: StepDone, Message: "Evaluation complete", Content: eval})
	return eval, nil
}

// Compare evaluates two résumé variants against the same job description concurrently.
// Deltas are B minus A; no ranking is applied.
func (e *Engine) Compare(ctx context.Context, resumeA, resumeB, jobDescription string) (*types.Comparison, error) {
	var a, b *types.Evaluation

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		eval, err := e.Evaluate(gctx, resumeA, jobDescription)
		if err != nil {
			return fmt.Errorf("resume A: %w", err)
		}
		a = eval
		return nil
	})
	g.Go(func() error {
		eval, err := e.Evaluate(gctx, resumeB, jobDescription)
		if err != nil {
			return fmt.Errorf("resume B: %w", err)
		}
		b = eval
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &types.Comparison{
		A:             a,
		B:             b,
		MatchDelta:    skills.Round2(b.Match.MatchPercentage - a.Match.MatchPercentage),
		SemanticDelta: skills.Round2(b.Semantic.Score - a.Semantic.Score),
	}, nil
}

// score runs the semantic scorer. Only cancellation of ctx is returned as an error; every
// other failure degrades to the sentinel score.
func (e *Engine) score(ctx context.Context, resumeNorm, jdNorm string) (types.SemanticScore, error) {
	method := e.scorer.Method()

	value, err := e.runScorer(ctx, resumeNorm, jdNorm)
	if err == nil {
		return types.SemanticScore{Score: value, Method: method}, nil
	}
	if ctx.Err() != nil {
		return types.SemanticScore{}, ctx.Err()
	}

	var compErr *semantic.ComputationError
	if !errors.As(err, &compErr) {
		compErr = &semantic.ComputationError{Method: method, Message: "unexpected scorer failure", Cause: err}
	}

	logging.Ctx(ctx).Warn().Err(compErr).Str("method", method).Msg("semantic scoring degraded")

	return types.SemanticScore{
		Score:    0,
		Method:   method,
		Degraded: true,
		Warning:  compErr.Error(),
	}, nil
}

// runScorer calls the scorer, reporting a panic as a ComputationError.
func (e *Engine) runScorer(ctx context.Context, resumeNorm, jdNorm string) (value float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &semantic.ComputationError{Method: e.scorer.Method(), Message: fmt.Sprintf("scorer panicked: %v", r)}
		}
	}()
	return e.scorer.Score(ctx, resumeNorm, jdNorm)
}

func (e *Engine) checkSize(field, text string) error {
	if e.maxInputBytes > 0 && len(text) > e.maxInputBytes {
		return &InputError{
			Field:   field,
			Message: fmt.Sprintf("%d bytes exceeds the %d byte limit", len(text), e.maxInputBytes),
		}
	}
	return nil
}

// recovered turns a panic in a branch into an error so it cannot escape the engine.
func recovered(branch string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s branch panicked: %v", branch, r)
			}
		}()
		return fn()
	}
}

func serialize(cb ProgressCallback) ProgressCallback {
	if cb == nil {
		return func(ProgressEvent) {}
	}
	var mu sync.Mutex
	return func(ev ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		cb(ev)
	}
}
