package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-matcher/internal/schemas"
	"github.com/jonathan/resume-matcher/internal/semantic"
	"github.com/jonathan/resume-matcher/internal/types"
	"github.com/jonathan/resume-matcher/internal/vocabulary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScorer struct {
	score float64
	err   error
	panic bool
}

func (s *stubScorer) Score(ctx context.Context, _, _ string) (float64, error) {
	if s.panic {
		panic("boom")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.score, s.err
}

func (s *stubScorer) Method() string { return "stub" }

func testVocab(t *testing.T) *vocabulary.Vocabulary {
	t.Helper()
	v, err := vocabulary.New("test-v1", []vocabulary.Entry{{Name: "python"}, {Name: "sql"}, {Name: "docker"}})
	require.NoError(t, err)
	return v
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	var cfgErr *vocabulary.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, types.KindConfiguration, KindOf(err))

	e, err := New(testVocab(t), nil)
	require.NoError(t, err)
	assert.Equal(t, semantic.MethodTFIDF, e.ScorerMethod())
	assert.Equal(t, 3, e.Vocabulary().Len())
}

func TestEvaluate_Scenario(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	e, err := New(testVocab(t), nil, WithClock(func() time.Time { return fixed }))
	require.NoError(t, err)

	eval, err := e.Evaluate(context.Background(),
		"Experienced Python developer using Docker daily",
		"Looking for Python and SQL expert with Docker skills")
	require.NoError(t, err)

	assert.Equal(t, []string{"docker", "python"}, eval.ResumeSkills)
	assert.Equal(t, []string{"docker", "python", "sql"}, eval.JobSkills)
	assert.Equal(t, 66.67, eval.Match.MatchPercentage)
	assert.Equal(t, []string{"docker", "python"}, eval.Match.MatchedSkills)
	assert.Equal(t, []string{"sql"}, eval.Match.MissingSkills)
	assert.Equal(t, []string{}, eval.Match.ExtraSkills)

	assert.Equal(t, semantic.MethodTFIDF, eval.Semantic.Method)
	assert.False(t, eval.Semantic.Degraded)
	assert.Greater(t, eval.Semantic.Score, 0.0)
	assert.Less(t, eval.Semantic.Score, 100.0)

	assert.Equal(t, "test-v1", eval.VocabularyVersion)
	assert.Equal(t, fixed.UTC(), eval.CreatedAt)
	assert.NotEqual(t, uuid.Nil, eval.ID)
}

func TestEvaluate_ResultMatchesSchema(t *testing.T) {
	e, err := New(testVocab(t), nil)
	require.NoError(t, err)

	for _, tc := range []struct{ resume, jd string }{
		{"Python and SQL", "Docker"},
		{"", ""},
		{"python", "python"},
	} {
		eval, err := e.Evaluate(context.Background(), tc.resume, tc.jd)
		require.NoError(t, err)
		assert.NoError(t, schemas.ValidateDocument(schemas.Evaluation, eval))
	}
}

func TestEvaluate_EdgeCases(t *testing.T) {
	e, err := New(testVocab(t), nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("empty resume", func(t *testing.T) {
		eval, err := e.Evaluate(ctx, "", "python, sql and docker")
		require.NoError(t, err)
		assert.Equal(t, 0.0, eval.Match.MatchPercentage)
		assert.Equal(t, []string{}, eval.Match.MatchedSkills)
		assert.Equal(t, []string{"docker", "python", "sql"}, eval.Match.MissingSkills)
		assert.Equal(t, 0.0, eval.Semantic.Score)
	})

	t.Run("empty job description", func(t *testing.T) {
		eval, err := e.Evaluate(ctx, "python", "")
		require.NoError(t, err)
		assert.Equal(t, 0.0, eval.Match.MatchPercentage)
		assert.Equal(t, []string{"python"}, eval.Match.ExtraSkills)
	})

	t.Run("identical texts", func(t *testing.T) {
		text := "Python, SQL and Docker for data pipelines"
		eval, err := e.Evaluate(ctx, text, text)
		require.NoError(t, err)
		assert.Equal(t, 100.0, eval.Match.MatchPercentage)
		assert.Empty(t, eval.Match.MissingSkills)
		assert.Equal(t, semantic.MaxScore, eval.Semantic.Score)
	})
}

func TestEvaluate_DegradedSemantic(t *testing.T) {
	tests := []struct {
		name   string
		scorer *stubScorer
		want   string
	}{
		{
			name:   "computation error",
			scorer: &stubScorer{err: &semantic.ComputationError{Method: "stub", Message: "model unavailable"}},
			want:   "model unavailable",
		},
		{
			name:   "untyped error",
			scorer: &stubScorer{err: errors.New("socket closed")},
			want:   "socket closed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(testVocab(t), tt.scorer)
			require.NoError(t, err)

			eval, err := e.Evaluate(context.Background(), "python", "python and sql")
			require.NoError(t, err)
			assert.True(t, eval.Semantic.Degraded)
			assert.Equal(t, 0.0, eval.Semantic.Score)
			assert.Equal(t, "stub", eval.Semantic.Method)
			assert.Contains(t, eval.Semantic.Warning, tt.want)
			// keyword matching is unaffected
			assert.Equal(t, 50.0, eval.Match.MatchPercentage)
		})
	}
}

func TestEvaluate_ScorerPanicDegrades(t *testing.T) {
	e, err := New(testVocab(t), &stubScorer{panic: true})
	require.NoError(t, err)

	var eval *types.Evaluation
	assert.NotPanics(t, func() {
		eval, err = e.Evaluate(context.Background(), "python sql", "python sql docker")
	})
	require.NoError(t, err)
	assert.True(t, eval.Semantic.Degraded)
	assert.Equal(t, 0.0, eval.Semantic.Score)
	assert.Contains(t, eval.Semantic.Warning, "scorer panicked: boom")
	assert.Equal(t, 66.67, eval.Match.MatchPercentage)
}

func TestRecovered(t *testing.T) {
	err := recovered("skills", func() error { panic("boom") })()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skills branch panicked")
	assert.Equal(t, types.KindInternal, KindOf(err))
}

func TestEvaluate_Cancelled(t *testing.T) {
	e, err := New(testVocab(t), &stubScorer{score: 10})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = e.Evaluate(ctx, "python", "sql")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluate_InputTooLarge(t *testing.T) {
	e, err := New(testVocab(t), nil, WithMaxInputBytes(10))
	require.NoError(t, err)

	_, err = e.Evaluate(context.Background(), strings.Repeat("python ", 5), "sql")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "resume_text", inputErr.Field)
	assert.Equal(t, types.KindInput, KindOf(err))

	_, err = e.Evaluate(context.Background(), "sql", strings.Repeat("x", 11))
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, "job_description", inputErr.Field)

	unlimited, err := New(testVocab(t), nil, WithMaxInputBytes(0))
	require.NoError(t, err)
	_, err = unlimited.Evaluate(context.Background(), strings.Repeat("python ", 5), "sql")
	assert.NoError(t, err)
}

func TestEvaluateWithProgress(t *testing.T) {
	e, err := New(testVocab(t), &stubScorer{score: 42})
	require.NoError(t, err)

	var steps []string
	eval, err := e.EvaluateWithProgress(context.Background(), "python", "python sql",
		func(ev ProgressEvent) { steps = append(steps, ev.Step) })
	require.NoError(t, err)

	assert.Equal(t, 42.0, eval.Semantic.Score)
	require.Len(t, steps, 3)
	assert.ElementsMatch(t, []string{StepSkills, StepSemantic}, steps[:2])
	assert.Equal(t, StepDone, steps[2])
}

func TestCompare(t *testing.T) {
	e, err := New(testVocab(t), nil)
	require.NoError(t, err)

	jd := "Python, SQL and Docker"
	cmp, err := e.Compare(context.Background(), "Python only", "Python and SQL", jd)
	require.NoError(t, err)

	assert.Equal(t, 33.33, cmp.A.Match.MatchPercentage)
	assert.Equal(t, 66.67, cmp.B.Match.MatchPercentage)
	assert.Equal(t, 33.34, cmp.MatchDelta)
	assert.InDelta(t, cmp.B.Semantic.Score-cmp.A.Semantic.Score, cmp.SemanticDelta, 0.005)
	assert.NotEqual(t, cmp.A.ID, cmp.B.ID)
}

func TestCompare_PropagatesInputError(t *testing.T) {
	e, err := New(testVocab(t), nil, WithMaxInputBytes(5))
	require.NoError(t, err)

	_, err = e.Compare(context.Background(), "sql", "python python", "sql")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resume B")
	assert.Equal(t, types.KindInput, KindOf(err))
}

func TestExtractSkills(t *testing.T) {
	e, err := New(testVocab(t), nil, WithMaxInputBytes(100))
	require.NoError(t, err)

	got, err := e.ExtractSkills("Docker, docker and PYTHON")
	require.NoError(t, err)
	assert.Equal(t, []string{"docker", "python"}, got)

	_, err = e.ExtractSkills(strings.Repeat("a", 101))
	assert.Equal(t, types.KindInput, KindOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want types.ErrorKind
	}{
		{nil, ""},
		{&InputError{Message: "x"}, types.KindInput},
		{fmt.Errorf("wrapped: %w", &InputError{Message: "x"}), types.KindInput},
		{&vocabulary.ConfigurationError{Message: "x"}, types.KindConfiguration},
		{&semantic.ComputationError{Method: "m", Message: "x"}, types.KindComputation},
		{errors.New("other"), types.KindInternal},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, KindOf(tt.err))
	}
}
