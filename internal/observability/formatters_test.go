package observability

import (
	"bytes"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-matcher/internal/types"
)

func sampleEval(match, semantic float64, matched, missing []string) *types.Evaluation {
	return &types.Evaluation{
		ID: uuid.New(),
		Match: types.MatchResult{
			MatchPercentage: match,
			MatchedSkills:   matched,
			MissingSkills:   missing,
			ExtraSkills:     []string{},
		},
		Semantic:          types.SemanticScore{Score: semantic, Method: "tfidf"},
		VocabularyVersion: "2024.1",
	}
}

func TestPrintEvaluation(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintEvaluation(sampleEval(66.67, 41.5, []string{"docker", "python"}, []string{"sql"}))
	output := buf.String()

	assert.Contains(t, output, "RESUME MATCH")
	assert.Contains(t, output, "66.67%")
	assert.Contains(t, output, "41.50")
	assert.Contains(t, output, "docker, python")
	assert.Contains(t, output, "Missing (1)")
	assert.Contains(t, output, "Extra (0)")
	assert.Contains(t, output, "2024.1")
	assert.NotContains(t, output, "degraded")
}

func TestPrintEvaluation_Degraded(t *testing.T) {
	var buf bytes.Buffer
	eval := sampleEval(50, 0, []string{"python"}, []string{"sql"})
	eval.Semantic.Degraded = true
	eval.Semantic.Warning = "embedding provider unavailable"

	NewPrinter(&buf).PrintEvaluation(eval)
	assert.Contains(t, buf.String(), "degraded: embedding provider unavailable")
}

func TestPrintEvaluation_Nil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintEvaluation(nil)
	assert.Empty(t, buf.String())
}

func TestPrintComparison(t *testing.T) {
	var buf bytes.Buffer
	cmp := &types.Comparison{
		A:             sampleEval(33.33, 20, []string{"python"}, []string{"docker", "sql"}),
		B:             sampleEval(66.67, 35, []string{"python", "sql"}, []string{"docker"}),
		MatchDelta:    33.34,
		SemanticDelta: 15,
	}

	NewPrinter(&buf).PrintComparison(cmp)
	output := buf.String()

	assert.Contains(t, output, "RESUME COMPARISON")
	assert.Contains(t, output, "+33.34")
	assert.Contains(t, output, "+15.00")
	assert.Contains(t, output, "Only B covers (1)")
	assert.Contains(t, output, "Only A covers (0)")
	assert.Contains(t, output, "Both miss (1)")
}

func TestPrintSkills(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintSkills("resume skills", []string{"go", "kubernetes"})
	assert.Contains(t, buf.String(), "RESUME SKILLS")
	assert.Contains(t, buf.String(), "2 skills found")

	buf.Reset()
	NewPrinter(&buf).PrintSkills("skills", nil)
	assert.Contains(t, buf.String(), "(none)")
}

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	entries := []types.HistoryEntry{
		{MatchScore: 80, SemanticScore: 60, CreatedAt: time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)},
		{MatchScore: 40, SemanticScore: 30, CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)},
	}
	top := []types.SkillCount{{Skill: "sql", Count: 2}, {Skill: "aws", Count: 1}}

	NewPrinter(&buf).PrintHistory("dev@example.com", entries, top)
	output := buf.String()

	assert.Contains(t, output, "SCAN HISTORY")
	assert.Contains(t, output, "dev@example.com")
	assert.Contains(t, output, "Scans: 2")
	assert.Contains(t, output, "2024-05-02 10:30")
	assert.Contains(t, output, "Most often missing")
	assert.Contains(t, output, "sql")
}

func TestBoxLinesHaveEqualWidth(t *testing.T) {
	var buf bytes.Buffer
	eval := sampleEval(100, 100, []string{"c++", "c#", "node.js", strings.Repeat("x", 120)}, []string{})
	eval.Semantic.Warning = "ünïcödé"
	NewPrinter(&buf).PrintEvaluation(eval)

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n") {
		assert.Equal(t, boxWidth, utf8.RuneCountInString(line), line)
	}
}

func TestBar(t *testing.T) {
	tests := []struct {
		value, total float64
		filled       int
	}{
		{0, 100, 0},
		{50, 100, 10},
		{100, 100, 20},
		{150, 100, 20},
		{5, 0, 0},
	}
	for _, tt := range tests {
		got := bar(tt.value, tt.total, barWidth)
		assert.Equal(t, barWidth, utf8.RuneCountInString(got))
		assert.Equal(t, tt.filled, strings.Count(got, "█"))
	}
}

func TestWrap(t *testing.T) {
	assert.Equal(t, "aa, bb,\ncc", wrap("aa, bb, cc", 7))
	assert.Equal(t, "", wrap("", 10))
}

func TestPrintMissingSkills(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintMissingSkills("dev@example.com", 3, []types.SkillCount{{Skill: "sql", Count: 3}})
	output := buf.String()
	assert.Contains(t, output, "MISSING SKILLS")
	assert.Contains(t, output, "Scans: 3")
	assert.Contains(t, output, strings.Repeat("█", barWidth))

	buf.Reset()
	NewPrinter(&buf).PrintMissingSkills("dev@example.com", 0, nil)
	assert.Contains(t, buf.String(), "(none)")
}
