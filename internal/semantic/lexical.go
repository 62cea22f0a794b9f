package semantic

import (
	"context"
	"math"
	"sort"

	"github.com/jonathan/resume-matcher/internal/textnorm"
)

// LexicalScorer compares documents by TF-IDF weighted cosine similarity over unigrams and
// bigrams. It needs no model and is fully deterministic.
//
// Weights: tf = 1 + ln(count), idf = ln((1+N)/(1+df)) + 1 with N = 2 documents, so terms that
// appear in only one document weigh more than shared ones but shared terms never drop to zero.
// Stopwords are removed first; a document made only of stopwords keeps its raw tokens.
type LexicalScorer struct{}

// NewLexicalScorer returns a TF-IDF scorer.
func NewLexicalScorer() *LexicalScorer {
	return &LexicalScorer{}
}

// Method implements Scorer.
func (s *LexicalScorer) Method() string {
	return MethodTFIDF
}

// Score implements Scorer.
func (s *LexicalScorer) Score(ctx context.Context, resume, jobDescription string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if resume == "" || jobDescription == "" {
		return 0, nil
	}
	if resume == jobDescription {
		return MaxScore, nil
	}

	a := termCounts(resume)
	b := termCounts(jobDescription)

	const docs = 2.0
	idf := func(term string) float64 {
		df := 0.0
		if a[term] > 0 {
			df++
		}
		if b[term] > 0 {
			df++
		}
		return math.Log((1+docs)/(1+df)) + 1
	}

	weights := func(counts map[string]int) map[string]float64 {
		w := make(map[string]float64, len(counts))
		for term, n := range counts {
			w[term] = (1 + math.Log(float64(n))) * idf(term)
		}
		return w
	}
	wa, wb := weights(a), weights(b)

	// sums run in sorted term order so the result is bit-for-bit reproducible
	var dot, na, nb float64
	for _, term := range sortedUnion(wa, wb) {
		x, y := wa[term], wb[term]
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return round2(clampScore(cos * 100)), nil
}

func sortedUnion(a, b map[string]float64) []string {
	terms := make([]string, 0, len(a)+len(b))
	for t := range a {
		terms = append(terms, t)
	}
	for t := range b {
		if _, ok := a[t]; !ok {
			terms = append(terms, t)
		}
	}
	sort.Strings(terms)
	return terms
}

// termCounts returns unigram and bigram counts of a normalized document.
func termCounts(normalized string) map[string]int {
	tokens := textnorm.Tokens(normalized)

	content := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !textnorm.IsStopword(tok) {
			content = append(content, tok)
		}
	}
	if len(content) == 0 {
		content = tokens
	}

	counts := make(map[string]int, 2*len(content))
	for i, tok := range content {
		counts[tok]++
		if i > 0 {
			counts[content[i-1]+" "+tok]++
		}
	}
	return counts
}
