package skills

import (
	"github.com/jonathan/resume-matcher/internal/textnorm"
	"github.com/jonathan/resume-matcher/internal/vocabulary"
)

// ambiguousPhrases are everyday phrases that begin with a short skill name ("R&D" would report
// r, "go-to-market" would report go). They are skipped whole before the vocabulary lookup.
var ambiguousPhrases = tokenizeAll(
	"R&D",
	"R and D",
	"C-level",
	"C-suite",
	"go-to-market",
	"go live",
	"go lives",
)

// Extract scans normalized text for vocabulary skills.
//
// Matching is on whole tokens: "java" never matches inside "javascript". At each position the
// longest phrase wins and its tokens are consumed, so "machine learning" is reported once and the
// single-token skill "machine" (if defined) is not also reported for the same words.
// A nil or empty vocabulary yields an empty set.
func Extract(normalized string, vocab *vocabulary.Vocabulary) SkillSet {
	found := NewSkillSet()
	if vocab.Len() == 0 {
		return found
	}

	tokens := textnorm.Tokens(normalized)
	for i := 0; i < len(tokens); {
		if n := ambiguousAt(tokens, i); n > 0 {
			i += n
			continue
		}
		consumed := 1
		for _, p := range vocab.PhrasesStartingWith(tokens[i]) {
			if hasPrefixAt(tokens, i, p.Tokens) {
				found.Add(p.Canonical)
				consumed = len(p.Tokens)
				break
			}
		}
		i += consumed
	}

	return found
}

// ExtractText normalizes raw text and extracts its skills.
func ExtractText(raw string, vocab *vocabulary.Vocabulary) SkillSet {
	return Extract(textnorm.Normalize(raw), vocab)
}

func hasPrefixAt(tokens []string, at int, phrase []string) bool {
	if at+len(phrase) > len(tokens) {
		return false
	}
	for k, tok := range phrase {
		if tokens[at+k] != tok {
			return false
		}
	}
	return true
}

func ambiguousAt(tokens []string, at int) int {
	for _, phrase := range ambiguousPhrases {
		if hasPrefixAt(tokens, at, phrase) {
			return len(phrase)
		}
	}
	return 0
}

func tokenizeAll(phrases ...string) [][]string {
	out := make([][]string, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, textnorm.Tokens(textnorm.Normalize(p)))
	}
	return out
}
