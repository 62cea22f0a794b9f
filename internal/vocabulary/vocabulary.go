// Package vocabulary holds the canonical skill taxonomy that free text is scanned against.
package vocabulary

import (
	"fmt"
	"sort"

	"github.com/jonathan/resume-matcher/internal/textnorm"
)

// Entry is one canonical skill with its aliases.
// Name and Aliases are stored in normalized form (see textnorm.Normalize).
type Entry struct {
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Category string   `json:"category,omitempty"`
}

// Phrase is a token sequence that, when found in text, denotes Canonical.
type Phrase struct {
	Tokens    []string
	Canonical string
}

// Vocabulary is an immutable, ordered set of canonical skills.
// It is safe for concurrent use once built.
type Vocabulary struct {
	version string
	entries []Entry
	lookup  map[string]string   // normalized term -> canonical
	phrases map[string][]Phrase // first token -> phrases, longest first
}

// New builds a vocabulary from raw entries. Names and aliases are normalized; an alias equal to
// its own canonical name is dropped.
func New(version string, entries []Entry) (*Vocabulary, error) {
	if len(entries) == 0 {
		return nil, &ConfigurationError{Message: "vocabulary has no skills"}
	}

	v := &Vocabulary{
		version: version,
		entries: make([]Entry, 0, len(entries)),
		lookup:  make(map[string]string),
		phrases: make(map[string][]Phrase),
	}

	for i, raw := range entries {
		name := textnorm.Normalize(raw.Name)
		if name == "" {
			return nil, &ConfigurationError{
				Field:   fmt.Sprintf("skills[%d].name", i),
				Message: fmt.Sprintf("skill name %q is empty after normalization", raw.Name),
			}
		}
		if owner, exists := v.lookup[name]; exists {
			return nil, &ConfigurationError{
				Field:   fmt.Sprintf("skills[%d].name", i),
				Message: fmt.Sprintf("skill %q is already defined (by %q)", name, owner),
			}
		}
		v.add(name, name)

		entry := Entry{Name: name, Category: raw.Category}
		for j, rawAlias := range raw.Aliases {
			alias := textnorm.Normalize(rawAlias)
			if alias == "" || alias == name {
				continue
			}
			if owner, exists := v.lookup[alias]; exists {
				if owner == name {
					continue
				}
				return nil, &ConfigurationError{
					Field:   fmt.Sprintf("skills[%d].aliases[%d]", i, j),
					Message: fmt.Sprintf("alias %q already refers to %q", alias, owner),
				}
			}
			v.add(alias, name)
			entry.Aliases = append(entry.Aliases, alias)
		}
		v.entries = append(v.entries, entry)
	}

	for first := range v.phrases {
		list := v.phrases[first]
		sort.SliceStable(list, func(i, j int) bool {
			return len(list[i].Tokens) > len(list[j].Tokens)
		})
	}

	return v, nil
}

func (v *Vocabulary) add(term, canonical string) {
	v.lookup[term] = canonical
	tokens := textnorm.Tokens(term)
	v.phrases[tokens[0]] = append(v.phrases[tokens[0]], Phrase{Tokens: tokens, Canonical: canonical})
}

// Version returns the version label of the vocabulary source.
func (v *Vocabulary) Version() string {
	if v == nil {
		return ""
	}
	return v.version
}

// Len returns the number of canonical skills. A nil vocabulary is empty.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// Entries returns a copy of the entries in definition order.
func (v *Vocabulary) Entries() []Entry {
	if v == nil {
		return nil
	}
	out := make([]Entry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Canonical resolves a skill name or alias (in any form) to its canonical name.
func (v *Vocabulary) Canonical(term string) (string, bool) {
	if v == nil {
		return "", false
	}
	canonical, ok := v.lookup[textnorm.Normalize(term)]
	return canonical, ok
}

// PhrasesStartingWith returns the phrases whose first token is token, longest first.
// The returned slice is shared and must not be modified.
func (v *Vocabulary) PhrasesStartingWith(token string) []Phrase {
	if v == nil {
		return nil
	}
	return v.phrases[token]
}
